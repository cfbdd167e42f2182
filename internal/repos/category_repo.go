package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"funkoshop/internal/domain"
)

const categoryCols = `category_id, category_name, category_description, image_category`

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+categoryCols+` FROM category ORDER BY category_id`)
	return out, err
}

func (r *CategoryRepo) ByID(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, `SELECT `+categoryCols+` FROM category WHERE category_id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ByName returns the oldest row with exactly this name. Names are not unique
// in storage, so duplicates resolve to the first one.
func (r *CategoryRepo) ByName(ctx context.Context, name string) (*domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, `
  SELECT `+categoryCols+`
  FROM category
  WHERE category_name = ?
  ORDER BY category_id
  LIMIT 1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) SearchByName(ctx context.Context, q string) ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, `
  SELECT `+categoryCols+`
  FROM category
  WHERE LOWER(category_name) LIKE ? ESCAPE '!'
  ORDER BY category_name`, likeContains(q))
	return out, err
}

// ListByLicence returns the categories that have at least one product whose
// licence name contains licenceName (case-insensitive).
func (r *CategoryRepo) ListByLicence(ctx context.Context, licenceName string) ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, `
  SELECT c.category_id, c.category_name, c.category_description, c.image_category
  FROM category c
  WHERE EXISTS (
    SELECT 1
    FROM product p
    JOIN licence l ON l.licence_id = p.licence_id
    WHERE p.category_id = c.category_id
      AND LOWER(l.licence_name) LIKE ? ESCAPE '!'
  )
  ORDER BY c.category_name`, likeContains(licenceName))
	return out, err
}

// GetOrCreate looks the category up by exact name and inserts it with the
// given defaults on a miss. Defaults are ignored for an existing row. Two
// concurrent callers can both miss and both insert.
func (r *CategoryRepo) GetOrCreate(ctx context.Context, name string, def domain.TaxonomyDefaults) (*domain.Category, bool, error) {
	c, err := r.ByName(ctx, name)
	if err != nil || c != nil {
		return c, false, err
	}
	desc := def.Description
	if desc == "" {
		desc = "Category " + name
	}
	c = &domain.Category{Name: name, Description: &desc, Image: nullable(def.Image)}
	if err := r.Create(ctx, c); err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	res, err := r.db.ExecContext(ctx, `
  INSERT INTO category(category_name, category_description, image_category)
  VALUES(?,?,?)`, c.Name, c.Description, c.Image)
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (r *CategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	_, err := r.db.ExecContext(ctx, `
  UPDATE category
  SET category_name = ?, category_description = ?, image_category = ?
  WHERE category_id = ?`, c.Name, c.Description, c.Image, c.ID)
	return err
}

func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM category WHERE category_id = ?`, id)
	return err
}

// CountProducts is the number of products referencing the category.
func (r *CategoryRepo) CountProducts(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM product WHERE category_id = ?`, id)
	return n, err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
