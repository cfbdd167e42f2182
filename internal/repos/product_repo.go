package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"funkoshop/internal/domain"
)

// Reads always join the taxonomy names so listings and the detail view can
// render without extra lookups.
const productSelect = `
  SELECT
    p.product_id, p.product_name, p.product_description, p.price, p.stock,
    p.discount, p.sku, p.dues, p.created_by, p.image_front, p.image_back,
    p.additional_images, p.create_time, p.licence_id, p.category_id,
    COALESCE(l.licence_name, '') AS licence_name,
    COALESCE(c.category_name, '') AS category_name
  FROM product p
  LEFT JOIN licence l ON l.licence_id = p.licence_id
  LEFT JOIN category c ON c.category_id = p.category_id`

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// Create inserts p and sets p.ID. create_time is left to the column default.
func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	res, err := r.db.ExecContext(ctx, `
  INSERT INTO product(
    product_name, product_description, price, stock, discount, sku, dues,
    created_by, image_front, image_back, additional_images, licence_id, category_id
  ) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.Name, p.Description, p.Price.StringFixed(2), p.Stock, p.Discount, p.SKU, p.Dues,
		p.CreatedBy, p.ImageFront, p.ImageBack, p.AdditionalImages, p.LicenceID, p.CategoryID)
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (r *ProductRepo) ByID(ctx context.Context, id int64) (*domain.Product, error) {
	return r.one(ctx, productSelect+` WHERE p.product_id = ?`, id)
}

func (r *ProductRepo) BySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return r.one(ctx, productSelect+` WHERE p.sku = ?`, sku)
}

// ByName returns the product with exactly this name. More than one match is
// reported as a conflict rather than picking one.
func (r *ProductRepo) ByName(ctx context.Context, name string) (*domain.Product, error) {
	out := []domain.Product{}
	if err := r.db.SelectContext(ctx, &out, productSelect+` WHERE p.product_name = ? LIMIT 2`, name); err != nil {
		return nil, err
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return &out[0], nil
	default:
		return nil, domain.Conflict("More than one product is named %q", name)
	}
}

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, productSelect+` ORDER BY p.product_id`)
	return out, err
}

// ListByCategory matches the category name exactly.
func (r *ProductRepo) ListByCategory(ctx context.Context, name string) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, productSelect+`
  WHERE c.category_name = ?
  ORDER BY p.product_name`, name)
	return out, err
}

// ListByLicence matches licence names containing name, case-insensitively.
func (r *ProductRepo) ListByLicence(ctx context.Context, name string) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, productSelect+`
  WHERE LOWER(l.licence_name) LIKE ? ESCAPE '!'
  ORDER BY p.product_name`, likeContains(name))
	return out, err
}

// SKUExists reports whether another product already uses sku. excludeID 0
// excludes nothing.
func (r *ProductRepo) SKUExists(ctx context.Context, sku string, excludeID int64) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM product WHERE sku = ? AND product_id <> ?`, sku, excludeID)
	return n > 0, err
}

// Update writes every mutable column of p.
func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
  UPDATE product SET
    product_name = ?, product_description = ?, price = ?, stock = ?, discount = ?,
    sku = ?, dues = ?, created_by = ?, image_front = ?, image_back = ?,
    additional_images = ?, licence_id = ?, category_id = ?
  WHERE product_id = ?`,
		p.Name, p.Description, p.Price.StringFixed(2), p.Stock, p.Discount,
		p.SKU, p.Dues, p.CreatedBy, p.ImageFront, p.ImageBack,
		p.AdditionalImages, p.LicenceID, p.CategoryID, p.ID)
	return err
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM product WHERE product_id = ?`, id)
	return err
}

func (r *ProductRepo) one(ctx context.Context, q string, args ...any) (*domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, q, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
