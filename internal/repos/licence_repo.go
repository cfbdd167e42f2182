package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"funkoshop/internal/domain"
)

const licenceCols = `licence_id, licence_name, licence_description, licence_image`

type LicenceRepo struct{ db *sqlx.DB }

func NewLicenceRepo(db *sqlx.DB) *LicenceRepo { return &LicenceRepo{db: db} }

func (r *LicenceRepo) List(ctx context.Context) ([]domain.Licence, error) {
	out := []domain.Licence{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+licenceCols+` FROM licence ORDER BY licence_id`)
	return out, err
}

func (r *LicenceRepo) ByID(ctx context.Context, id int64) (*domain.Licence, error) {
	var l domain.Licence
	err := r.db.GetContext(ctx, &l, `SELECT `+licenceCols+` FROM licence WHERE licence_id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ByName returns the oldest licence with exactly this name.
func (r *LicenceRepo) ByName(ctx context.Context, name string) (*domain.Licence, error) {
	var l domain.Licence
	err := r.db.GetContext(ctx, &l, `
  SELECT `+licenceCols+`
  FROM licence
  WHERE licence_name = ?
  ORDER BY licence_id
  LIMIT 1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// SearchByName is a case-insensitive "contains" match.
func (r *LicenceRepo) SearchByName(ctx context.Context, q string) ([]domain.Licence, error) {
	out := []domain.Licence{}
	err := r.db.SelectContext(ctx, &out, `
  SELECT `+licenceCols+`
  FROM licence
  WHERE LOWER(licence_name) LIKE ? ESCAPE '!'
  ORDER BY licence_name`, likeContains(q))
	return out, err
}

// GetOrCreate mirrors CategoryRepo.GetOrCreate. The description column is
// NOT NULL, so a generated one is always written on insert.
func (r *LicenceRepo) GetOrCreate(ctx context.Context, name string, def domain.TaxonomyDefaults) (*domain.Licence, bool, error) {
	l, err := r.ByName(ctx, name)
	if err != nil || l != nil {
		return l, false, err
	}
	desc := def.Description
	if desc == "" {
		desc = "Licencia " + name
	}
	l = &domain.Licence{Name: name, Description: desc, Image: nullable(def.Image)}
	if err := r.Create(ctx, l); err != nil {
		return nil, false, err
	}
	return l, true, nil
}

func (r *LicenceRepo) Create(ctx context.Context, l *domain.Licence) error {
	res, err := r.db.ExecContext(ctx, `
  INSERT INTO licence(licence_name, licence_description, licence_image)
  VALUES(?,?,?)`, l.Name, l.Description, l.Image)
	if err != nil {
		return err
	}
	l.ID, err = res.LastInsertId()
	return err
}

func (r *LicenceRepo) Update(ctx context.Context, l *domain.Licence) error {
	_, err := r.db.ExecContext(ctx, `
  UPDATE licence
  SET licence_name = ?, licence_description = ?, licence_image = ?
  WHERE licence_id = ?`, l.Name, l.Description, l.Image, l.ID)
	return err
}

func (r *LicenceRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM licence WHERE licence_id = ?`, id)
	return err
}

func (r *LicenceRepo) CountProducts(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM product WHERE licence_id = ?`, id)
	return n, err
}
