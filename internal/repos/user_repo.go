package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"funkoshop/internal/domain"
)

const userSelect = `
  SELECT u.user_id, u.name, u.lastname, u.email, u.password_hash, u.create_time, u.role_id,
         COALESCE(r.role_name, '') AS role_name
  FROM users u
  LEFT JOIN roles r ON r.role_id = u.role_id`

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	out := []domain.User{}
	err := r.DB.SelectContext(ctx, &out, userSelect+` ORDER BY u.user_id`)
	return out, err
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.one(ctx, userSelect+` WHERE LOWER(u.email) = LOWER(?)`, email)
}

func (r *UserRepo) ByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.one(ctx, userSelect+` WHERE u.user_id = ?`, id)
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	res, err := r.DB.ExecContext(ctx, `
  INSERT INTO users(name, lastname, email, password_hash, role_id)
  VALUES(?,?,?,?,?)`, u.Name, u.Lastname, u.Email, u.Hash, u.RoleID)
	if err != nil {
		return err
	}
	u.ID, err = res.LastInsertId()
	return err
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	_, err := r.DB.ExecContext(ctx, `
  UPDATE users SET name = ?, lastname = ?, email = ?, password_hash = ?, role_id = ?
  WHERE user_id = ?`, u.Name, u.Lastname, u.Email, u.Hash, u.RoleID, u.ID)
	return err
}

// Delete removes the user and any sessions bound to it.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *UserRepo) Roles(ctx context.Context) ([]domain.Role, error) {
	out := []domain.Role{}
	err := r.DB.SelectContext(ctx, &out, `SELECT role_id, role_name FROM roles ORDER BY role_id`)
	return out, err
}

func (r *UserRepo) RoleByName(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	err := r.DB.GetContext(ctx, &role, `SELECT role_id, role_name FROM roles WHERE role_name = ? ORDER BY role_id LIMIT 1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// BindSession attaches sid (the value of the session cookie) to userID,
// replacing any earlier binding of the same sid.
func (r *UserRepo) BindSession(ctx context.Context, sid string, userID int64) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sid); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
  INSERT INTO sessions(id, user_id, last_seen) VALUES(?, ?, CURRENT_TIMESTAMP)`, sid, userID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *UserRepo) SessionUser(ctx context.Context, sid string) (*domain.User, error) {
	return r.one(ctx, userSelect+`
  JOIN sessions s ON s.user_id = u.user_id
  WHERE s.id = ?`, sid)
}

func (r *UserRepo) UnbindSession(ctx context.Context, sid string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sid)
	return err
}

func (r *UserRepo) one(ctx context.Context, q string, args ...any) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, q, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
