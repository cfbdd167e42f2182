package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"funkoshop/internal/domain"
	"funkoshop/internal/repos"
	"funkoshop/internal/validate"
)

var ErrBadCreds = errors.New("invalid email or password")

// Role given to self-registered accounts.
const defaultRole = "mixto"

const bcryptCost = 12

type AuthService struct {
	Users *repos.UserRepo
}

// Login checks the credentials and binds sid to the user.
func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, domain.Storage("reading user", err)
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
		return nil, domain.Storage("creating session", err)
	}
	return u, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.Users.UnbindSession(ctx, sid)
}

// CurrentUser is nil, nil for an unknown or logged-out session.
func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	if sid == "" {
		return nil, nil
	}
	return s.Users.SessionUser(ctx, sid)
}

// Register creates an account with the default role (none if that role is
// missing from the roles table).
func (s *AuthService) Register(ctx context.Context, raw map[string]any) (*domain.User, error) {
	role, err := s.Users.RoleByName(ctx, defaultRole)
	if err != nil {
		return nil, domain.Storage("creating user", err)
	}
	var roleID *int64
	if role != nil {
		roleID = &role.ID
	}
	return createUser(ctx, s.Users, raw, roleID)
}

// UserService is the admin-side account management.
type UserService struct {
	Users *repos.UserRepo
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	out, err := s.Users.List(ctx)
	if err != nil {
		return nil, domain.Storage("listing users", err)
	}
	return out, nil
}

func (s *UserService) Roles(ctx context.Context) ([]domain.Role, error) {
	out, err := s.Users.Roles(ctx)
	if err != nil {
		return nil, domain.Storage("listing roles", err)
	}
	return out, nil
}

func (s *UserService) Create(ctx context.Context, raw map[string]any) (*domain.User, error) {
	roleID, err := optRoleID(raw)
	if err != nil {
		return nil, err
	}
	return createUser(ctx, s.Users, raw, roleID)
}

// Update changes only the fields present in raw.
func (s *UserService) Update(ctx context.Context, id int64, raw map[string]any) (*domain.User, error) {
	u, err := s.Users.ByID(ctx, id)
	if err != nil {
		return nil, domain.Storage("updating user", err)
	}
	if u == nil {
		return nil, domain.NotFound("User not found")
	}

	if v, ok := validate.Text(raw, "name"); ok {
		name, msg := validate.Name(v)
		if msg != "" {
			return nil, domain.Validation("%s", msg)
		}
		u.Name = name
	}
	if v, ok := validate.Text(raw, "lastname"); ok {
		last, msg := validate.Lastname(v)
		if msg != "" {
			return nil, domain.Validation("%s", msg)
		}
		u.Lastname = last
	}
	if v, ok := validate.Text(raw, "email"); ok {
		email, msg := validate.Email(v)
		if msg != "" {
			return nil, domain.Validation("%s", msg)
		}
		other, err := s.Users.ByEmail(ctx, email)
		if err != nil {
			return nil, domain.Storage("updating user", err)
		}
		if other != nil && other.ID != u.ID {
			return nil, domain.Conflict("Email already registered")
		}
		u.Email = email
	}
	if pw, ok := raw["password"].(string); ok {
		if msg := validate.Password(pw); msg != "" {
			return nil, domain.Validation("%s", msg)
		}
		h, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
		if err != nil {
			return nil, domain.Storage("updating user", err)
		}
		u.Hash = string(h)
	}
	if _, ok := raw["role_id"]; ok {
		if u.RoleID, err = optRoleID(raw); err != nil {
			return nil, err
		}
	}

	if err := s.Users.Update(ctx, u); err != nil {
		return nil, domain.Storage("updating user", err)
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	u, err := s.Users.ByID(ctx, id)
	if err != nil {
		return domain.Storage("deleting user", err)
	}
	if u == nil {
		return domain.NotFound("User not found")
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		return domain.Storage("deleting user", err)
	}
	return nil
}

func createUser(ctx context.Context, users *repos.UserRepo, raw map[string]any, roleID *int64) (*domain.User, error) {
	var missing []string
	fields := map[string]string{}
	for _, k := range []string{"name", "lastname", "email", "password"} {
		v, _ := validate.Text(raw, k)
		if v == "" {
			missing = append(missing, k)
		}
		fields[k] = v
	}
	// passwords are hashed as sent, surrounding spaces included
	if pw, ok := raw["password"].(string); ok {
		fields["password"] = pw
	}
	if len(missing) > 0 {
		return nil, domain.Validation("Missing required fields: %s", strings.Join(missing, ", "))
	}

	name, msg := validate.Name(fields["name"])
	if msg != "" {
		return nil, domain.Validation("%s", msg)
	}
	last, msg := validate.Lastname(fields["lastname"])
	if msg != "" {
		return nil, domain.Validation("%s", msg)
	}
	if msg := validate.Password(fields["password"]); msg != "" {
		return nil, domain.Validation("%s", msg)
	}
	email, msg := validate.Email(fields["email"])
	if msg != "" {
		return nil, domain.Validation("%s", msg)
	}

	existing, err := users.ByEmail(ctx, email)
	if err != nil {
		return nil, domain.Storage("creating user", err)
	}
	if existing != nil {
		return nil, domain.Conflict("Email already registered")
	}

	h, err := bcrypt.GenerateFromPassword([]byte(fields["password"]), bcryptCost)
	if err != nil {
		return nil, domain.Storage("creating user", err)
	}
	u := &domain.User{Name: name, Lastname: last, Email: email, Hash: string(h), RoleID: roleID}
	if err := users.Create(ctx, u); err != nil {
		return nil, domain.Storage("creating user", err)
	}
	if fresh, err := users.ByID(ctx, u.ID); err == nil && fresh != nil {
		return fresh, nil
	}
	return u, nil
}

// optRoleID reads role_id; blank or zero clears the role.
func optRoleID(raw map[string]any) (*int64, error) {
	v, _ := validate.Text(raw, "role_id")
	if v == "" || v == "0" {
		return nil, nil
	}
	id, ok := validate.ID(v)
	if !ok {
		return nil, domain.Validation("Invalid data types: role_id: %q is not an integer", v)
	}
	return &id, nil
}
