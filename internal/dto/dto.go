// Package dto turns stored entities into the JSON records API clients see.
package dto

import (
	"funkoshop/internal/domain"
	"funkoshop/internal/validate"
)

type LicenceRef struct {
	ID   int64  `json:"licence_id"`
	Name string `json:"licence_name"`
}

type CategoryRef struct {
	ID   int64  `json:"category_id"`
	Name string `json:"category_name"`
}

type Product struct {
	ID               int64        `json:"product_id"`
	Name             string       `json:"product_name"`
	Description      string       `json:"product_description"`
	Price            float64      `json:"price"`
	Stock            int          `json:"stock"`
	Discount         int          `json:"discount"`
	SKU              string       `json:"sku"`
	ImageFront       string       `json:"image_front"`
	ImageBack        string       `json:"image_back"`
	AdditionalImages []string     `json:"additional_images,omitempty"`
	Licence          *LicenceRef  `json:"licence,omitempty"`
	Category         *CategoryRef `json:"category,omitempty"`
}

// FromProduct renders p. withRelations adds the licence and category
// references; listings leave them out.
func FromProduct(p domain.Product, withRelations bool) Product {
	price, _ := p.Price.Float64()
	out := Product{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		Price:            price,
		Stock:            p.Stock,
		SKU:              p.SKU,
		ImageFront:       p.ImageFront,
		ImageBack:        p.ImageBack,
		AdditionalImages: validate.DecodeImages(p.AdditionalImages),
	}
	if p.Discount != nil {
		out.Discount = *p.Discount
	}
	if withRelations {
		if p.LicenceName != "" {
			out.Licence = &LicenceRef{ID: p.LicenceID, Name: p.LicenceName}
		}
		if p.CategoryName != "" {
			out.Category = &CategoryRef{ID: p.CategoryID, Name: p.CategoryName}
		}
	}
	return out
}

func FromProducts(ps []domain.Product) []Product {
	out := make([]Product, 0, len(ps))
	for _, p := range ps {
		out = append(out, FromProduct(p, false))
	}
	return out
}

type Category struct {
	ID          int64  `json:"category_id"`
	Name        string `json:"category_name"`
	Description string `json:"category_description"`
	Image       string `json:"image_category"`
}

func FromCategory(c domain.Category) Category {
	return Category{ID: c.ID, Name: c.Name, Description: deref(c.Description), Image: deref(c.Image)}
}

func FromCategories(cs []domain.Category) []Category {
	out := make([]Category, 0, len(cs))
	for _, c := range cs {
		out = append(out, FromCategory(c))
	}
	return out
}

type Licence struct {
	ID          int64  `json:"licence_id"`
	Name        string `json:"licence_name"`
	Description string `json:"licence_description"`
	Image       string `json:"licence_image"`
}

func FromLicence(l domain.Licence) Licence {
	return Licence{ID: l.ID, Name: l.Name, Description: l.Description, Image: deref(l.Image)}
}

func FromLicences(ls []domain.Licence) []Licence {
	out := make([]Licence, 0, len(ls))
	for _, l := range ls {
		out = append(out, FromLicence(l))
	}
	return out
}

type User struct {
	ID         int64   `json:"user_id"`
	Name       string  `json:"name"`
	Lastname   string  `json:"lastname"`
	Email      string  `json:"email"`
	RoleID     *int64  `json:"role_id"`
	RoleName   *string `json:"role_name"`
	CreateTime *string `json:"create_time,omitempty"`
}

// FromUser never exposes the password hash.
func FromUser(u domain.User) User {
	out := User{ID: u.ID, Name: u.Name, Lastname: u.Lastname, Email: u.Email, RoleID: u.RoleID}
	if u.RoleName != "" {
		out.RoleName = &u.RoleName
	}
	if u.CreateTime != nil {
		ts := u.CreateTime.Format("2006-01-02T15:04:05")
		out.CreateTime = &ts
	}
	return out
}

func FromUsers(us []domain.User) []User {
	out := make([]User, 0, len(us))
	for _, u := range us {
		out = append(out, FromUser(u))
	}
	return out
}

type Role struct {
	ID   int64  `json:"role_id"`
	Name string `json:"role_name"`
}

func FromRoles(rs []domain.Role) []Role {
	out := make([]Role, 0, len(rs))
	for _, r := range rs {
		out = append(out, Role{ID: r.ID, Name: r.Name})
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
