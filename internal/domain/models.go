package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64   `db:"category_id"`
	Name        string  `db:"category_name"`
	Description *string `db:"category_description"`
	Image       *string `db:"image_category"`
}

type Licence struct {
	ID          int64   `db:"licence_id"`
	Name        string  `db:"licence_name"`
	Description string  `db:"licence_description"`
	Image       *string `db:"licence_image"`
}

type Product struct {
	ID               int64           `db:"product_id"`
	Name             string          `db:"product_name"`
	Description      string          `db:"product_description"`
	Price            decimal.Decimal `db:"price"`
	Stock            int             `db:"stock"`
	Discount         *int            `db:"discount"`
	SKU              string          `db:"sku"`
	Dues             *int            `db:"dues"`
	CreatedBy        int             `db:"created_by"`
	ImageFront       string          `db:"image_front"`
	ImageBack        string          `db:"image_back"`
	AdditionalImages *string         `db:"additional_images"` // JSON array of paths
	CreateTime       *time.Time      `db:"create_time"`
	LicenceID        int64           `db:"licence_id"`
	CategoryID       int64           `db:"category_id"`

	// Joined on reads; empty when the referenced row is gone.
	LicenceName  string `db:"licence_name"`
	CategoryName string `db:"category_name"`
}

// Defaults applied when get-or-create has to insert a new taxonomy row.
type TaxonomyDefaults struct {
	Description string
	Image       string
}
