package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funkoshop/internal/domain"
)

func TestFromProduct_DetailShape(t *testing.T) {
	imgs := `["/star-wars/baby-yoda/baby-yoda-2.webp"]`
	p := domain.Product{
		ID: 3, Name: "Baby Yoda", Description: "Blueball",
		Price: decimal.RequireFromString("49.99"), Stock: 7, SKU: "STW-001",
		ImageFront: "/star-wars/baby-yoda/baby-yoda-1.webp", AdditionalImages: &imgs,
		LicenceID: 1, LicenceName: "Star Wars", CategoryID: 2, CategoryName: "Figuras",
	}

	b, err := json.Marshal(FromProduct(p, true))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"product_id": 3,
		"product_name": "Baby Yoda",
		"product_description": "Blueball",
		"price": 49.99,
		"stock": 7,
		"discount": 0,
		"sku": "STW-001",
		"image_front": "/star-wars/baby-yoda/baby-yoda-1.webp",
		"image_back": "",
		"additional_images": ["/star-wars/baby-yoda/baby-yoda-2.webp"],
		"licence": {"licence_id": 1, "licence_name": "Star Wars"},
		"category": {"category_id": 2, "category_name": "Figuras"}
	}`, string(b))
}

func TestFromProducts_ListingsOmitRelations(t *testing.T) {
	d := 10
	out := FromProducts([]domain.Product{{ID: 1, Discount: &d, LicenceName: "Pokemon"}})
	require.Len(t, out, 1)
	assert.Nil(t, out[0].Licence)
	assert.Equal(t, 10, out[0].Discount)
	assert.Empty(t, FromProducts(nil))
}

func TestFromTaxonomyAndUser(t *testing.T) {
	desc := "Vinyl"
	assert.Equal(t, Category{ID: 1, Name: "Figuras", Description: "Vinyl"},
		FromCategory(domain.Category{ID: 1, Name: "Figuras", Description: &desc}))
	assert.Equal(t, Licence{ID: 2, Name: "Pokemon", Description: "Licencia Pokemon"},
		FromLicence(domain.Licence{ID: 2, Name: "Pokemon", Description: "Licencia Pokemon"}))

	u := FromUser(domain.User{ID: 5, Email: "ash@example.com", Hash: "$2a$secret"})
	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
	assert.Nil(t, u.RoleName)
}
