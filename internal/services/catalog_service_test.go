package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funkoshop/internal/domain"
)

func TestCategoryDeleteGuard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, meta, err := e.products.Create(ctx, pikachu())
	require.NoError(t, err)
	raw := pikachu()
	raw["sku"] = "PKM-002"
	_, _, err = e.products.Create(ctx, raw)
	require.NoError(t, err)

	c, n, err := e.cats.Delete(ctx, meta.Category.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, 2, n)
	assert.Equal(t, "Figuras", c.Name)
	assert.Equal(t, "Cannot delete category because it has 2 associated product(s)", domain.Message(err))

	_, n, err = e.lics.Delete(ctx, meta.Licence.ID)
	require.Error(t, err)
	assert.Equal(t, 2, n)

	empty, err := e.cats.Create(ctx, map[string]any{"category_name": "Llaveros"}, nil)
	require.NoError(t, err)
	_, n, err = e.cats.Delete(ctx, empty.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 2, e.count(t, "product"))
	assert.Equal(t, 1, e.count(t, "category"))
}

func TestCategoryDelete_NotFound(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.cats.Delete(context.Background(), 12)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, "Category not found", domain.Message(err))
}

func TestCategoryCreate_Rules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.cats.Create(ctx, map[string]any{"category_name": "  "}, nil)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Equal(t, "Category name is required", domain.Message(err))

	c, err := e.cats.Create(ctx, map[string]any{
		"category_name":        "Figuras",
		"category_description": "Vinyl figures",
	}, memUpload{"Cover.PNG", []byte("img")})
	require.NoError(t, err)
	assert.Equal(t, "Vinyl figures", *c.Description)
	require.NotNil(t, c.Image)
	assert.Equal(t, "/categories/figuras.png", *c.Image)

	_, err = e.cats.Create(ctx, map[string]any{"category_name": "Figuras"}, nil)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, `Category "Figuras" already exists`, domain.Message(err))
}

func TestCategoryUpdate_Partial(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c, err := e.cats.Create(ctx, map[string]any{"category_name": "Figuras", "category_description": "d"}, nil)
	require.NoError(t, err)

	got, err := e.cats.Update(ctx, c.ID, map[string]any{"category_name": "Figuras Pop"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Figuras Pop", got.Name)
	assert.Equal(t, "d", *got.Description)

	_, err = e.cats.Update(ctx, 999, map[string]any{}, nil)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCategoryListByLicence(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, _, err := e.products.Create(ctx, pikachu())
	require.NoError(t, err)

	cats, err := e.cats.ListByLicence(ctx, "POKE")
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Figuras", cats[0].Name)

	all, err := e.cats.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLicenceCreateSearchUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.lics.Create(ctx, map[string]any{}, nil)
	assert.Equal(t, "Licence name is required", domain.Message(err))

	l, err := e.lics.Create(ctx, map[string]any{"licence_name": "Star Wars"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Licencia Star Wars", l.Description)

	found, err := e.lics.SearchByName(ctx, "star")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	got, err := e.lics.Update(ctx, l.ID, map[string]any{"licence_description": "A galaxy far away"}, memUpload{"logo", []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "Star Wars", got.Name)
	assert.Equal(t, "A galaxy far away", got.Description)
	require.NotNil(t, got.Image)
	assert.Equal(t, "/licences/star-wars.webp", *got.Image)
}
