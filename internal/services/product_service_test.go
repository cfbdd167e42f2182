package services_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funkoshop/internal/domain"
	"funkoshop/internal/media"
	"funkoshop/internal/repos"
	"funkoshop/internal/services"
	"funkoshop/internal/validate"
)

type memUpload struct {
	name string
	data []byte
}

func (u memUpload) Filename() string { return u.name }
func (u memUpload) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(u.data)), nil
}

type env struct {
	db       *sqlx.DB
	root     string
	products *services.ProductService
	cats     *services.CategoryService
	lics     *services.LicenceService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	root := t.TempDir()
	store := media.NewStore(root)
	prods, lics, cats := repos.NewProductRepo(db), repos.NewLicenceRepo(db), repos.NewCategoryRepo(db)
	return &env{
		db:       db,
		root:     root,
		products: services.NewProductService(prods, lics, cats, store, nil),
		cats:     services.NewCategoryService(cats, store, nil),
		lics:     services.NewLicenceService(lics, store, nil),
	}
}

func (e *env) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.Get(&n, `SELECT COUNT(*) FROM `+table))
	return n
}

func pikachu() map[string]any {
	return map[string]any{
		"product_name":        "Pikachu",
		"product_description": "Pikachu Smiley",
		"price":               "49.99",
		"stock":               "7",
		"sku":                 "PKM-001",
		"licence":             "Pokemon",
		"category":            "Figuras",
	}
}

func TestCreate_AutoCreatesUnseenTaxonomy(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, meta, err := e.products.Create(ctx, pikachu())
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, "49.99", p.Price.StringFixed(2))
	assert.True(t, meta.Licence.Created)
	assert.True(t, meta.Category.Created)
	assert.Equal(t, "Pokemon", meta.Licence.Name)
	assert.Equal(t, "Figuras", meta.Category.Name)
	assert.Equal(t, meta.Licence.ID, p.LicenceID)
	assert.Equal(t, meta.Category.ID, p.CategoryID)
	assert.Equal(t, "Pokemon", p.LicenceName)
}

func TestCreate_ReusesExistingTaxonomy(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	lic, err := e.lics.Create(ctx, map[string]any{"licence_name": "Pokemon"}, nil)
	require.NoError(t, err)
	cat, err := e.cats.Create(ctx, map[string]any{"category_name": "Figuras"}, nil)
	require.NoError(t, err)

	p, meta, err := e.products.Create(ctx, pikachu())
	require.NoError(t, err)
	assert.False(t, meta.Licence.Created)
	assert.False(t, meta.Category.Created)
	assert.Equal(t, lic.ID, p.LicenceID)
	assert.Equal(t, cat.ID, p.CategoryID)
	assert.Equal(t, 1, e.count(t, "licence"))
	assert.Equal(t, 1, e.count(t, "category"))
}

func TestCreate_DuplicateSKUSecondTime(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, _, err := e.products.Create(ctx, pikachu())
	require.NoError(t, err)

	p, meta, err := e.products.Create(ctx, pikachu())
	require.Error(t, err)
	assert.Nil(t, p)
	assert.Equal(t, services.CreateMeta{}, meta)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, "SKU 'PKM-001' already exists", domain.Message(err))
	assert.Equal(t, 1, e.count(t, "product"))
}

func TestCreate_BadPriceTouchesNothing(t *testing.T) {
	e := newEnv(t)
	raw := pikachu()
	raw["price"] = "abc"

	_, _, err := e.products.Create(context.Background(), raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Contains(t, domain.Message(err), "Invalid data types")
	assert.Zero(t, e.count(t, "product"))
	assert.Zero(t, e.count(t, "licence"))
	assert.Zero(t, e.count(t, "category"))
}

func TestCreate_ExplicitIDMustExist(t *testing.T) {
	e := newEnv(t)
	raw := pikachu()
	delete(raw, "licence")
	raw["licence_id"] = "42"

	_, _, err := e.products.Create(context.Background(), raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, "Licence with id 42 not found", domain.Message(err))
	assert.Zero(t, e.count(t, "licence"), "no auto-create for an explicit id")
}

func TestCreateWithUploads_PlacesImagesByConvention(t *testing.T) {
	e := newEnv(t)
	raw := pikachu()
	raw["product_name"] = "Baby Yoda"
	raw["licence"] = "Star Wars"
	raw["sku"] = "STW-001"

	p, _, err := e.products.CreateWithUploads(context.Background(), raw, services.ProductUploads{
		Front:      memUpload{"f.webp", []byte("front")},
		Back:       memUpload{"b.webp", []byte("back")},
		Additional: []media.Upload{memUpload{"a.webp", []byte("a")}, memUpload{"c.webp", []byte("c")}},
	})
	require.NoError(t, err)

	assert.Equal(t, "/star-wars/baby-yoda/baby-yoda-1.webp", p.ImageFront)
	assert.Equal(t, "/star-wars/baby-yoda/baby-yoda-box.webp", p.ImageBack)
	assert.Equal(t, []string{
		"/star-wars/baby-yoda/baby-yoda-2.webp",
		"/star-wars/baby-yoda/baby-yoda-3.webp",
	}, validate.DecodeImages(p.AdditionalImages))

	b, err := os.ReadFile(filepath.Join(e.root, "star-wars", "baby-yoda", "baby-yoda-box.webp"))
	require.NoError(t, err)
	assert.Equal(t, "back", string(b))
}

func TestCreateWithUploads_OrphansFilesOnRejection(t *testing.T) {
	e := newEnv(t)
	raw := pikachu()
	raw["price"] = "abc"

	_, _, err := e.products.CreateWithUploads(context.Background(), raw, services.ProductUploads{
		Front: memUpload{"f.png", []byte("front")},
	})
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(e.root, "pokemon", "pikachu", "pikachu-1.png"))
	assert.NoError(t, statErr, "the upload is written before validation runs")
}

func TestUpdate_PreservesUntouchedImages(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	raw := pikachu()
	raw["image_front"] = "/a/b/b-1.webp"
	raw["additional_images"] = `["/a/b/b-2.webp"]`
	p, _, err := e.products.Create(ctx, raw)
	require.NoError(t, err)

	got, err := e.products.Update(ctx, p.ID, map[string]any{"stock": 5}, services.ProductUploads{})
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)

	stored, err := e.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "/a/b/b-1.webp", stored.ImageFront)
	assert.Equal(t, []string{"/a/b/b-2.webp"}, validate.DecodeImages(stored.AdditionalImages))
	assert.Equal(t, "PKM-001", stored.SKU)
}

func TestUpdate_UploadsReplaceSlotAndAppendDetails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	raw := pikachu()
	p, _, err := e.products.CreateWithUploads(ctx, raw, services.ProductUploads{
		Front:      memUpload{"f.webp", []byte("v1")},
		Back:       memUpload{"b.webp", []byte("box")},
		Additional: []media.Upload{memUpload{"a.webp", []byte("d2")}},
	})
	require.NoError(t, err)

	got, err := e.products.Update(ctx, p.ID, map[string]any{}, services.ProductUploads{
		Front:      memUpload{"f.webp", []byte("v2")},
		Additional: []media.Upload{memUpload{"x.webp", []byte("d3")}},
	})
	require.NoError(t, err)

	assert.Equal(t, "/pokemon/pikachu/pikachu-1.webp", got.ImageFront)
	assert.Equal(t, "/pokemon/pikachu/pikachu-box.webp", got.ImageBack)
	assert.Equal(t, []string{
		"/pokemon/pikachu/pikachu-2.webp",
		"/pokemon/pikachu/pikachu-3.webp",
	}, validate.DecodeImages(got.AdditionalImages))

	front, err := os.ReadFile(filepath.Join(e.root, "pokemon", "pikachu", "pikachu-1.webp"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(front))
	detail, err := os.ReadFile(filepath.Join(e.root, "pokemon", "pikachu", "pikachu-2.webp"))
	require.NoError(t, err)
	assert.Equal(t, "d2", string(detail), "appended uploads never overwrite stored details")
}

func TestUpdate_SKUConflictAndOwnSKU(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a, _, err := e.products.Create(ctx, pikachu())
	require.NoError(t, err)
	raw := pikachu()
	raw["sku"] = "PKM-002"
	raw["product_name"] = "Charmander"
	b, _, err := e.products.Create(ctx, raw)
	require.NoError(t, err)

	_, err = e.products.Update(ctx, a.ID, map[string]any{"sku": "PKM-001", "stock": "1"}, services.ProductUploads{})
	require.NoError(t, err, "keeping its own sku is fine")

	_, err = e.products.Update(ctx, b.ID, map[string]any{"sku": "PKM-001", "stock": "99"}, services.ProductUploads{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	unchanged, err := e.products.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "PKM-002", unchanged.SKU)
	assert.Equal(t, 7, unchanged.Stock)
}

func TestUpdate_RenamesTaxonomyByName(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, _, err := e.products.Create(ctx, pikachu())
	require.NoError(t, err)

	got, err := e.products.Update(ctx, p.ID, map[string]any{"licence_name": "Pokemon Go", "category": "Peluches"}, services.ProductUploads{})
	require.NoError(t, err)
	assert.Equal(t, "Pokemon Go", got.LicenceName)
	assert.Equal(t, "Peluches", got.CategoryName)
	assert.Equal(t, 2, e.count(t, "licence"))
}

func TestUpdate_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.products.Update(ctx, 999, map[string]any{"stock": 1}, services.ProductUploads{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, "Product not found", domain.Message(err))

	p, _, err := e.products.Create(ctx, pikachu())
	require.NoError(t, err)
	_, err = e.products.Update(ctx, p.ID, map[string]any{"price": "abc"}, services.ProductUploads{})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestReadsAndDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, _, err := e.products.Create(ctx, pikachu())
	require.NoError(t, err)

	byName, err := e.products.GetByName(ctx, "Pikachu")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byName.ID)

	bySKU, err := e.products.GetBySKU(ctx, "PKM-001")
	require.NoError(t, err)
	assert.Equal(t, p.ID, bySKU.ID)

	list, err := e.products.ListByLicence(ctx, "poke")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	deleted, err := e.products.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pikachu", deleted.Name)

	_, err = e.products.Get(ctx, p.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = e.products.Delete(ctx, p.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
