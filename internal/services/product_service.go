package services

import (
	"context"
	"errors"

	"funkoshop/internal/cache"
	"funkoshop/internal/domain"
	"funkoshop/internal/media"
	"funkoshop/internal/metrics"
	"funkoshop/internal/repos"
	"funkoshop/internal/validate"
)

// TaxonomyMeta tells the caller which licence/category a product ended up
// with and whether the write introduced it.
type TaxonomyMeta struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Created bool   `json:"created"`
}

type CreateMeta struct {
	Licence  TaxonomyMeta `json:"licence"`
	Category TaxonomyMeta `json:"category"`
}

// ProductUploads are the image files that came with a create/update request.
type ProductUploads struct {
	Front      media.Upload
	Back       media.Upload
	Additional []media.Upload
}

func (u ProductUploads) empty() bool {
	if u.Front != nil || u.Back != nil {
		return false
	}
	for _, a := range u.Additional {
		if a != nil {
			return false
		}
	}
	return true
}

type ProductService struct {
	Products   *repos.ProductRepo
	Licences   *repos.LicenceRepo
	Categories *repos.CategoryRepo
	Media      *media.Store
	Cache      cache.Cache
}

func NewProductService(p *repos.ProductRepo, l *repos.LicenceRepo, c *repos.CategoryRepo, m *media.Store, cc cache.Cache) *ProductService {
	if cc == nil {
		cc = cache.Noop{}
	}
	return &ProductService{Products: p, Licences: l, Categories: c, Media: m, Cache: cc}
}

// Create validates raw, resolves (or creates) its licence and category and
// persists the product. It stops at the first failure; a failure before the
// final insert may still have created taxonomy rows.
func (s *ProductService) Create(ctx context.Context, raw map[string]any) (*domain.Product, CreateMeta, error) {
	in, err := validate.Product(raw)
	if err != nil {
		return nil, CreateMeta{}, err
	}

	taken, err := s.Products.SKUExists(ctx, in.SKU, 0)
	if err != nil {
		return nil, CreateMeta{}, domain.Storage("creating product", err)
	}
	if taken {
		return nil, CreateMeta{}, domain.Conflict("SKU '%s' already exists", in.SKU)
	}

	var meta CreateMeta
	lic, err := s.resolveLicence(ctx, in.Licence, in.LicenceDefaults, &meta.Licence)
	if err != nil {
		return nil, CreateMeta{}, err
	}
	cat, err := s.resolveCategory(ctx, in.Category, in.CategoryDefaults, &meta.Category)
	if err != nil {
		return nil, CreateMeta{}, err
	}

	p := &domain.Product{
		Name:             in.Name,
		Description:      in.Description,
		Price:            in.Price,
		Stock:            in.Stock,
		Discount:         in.Discount,
		SKU:              in.SKU,
		Dues:             in.Dues,
		CreatedBy:        in.CreatedBy,
		ImageFront:       in.ImageFront,
		ImageBack:        in.ImageBack,
		AdditionalImages: in.AdditionalImages,
		LicenceID:        lic.ID,
		CategoryID:       cat.ID,
	}
	if err := s.Products.Create(ctx, p); err != nil {
		return nil, CreateMeta{}, domain.Storage("creating product", err)
	}
	metrics.ProductsCreated.Inc()
	s.Cache.Invalidate(ctx, cache.Prefix)

	stored, err := s.Products.ByID(ctx, p.ID)
	if err != nil || stored == nil {
		p.LicenceName, p.CategoryName = lic.Name, cat.Name
		return p, meta, nil
	}
	return stored, meta, nil
}

// CreateWithUploads stores the uploaded images first, then creates the product
// with their paths. Files stay on disk if the create is rejected afterwards.
func (s *ProductService) CreateWithUploads(ctx context.Context, raw map[string]any, up ProductUploads) (*domain.Product, CreateMeta, error) {
	if !up.empty() && s.Media != nil {
		productName, _ := validate.Text(raw, "product_name")
		imgs := s.Media.SaveProductImages(up.Front, up.Back, up.Additional, s.licenceDirName(ctx, raw), productName)
		injectImages(raw, imgs)
	}
	return s.Create(ctx, raw)
}

// licenceDirName is the licence name the upload directory is derived from.
// A licence given only by id is looked up; an unknown id yields "".
func (s *ProductService) licenceDirName(ctx context.Context, raw map[string]any) string {
	ref, err := validate.Reference(raw, "licence")
	if err != nil || ref.IsZero() {
		return ""
	}
	if !ref.IsID() {
		return ref.Name()
	}
	if l, err := s.Licences.ByID(ctx, ref.ID()); err == nil && l != nil {
		return l.Name
	}
	return ""
}

func injectImages(raw map[string]any, imgs media.ProductImages) {
	if imgs.ImageFront != "" {
		raw["image_front"] = imgs.ImageFront
	}
	if imgs.ImageBack != "" {
		raw["image_back"] = imgs.ImageBack
	}
	if len(imgs.AdditionalImages) > 0 {
		raw["additional_images"] = imgs.AdditionalImages
	}
}

// Update applies the keys present in raw to product id. Uploaded images
// replace only their own slot; additional uploads are appended to the stored
// list. Licence and category changes are always resolved by name.
func (s *ProductService) Update(ctx context.Context, id int64, raw map[string]any, up ProductUploads) (*domain.Product, error) {
	p, err := s.Products.ByID(ctx, id)
	if err != nil {
		return nil, domain.Storage("updating product", err)
	}
	if p == nil {
		return nil, domain.NotFound("Product not found")
	}

	patch, err := validate.ProductPatchFrom(raw)
	if err != nil {
		return nil, err
	}

	if patch.SKU.Set && patch.SKU.Value != p.SKU {
		taken, err := s.Products.SKUExists(ctx, patch.SKU.Value, p.ID)
		if err != nil {
			return nil, domain.Storage("updating product", err)
		}
		if taken {
			return nil, domain.Conflict("SKU '%s' already exists", patch.SKU.Value)
		}
	}

	if patch.LicenceName != "" {
		var m TaxonomyMeta
		l, err := s.resolveLicence(ctx, domain.ByName(patch.LicenceName), patch.LicenceDefaults, &m)
		if err != nil {
			return nil, relabel(err, "updating product")
		}
		p.LicenceID, p.LicenceName = l.ID, l.Name
	}
	if patch.CategoryName != "" {
		var m TaxonomyMeta
		c, err := s.resolveCategory(ctx, domain.ByName(patch.CategoryName), patch.CategoryDefaults, &m)
		if err != nil {
			return nil, relabel(err, "updating product")
		}
		p.CategoryID, p.CategoryName = c.ID, c.Name
	}

	applyPatch(p, patch)

	if !up.empty() && s.Media != nil {
		stored := validate.DecodeImages(p.AdditionalImages)
		imgs := s.Media.SaveProductImagesAt(up.Front, up.Back, up.Additional, p.LicenceName, p.Name, len(stored)+2)
		if imgs.ImageFront != "" {
			p.ImageFront = imgs.ImageFront
		}
		if imgs.ImageBack != "" {
			p.ImageBack = imgs.ImageBack
		}
		if len(imgs.AdditionalImages) > 0 {
			p.AdditionalImages = validate.AdditionalImages(append(stored, imgs.AdditionalImages...))
		}
	}

	if err := s.Products.Update(ctx, p); err != nil {
		return nil, domain.Storage("updating product", err)
	}
	s.Cache.Invalidate(ctx, cache.Prefix)

	if fresh, err := s.Products.ByID(ctx, p.ID); err == nil && fresh != nil {
		return fresh, nil
	}
	return p, nil
}

func applyPatch(p *domain.Product, patch validate.ProductPatch) {
	if patch.Name.Set {
		p.Name = patch.Name.Value
	}
	if patch.Description.Set {
		p.Description = patch.Description.Value
	}
	if patch.Price.Set {
		p.Price = patch.Price.Value
	}
	if patch.Stock.Set {
		p.Stock = patch.Stock.Value
	}
	if patch.Discount.Set {
		p.Discount = patch.Discount.Value
	}
	if patch.SKU.Set {
		p.SKU = patch.SKU.Value
	}
	if patch.Dues.Set {
		p.Dues = patch.Dues.Value
	}
	if patch.CreatedBy.Set {
		p.CreatedBy = patch.CreatedBy.Value
	}
	if patch.ImageFront.Set {
		p.ImageFront = patch.ImageFront.Value
	}
	if patch.ImageBack.Set {
		p.ImageBack = patch.ImageBack.Value
	}
	if patch.AdditionalImages.Set {
		p.AdditionalImages = patch.AdditionalImages.Value
	}
}

// resolveLicence follows an explicit id strictly and get-or-creates by name.
func (s *ProductService) resolveLicence(ctx context.Context, ref domain.Reference, def domain.TaxonomyDefaults, meta *TaxonomyMeta) (*domain.Licence, error) {
	if ref.IsID() {
		l, err := s.Licences.ByID(ctx, ref.ID())
		if err != nil {
			return nil, domain.Storage("creating product", err)
		}
		if l == nil {
			return nil, domain.NotFound("Licence with id %d not found", ref.ID())
		}
		*meta = TaxonomyMeta{ID: l.ID, Name: l.Name}
		return l, nil
	}
	l, created, err := s.Licences.GetOrCreate(ctx, ref.Name(), def)
	if err != nil {
		return nil, domain.Storage("creating product", err)
	}
	if created {
		metrics.TaxonomyAutoCreated.WithLabelValues("licence").Inc()
	}
	*meta = TaxonomyMeta{ID: l.ID, Name: l.Name, Created: created}
	return l, nil
}

func (s *ProductService) resolveCategory(ctx context.Context, ref domain.Reference, def domain.TaxonomyDefaults, meta *TaxonomyMeta) (*domain.Category, error) {
	if ref.IsID() {
		c, err := s.Categories.ByID(ctx, ref.ID())
		if err != nil {
			return nil, domain.Storage("creating product", err)
		}
		if c == nil {
			return nil, domain.NotFound("Category with id %d not found", ref.ID())
		}
		*meta = TaxonomyMeta{ID: c.ID, Name: c.Name}
		return c, nil
	}
	c, created, err := s.Categories.GetOrCreate(ctx, ref.Name(), def)
	if err != nil {
		return nil, domain.Storage("creating product", err)
	}
	if created {
		metrics.TaxonomyAutoCreated.WithLabelValues("category").Inc()
	}
	*meta = TaxonomyMeta{ID: c.ID, Name: c.Name, Created: created}
	return c, nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.Products.ByID(ctx, id)
	if err != nil {
		return nil, domain.Storage("reading product", err)
	}
	if p == nil {
		return nil, domain.NotFound("Product not found")
	}
	return p, nil
}

// GetByName fails with a conflict when several products share the name.
func (s *ProductService) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	p, err := s.Products.ByName(ctx, name)
	if err != nil {
		return nil, relabel(err, "reading product")
	}
	if p == nil {
		return nil, domain.NotFound("Product not found")
	}
	return p, nil
}

func (s *ProductService) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	p, err := s.Products.BySKU(ctx, sku)
	if err != nil {
		return nil, domain.Storage("reading product", err)
	}
	if p == nil {
		return nil, domain.NotFound("Product not found")
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	return s.cachedList(ctx, cache.Prefix+"products:list", func() ([]domain.Product, error) {
		return s.Products.List(ctx)
	})
}

func (s *ProductService) ListByCategory(ctx context.Context, name string) ([]domain.Product, error) {
	return s.cachedList(ctx, cache.Prefix+"products:list:category:"+name, func() ([]domain.Product, error) {
		return s.Products.ListByCategory(ctx, name)
	})
}

func (s *ProductService) ListByLicence(ctx context.Context, name string) ([]domain.Product, error) {
	return s.cachedList(ctx, cache.Prefix+"products:list:licence:"+name, func() ([]domain.Product, error) {
		return s.Products.ListByLicence(ctx, name)
	})
}

func (s *ProductService) cachedList(ctx context.Context, key string, fetch func() ([]domain.Product, error)) ([]domain.Product, error) {
	out, err := cache.Load(ctx, s.Cache, key, fetch)
	if err != nil {
		return nil, domain.Storage("listing products", err)
	}
	return out, nil
}

// Delete removes the product row and returns what was deleted. Stored image
// files are left in place.
func (s *ProductService) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.Products.ByID(ctx, id)
	if err != nil {
		return nil, domain.Storage("deleting product", err)
	}
	if p == nil {
		return nil, domain.NotFound("Product not found")
	}
	if err := s.Products.Delete(ctx, id); err != nil {
		return nil, domain.Storage("deleting product", err)
	}
	s.Cache.Invalidate(ctx, cache.Prefix)
	return p, nil
}

// relabel keeps typed domain errors and wraps anything else as storage.
func relabel(err error, op string) error {
	var de *domain.Error
	if errors.As(err, &de) {
		if de.Kind == domain.ErrStorage && de.Err != nil {
			return domain.Storage(op, de.Err)
		}
		return err
	}
	return domain.Storage(op, err)
}
