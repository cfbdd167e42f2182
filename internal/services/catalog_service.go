package services

import (
	"context"

	"funkoshop/internal/cache"
	"funkoshop/internal/domain"
	"funkoshop/internal/media"
	"funkoshop/internal/metrics"
	"funkoshop/internal/repos"
	"funkoshop/internal/validate"
)

// CategoryService manages categories directly (as opposed to the implicit
// creation done by the product workflow).
type CategoryService struct {
	Categories *repos.CategoryRepo
	Media      *media.Store
	Cache      cache.Cache
}

func NewCategoryService(c *repos.CategoryRepo, m *media.Store, cc cache.Cache) *CategoryService {
	if cc == nil {
		cc = cache.Noop{}
	}
	return &CategoryService{Categories: c, Media: m, Cache: cc}
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	out, err := cache.Load(ctx, s.Cache, cache.Prefix+"categories:list", func() ([]domain.Category, error) {
		return s.Categories.List(ctx)
	})
	if err != nil {
		return nil, domain.Storage("listing categories", err)
	}
	return out, nil
}

// ListByLicence returns the categories in use by products of matching licences.
func (s *CategoryService) ListByLicence(ctx context.Context, licence string) ([]domain.Category, error) {
	out, err := cache.Load(ctx, s.Cache, cache.Prefix+"categories:list:licence:"+licence, func() ([]domain.Category, error) {
		return s.Categories.ListByLicence(ctx, licence)
	})
	if err != nil {
		return nil, domain.Storage("listing categories", err)
	}
	return out, nil
}

func (s *CategoryService) Create(ctx context.Context, raw map[string]any, image media.Upload) (*domain.Category, error) {
	name, _ := validate.Text(raw, "category_name")
	if name == "" {
		return nil, domain.Validation("Category name is required")
	}
	existing, err := s.Categories.ByName(ctx, name)
	if err != nil {
		return nil, domain.Storage("creating category", err)
	}
	if existing != nil {
		return nil, domain.Conflict("Category %q already exists", name)
	}

	c := &domain.Category{Name: name}
	if desc, _ := validate.Text(raw, "category_description"); desc != "" {
		c.Description = &desc
	}
	c.Image = s.image(raw, image, name)

	if err := s.Categories.Create(ctx, c); err != nil {
		return nil, domain.Storage("creating category", err)
	}
	s.Cache.Invalidate(ctx, cache.Prefix)
	return c, nil
}

// Update changes only the fields present in raw. A new upload replaces the
// stored image path.
func (s *CategoryService) Update(ctx context.Context, id int64, raw map[string]any, image media.Upload) (*domain.Category, error) {
	c, err := s.Categories.ByID(ctx, id)
	if err != nil {
		return nil, domain.Storage("updating category", err)
	}
	if c == nil {
		return nil, domain.NotFound("Category not found")
	}

	if name, ok := validate.Text(raw, "category_name"); ok {
		if name == "" {
			return nil, domain.Validation("Category name cannot be empty")
		}
		if name != c.Name {
			other, err := s.Categories.ByName(ctx, name)
			if err != nil {
				return nil, domain.Storage("updating category", err)
			}
			if other != nil {
				return nil, domain.Conflict("Category %q already exists", name)
			}
		}
		c.Name = name
	}
	if desc, ok := validate.Text(raw, "category_description"); ok {
		c.Description = nullable(desc)
	}
	if img, ok := validate.Text(raw, "image_category"); ok {
		c.Image = nullable(img)
	}
	if image != nil && s.Media != nil {
		if p := s.Media.SaveCategoryImage(image, c.Name); p != "" {
			c.Image = &p
		}
	}

	if err := s.Categories.Update(ctx, c); err != nil {
		return nil, domain.Storage("updating category", err)
	}
	s.Cache.Invalidate(ctx, cache.Prefix)
	return c, nil
}

// Delete refuses while products still reference the category; the returned
// count is the number of referencing products.
func (s *CategoryService) Delete(ctx context.Context, id int64) (*domain.Category, int, error) {
	c, err := s.Categories.ByID(ctx, id)
	if err != nil {
		return nil, 0, domain.Storage("deleting category", err)
	}
	if c == nil {
		return nil, 0, domain.NotFound("Category not found")
	}
	n, err := s.Categories.CountProducts(ctx, id)
	if err != nil {
		return nil, 0, domain.Storage("deleting category", err)
	}
	if n > 0 {
		metrics.DeleteRefused.WithLabelValues("category").Inc()
		return c, n, domain.Conflict("Cannot delete category because it has %d associated product(s)", n)
	}
	if err := s.Categories.Delete(ctx, id); err != nil {
		return nil, 0, domain.Storage("deleting category", err)
	}
	s.Cache.Invalidate(ctx, cache.Prefix)
	return c, 0, nil
}

func (s *CategoryService) image(raw map[string]any, u media.Upload, name string) *string {
	if u != nil && s.Media != nil {
		if p := s.Media.SaveCategoryImage(u, name); p != "" {
			return &p
		}
	}
	img, _ := validate.Text(raw, "image_category")
	return nullable(img)
}

type LicenceService struct {
	Licences *repos.LicenceRepo
	Media    *media.Store
	Cache    cache.Cache
}

func NewLicenceService(l *repos.LicenceRepo, m *media.Store, cc cache.Cache) *LicenceService {
	if cc == nil {
		cc = cache.Noop{}
	}
	return &LicenceService{Licences: l, Media: m, Cache: cc}
}

func (s *LicenceService) List(ctx context.Context) ([]domain.Licence, error) {
	out, err := cache.Load(ctx, s.Cache, cache.Prefix+"licences:list", func() ([]domain.Licence, error) {
		return s.Licences.List(ctx)
	})
	if err != nil {
		return nil, domain.Storage("listing licences", err)
	}
	return out, nil
}

// SearchByName is a case-insensitive "contains" lookup; it may return several.
func (s *LicenceService) SearchByName(ctx context.Context, name string) ([]domain.Licence, error) {
	out, err := s.Licences.SearchByName(ctx, name)
	if err != nil {
		return nil, domain.Storage("listing licences", err)
	}
	return out, nil
}

func (s *LicenceService) Create(ctx context.Context, raw map[string]any, image media.Upload) (*domain.Licence, error) {
	name, _ := validate.Text(raw, "licence_name")
	if name == "" {
		return nil, domain.Validation("Licence name is required")
	}
	existing, err := s.Licences.ByName(ctx, name)
	if err != nil {
		return nil, domain.Storage("creating licence", err)
	}
	if existing != nil {
		return nil, domain.Conflict("Licence %q already exists", name)
	}

	desc, _ := validate.Text(raw, "licence_description")
	if desc == "" {
		desc = "Licencia " + name
	}
	l := &domain.Licence{Name: name, Description: desc, Image: s.image(raw, image, name)}
	if err := s.Licences.Create(ctx, l); err != nil {
		return nil, domain.Storage("creating licence", err)
	}
	s.Cache.Invalidate(ctx, cache.Prefix)
	return l, nil
}

func (s *LicenceService) Update(ctx context.Context, id int64, raw map[string]any, image media.Upload) (*domain.Licence, error) {
	l, err := s.Licences.ByID(ctx, id)
	if err != nil {
		return nil, domain.Storage("updating licence", err)
	}
	if l == nil {
		return nil, domain.NotFound("Licence not found")
	}

	if name, ok := validate.Text(raw, "licence_name"); ok {
		if name == "" {
			return nil, domain.Validation("Licence name cannot be empty")
		}
		if name != l.Name {
			other, err := s.Licences.ByName(ctx, name)
			if err != nil {
				return nil, domain.Storage("updating licence", err)
			}
			if other != nil {
				return nil, domain.Conflict("Licence %q already exists", name)
			}
		}
		l.Name = name
	}
	if desc, ok := validate.Text(raw, "licence_description"); ok && desc != "" {
		l.Description = desc
	}
	if img, ok := validate.Text(raw, "licence_image"); ok {
		l.Image = nullable(img)
	}
	if image != nil && s.Media != nil {
		if p := s.Media.SaveLicenceImage(image, l.Name); p != "" {
			l.Image = &p
		}
	}

	if err := s.Licences.Update(ctx, l); err != nil {
		return nil, domain.Storage("updating licence", err)
	}
	s.Cache.Invalidate(ctx, cache.Prefix)
	return l, nil
}

func (s *LicenceService) Delete(ctx context.Context, id int64) (*domain.Licence, int, error) {
	l, err := s.Licences.ByID(ctx, id)
	if err != nil {
		return nil, 0, domain.Storage("deleting licence", err)
	}
	if l == nil {
		return nil, 0, domain.NotFound("Licence not found")
	}
	n, err := s.Licences.CountProducts(ctx, id)
	if err != nil {
		return nil, 0, domain.Storage("deleting licence", err)
	}
	if n > 0 {
		metrics.DeleteRefused.WithLabelValues("licence").Inc()
		return l, n, domain.Conflict("Cannot delete licence because it has %d associated product(s)", n)
	}
	if err := s.Licences.Delete(ctx, id); err != nil {
		return nil, 0, domain.Storage("deleting licence", err)
	}
	s.Cache.Invalidate(ctx, cache.Prefix)
	return l, 0, nil
}

func (s *LicenceService) image(raw map[string]any, u media.Upload, name string) *string {
	if u != nil && s.Media != nil {
		if p := s.Media.SaveLicenceImage(u, name); p != "" {
			return &p
		}
	}
	img, _ := validate.Text(raw, "licence_image")
	return nullable(img)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
