package handlers

import (
	"github.com/jmoiron/sqlx"

	"funkoshop/internal/cache"
	"funkoshop/internal/config"
	"funkoshop/internal/media"
	"funkoshop/internal/repos"
	"funkoshop/internal/services"
)

type Deps struct {
	Auth *services.AuthService

	ProductHandler   *ProductHandler
	CategoryHandler  *CategoryHandler
	LicenceHandler   *LicenceHandler
	AuthHandler      *AuthHandler
	UserAdminHandler *UserAdminHandler
}

// NewDeps wires repositories, services and handlers over one database. A nil
// cache disables listing caching.
func NewDeps(db *sqlx.DB, cfg config.Config, cc cache.Cache) *Deps {
	if cc == nil {
		cc = cache.Noop{}
	}
	store := media.NewStore(cfg.MediaDir)

	catRepo := repos.NewCategoryRepo(db)
	licRepo := repos.NewLicenceRepo(db)
	prodRepo := repos.NewProductRepo(db)
	userRepo := repos.NewUserRepo(db)

	auth := &services.AuthService{Users: userRepo}
	return &Deps{
		Auth:             auth,
		ProductHandler:   &ProductHandler{Products: services.NewProductService(prodRepo, licRepo, catRepo, store, cc)},
		CategoryHandler:  &CategoryHandler{Categories: services.NewCategoryService(catRepo, store, cc)},
		LicenceHandler:   &LicenceHandler{Licences: services.NewLicenceService(licRepo, store, cc)},
		AuthHandler:      &AuthHandler{Auth: auth},
		UserAdminHandler: &UserAdminHandler{Users: &services.UserService{Users: userRepo}},
	}
}
