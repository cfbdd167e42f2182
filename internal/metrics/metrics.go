package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "products_created_total",
		Help:      "Products persisted by the creation workflow.",
	})

	// kind is "licence" or "category".
	TaxonomyAutoCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "taxonomy_autocreated_total",
		Help:      "Licence/category rows created implicitly while writing a product.",
	}, []string{"kind"})

	DeleteRefused = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "delete_refused_total",
		Help:      "Taxonomy deletes refused because products still reference the row.",
	}, []string{"kind"})

	// result is "ok" or "fail".
	MediaWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "media_writes_total",
		Help: "Uploaded files written by the media store.",
	}, []string{"result"})
)

func Handler() http.Handler { return promhttp.Handler() }
