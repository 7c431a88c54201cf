package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/migios-apps/migios-console-api/api/controllers"
	checkoutcontrollers "github.com/migios-apps/migios-console-api/api/controllers/checkout"
	searchcontrollers "github.com/migios-apps/migios-console-api/api/controllers/search"
	"github.com/migios-apps/migios-console-api/api/middleware"
	"github.com/migios-apps/migios-console-api/internal/catalog"
	checkoutsvc "github.com/migios-apps/migios-console-api/internal/checkout"
	"github.com/migios-apps/migios-console-api/internal/draft"
	"github.com/migios-apps/migios-console-api/pkg/config"
	"github.com/migios-apps/migios-console-api/pkg/coreapi"
	"github.com/migios-apps/migios-console-api/pkg/logger"
	"github.com/migios-apps/migios-console-api/pkg/metrics"
	"github.com/migios-apps/migios-console-api/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	Redis        *redis.Client
	CoreAPI      *coreapi.Client
	DraftStore   *draft.Store
	Checkout     *checkoutsvc.Service
	Search       *catalog.Service
	HTTPMetrics  *metrics.HTTPMetrics
	PromRegistry *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger
	terminal := cfg.Draft.DefaultTerminal

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
	}))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Redis, deps.CoreAPI))
	})

	if deps.PromRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.PromRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/checkout", func(r chi.Router) {
			r.Route("/draft", func(r chi.Router) {
				r.Get("/", checkoutcontrollers.DraftFetch(deps.DraftStore, terminal, logg))
				r.Put("/", checkoutcontrollers.DraftSave(deps.DraftStore, terminal, logg))
				r.Delete("/", checkoutcontrollers.DraftClear(deps.DraftStore, terminal, logg))
			})
			r.Get("/cart", checkoutcontrollers.CartFetch(deps.DraftStore, terminal, logg))
			r.Route("/payments", func(r chi.Router) {
				r.Post("/", checkoutcontrollers.PaymentAdd(deps.DraftStore, terminal, logg))
				r.Delete("/", checkoutcontrollers.PaymentsClear(deps.DraftStore, terminal, logg))
				r.Delete("/{methodId}", checkoutcontrollers.PaymentRemove(deps.DraftStore, terminal, logg))
			})
			r.Post("/", checkoutcontrollers.Submit(deps.Checkout, terminal, logg))
		})

		r.Get("/search/{kind}", searchcontrollers.Typeahead(deps.Search, logg))
	})

	return r
}
