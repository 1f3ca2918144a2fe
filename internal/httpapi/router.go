package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/backoffice/internal/service/catalog"
	"github.com/vladislavdragonenkov/backoffice/internal/service/fulfillment"
	"github.com/vladislavdragonenkov/backoffice/internal/service/orders"
	"github.com/vladislavdragonenkov/backoffice/internal/service/reports"
)

// Handler агрегирует сервисы back-office и отдаёт их по HTTP.
type Handler struct {
	catalog *catalog.Service
	orders  *orders.Service
	engine  *fulfillment.Engine
	reports *reports.Service
	logger  *log.Entry
}

// NewHandler создаёт HTTP-обработчик поверх сервисов.
func NewHandler(
	catalogSvc *catalog.Service,
	ordersSvc *orders.Service,
	engine *fulfillment.Engine,
	reportsSvc *reports.Service,
	logger *log.Entry,
) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "httpapi")
	}
	return &Handler{
		catalog: catalogSvc,
		orders:  ordersSvc,
		engine:  engine,
		reports: reportsSvc,
		logger:  logger,
	}
}

// Router собирает chi-маршрутизатор со всеми эндпоинтами API.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.handleCreateProduct)
		r.Get("/", h.handleListProducts)
		r.Get("/{id}", h.handleGetProduct)
		r.Put("/{id}", h.handleUpdateProduct)
		r.Delete("/{id}", h.handleDeleteProduct)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.handleCreateOrder)
		r.Get("/", h.handleListOrders)
		r.Get("/{id}", h.handleGetOrder)
		r.Post("/{id}/status", h.handleTransitionOrder)
	})

	r.Get("/reports/dashboard", h.handleDashboard)

	return r
}

// requestLogger логирует каждый запрос после обработки.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.logger.WithFields(log.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("http request handled")
	})
}
