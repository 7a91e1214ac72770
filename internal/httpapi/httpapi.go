package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/service"
	"orvann/backend/internal/store"
)

const requestIDHeader = "X-Request-ID"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orvann_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orvann_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

type Options struct {
	AllowedOrigin  string
	ShopName       string
	MetricsEnabled bool
}

type API struct {
	service *service.Service
	opts    Options
}

func New(svc *service.Service, opts Options) *API {
	if opts.ShopName == "" {
		opts.ShopName = "ORVANN"
	}
	return &API{service: svc, opts: opts}
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(a.securityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{a.opts.AllowedOrigin},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))
	r.Use(accessLog)

	r.Get("/healthz", a.handleHealth)
	if a.opts.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/config", a.handleConfig)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", a.handleListProducts)
			r.Post("/", a.handleCreateProduct)
			r.Get("/low-stock", a.handleLowStock)
			r.Post("/import", a.handleImportProducts)
			r.Get("/{sku}", a.handleGetProduct)
			r.Patch("/{sku}", a.handleUpdateProduct)
			r.Delete("/{sku}", a.handleDeleteProduct)
			r.Post("/{sku}/stock", a.handleAddStock)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Post("/", a.handleRecordSale)
			r.Get("/daily", a.handleDailySales)
			r.Get("/monthly", a.handleMonthlySales)
			r.Get("/weekly", a.handleWeeklySales)
			r.Get("/previous-week", a.handlePreviousWeekSales)
			r.Get("/range", a.handleSalesRange)
			r.Get("/series", a.handleDailySeries)
			r.Get("/{id}", a.handleGetSale)
			r.Patch("/{id}", a.handleEditSale)
			r.Delete("/{id}", a.handleVoidSale)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", a.handleRecordExpense)
			r.Post("/even", a.handleRecordEvenExpense)
			r.Post("/custom", a.handleRecordCustomExpense)
			r.Get("/monthly", a.handleMonthlyExpenses)
			r.Get("/range", a.handleExpensesRange)
			r.Get("/{id}", a.handleGetExpense)
			r.Patch("/{id}", a.handleEditExpense)
			r.Delete("/{id}", a.handleDeleteExpense)
		})

		r.Get("/settlement", a.handleSettlement)
		r.Get("/break-even", a.handleBreakEven)
		r.Get("/inventory/summary", a.handleInventorySummary)

		r.Route("/drawer", func(r chi.Router) {
			r.Get("/", a.handleDrawerState)
			r.Post("/open", a.handleOpenDrawer)
			r.Post("/close", a.handleCloseDrawer)
			r.Post("/reopen", a.handleReopenDrawer)
			r.Get("/close-sheet", a.handleCloseSheet)
		})

		r.Route("/credits", func(r chi.Router) {
			r.Get("/", a.handleListCredits)
			r.Get("/pending", a.handlePendingCredits)
			r.Get("/{id}", a.handleGetCredit)
			r.Post("/{id}/payments", a.handlePayCreditPartial)
			r.Post("/{id}/settle", a.handlePayCreditFull)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", a.handleListOrders)
			r.Post("/", a.handleCreateOrder)
			r.Get("/debt", a.handleSupplierDebt)
			r.Get("/{id}", a.handleGetOrder)
			r.Patch("/{id}", a.handleEditOrder)
			r.Delete("/{id}", a.handleDeleteOrder)
			r.Post("/{id}/pay", a.handlePayOrder)
			r.Post("/{id}/receive", a.handleReceiveOrder)
		})

		r.Route("/fixed-costs", func(r chi.Router) {
			r.Get("/", a.handleListFixedCosts)
			r.Post("/", a.handleCreateFixedCost)
			r.Patch("/{id}", a.handleUpdateFixedCost)
			r.Delete("/{id}", a.handleDeleteFixedCost)
		})

		r.Get("/exports/ledger.xlsx", a.handleExportLedger)
	})

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"date":   a.service.Today(),
	})
}

func (a *API) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"partners":        a.service.Partners(),
		"categories":      a.service.Categories(),
		"payment_methods": a.service.PaymentMethods(),
	})
}

func (a *API) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if r.Method == http.MethodPost || r.Method == http.MethodPatch {
			limit := int64(1 << 20)
			if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
				limit = 10 << 20
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}

// requestID propagates the caller's X-Request-ID or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		logger := log.With().Str("request_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		startedAt := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(startedAt)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

		log.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", elapsed).
			Msg("request")
	})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrValidation), errors.Is(err, store.ErrConstraintViolation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrInsufficientStock),
		errors.Is(err, store.ErrInvalidState),
		errors.Is(err, store.ErrDuplicateKey),
		errors.Is(err, store.ErrHasDependentSales),
		errors.Is(err, store.ErrAlreadySettled):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("internal error")
	}

	var stockErr *store.StockError
	if errors.As(err, &stockErr) {
		writeJSON(w, status, map[string]any{
			"error":     err.Error(),
			"sku":       stockErr.SKU,
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
		return
	}
	var fieldErr *store.FieldError
	if errors.As(err, &fieldErr) {
		writeJSON(w, status, map[string]any{"error": err.Error(), "field": fieldErr.Field})
		return
	}
	writeError(w, status, err)
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id " + strconv.Quote(raw))
	}
	return id, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter. A missing value
// yields the zero date.
func queryDate(r *http.Request, name string) (domain.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return domain.Date{}, nil
	}
	return domain.ParseDate(raw)
}

// queryMonth reads year and month, defaulting to the current month.
func (a *API) queryMonth(r *http.Request) (int, time.Month, error) {
	today := a.service.Today()
	year, month := today.Year(), today.Month()
	if raw := strings.TrimSpace(r.URL.Query().Get("year")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errors.New("invalid year")
		}
		year = v
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("month")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errors.New("invalid month")
		}
		month = time.Month(v)
	}
	return year, month, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status >= 500 {
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
