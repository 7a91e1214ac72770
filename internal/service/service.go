package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"orvann/backend/internal/cache"
	"orvann/backend/internal/domain"
	"orvann/backend/internal/store"
)

var (
	DefaultPartners            = []string{"JP", "KATHE", "ANDRES"}
	DefaultMerchandiseCategory = "Merchandise"
	DefaultFallbackTicket      = decimal.NewFromInt(100000)
)

var ledgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "orvann_ledger_operations_total",
	Help: "Ledger mutations by operation and outcome.",
}, []string{"operation", "outcome"})

type Options struct {
	Partners            []string
	Categories          []string
	MerchandiseCategory string
	FallbackTicket      decimal.Decimal
	Location            *time.Location
	ReportTTL           time.Duration
	Now                 func() time.Time
}

type Service struct {
	repo           store.Repository
	reports        cache.ReportCache
	validate       *validator.Validate
	partners       []string
	categories     []string
	merchandise    string
	fallbackTicket decimal.Decimal
	loc            *time.Location
	reportTTL      time.Duration
	now            func() time.Time
}

func New(repo store.Repository, reports cache.ReportCache, opts Options) *Service {
	if reports == nil {
		reports = cache.NoopReportCache{}
	}
	if len(opts.Partners) == 0 {
		opts.Partners = DefaultPartners
	}
	if opts.MerchandiseCategory == "" {
		opts.MerchandiseCategory = DefaultMerchandiseCategory
	}
	if !opts.FallbackTicket.IsPositive() {
		opts.FallbackTicket = DefaultFallbackTicket
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		repo:           repo,
		reports:        reports,
		validate:       newValidator(),
		partners:       append([]string(nil), opts.Partners...),
		categories:     withCategory(opts.Categories, opts.MerchandiseCategory),
		merchandise:    opts.MerchandiseCategory,
		fallbackTicket: opts.FallbackTicket,
		loc:            opts.Location,
		reportTTL:      opts.ReportTTL,
		now:            opts.Now,
	}
}

func (s *Service) Partners() []string {
	return append([]string(nil), s.partners...)
}

func (s *Service) Categories() []string {
	return append([]string(nil), s.categories...)
}

func (s *Service) PaymentMethods() []domain.PaymentMethod {
	return append([]domain.PaymentMethod(nil), domain.PaymentMethods...)
}

func (s *Service) Today() domain.Date {
	return domain.DateOf(s.clock())
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) isPartner(name string) bool {
	for _, p := range s.partners {
		if p == name {
			return true
		}
	}
	return false
}

func (s *Service) checkPartner(field string, name string) error {
	if !s.isPartner(name) {
		return store.Invalid(field, "must be one of "+strings.Join(s.partners, ", "))
	}
	return nil
}

func (s *Service) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		reason := fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		return store.Invalid(fe.Field(), reason)
	}
	return err
}

// invalidate drops cached reports after a successful mutation.
func (s *Service) invalidate(ctx context.Context) {
	if err := s.reports.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Str("component", "report_cache").Msg("invalidate failed")
	}
}

// record counts and logs a ledger mutation, then invalidates cached reports
// when it succeeded.
func (s *Service) record(ctx context.Context, operation string, err error) {
	if err != nil {
		ledgerOperations.WithLabelValues(operation, "error").Inc()
		if !store.IsClientError(err) {
			log.Error().Err(err).Str("operation", operation).Msg("ledger operation failed")
		}
		return
	}
	ledgerOperations.WithLabelValues(operation, "ok").Inc()
	s.invalidate(ctx)
}

// cached serves key from the report cache. The generation is read once so a
// result built while a mutation invalidates the cache is filed under the old
// generation and never served.
func cached[T any](ctx context.Context, s *Service, key string, build func() (T, error)) (T, error) {
	var out T
	if s.reportTTL <= 0 {
		return build()
	}

	gen, err := s.reports.Generation(ctx)
	if err != nil {
		log.Warn().Err(err).Str("component", "report_cache").Str("key", key).Msg("generation read failed")
		return build()
	}
	hit, err := s.reports.Get(ctx, gen, key, &out)
	if err != nil {
		log.Warn().Err(err).Str("component", "report_cache").Str("key", key).Msg("read failed")
	} else if hit {
		return out, nil
	}

	out, err = build()
	if err != nil {
		return out, err
	}
	if err := s.reports.Set(ctx, gen, key, out, s.reportTTL); err != nil {
		log.Warn().Err(err).Str("component", "report_cache").Str("key", key).Msg("write failed")
	}
	return out, nil
}

// asValidation reports storage CHECK and FK rejections as input errors.
func asValidation(field string, err error) error {
	if errors.Is(err, store.ErrConstraintViolation) {
		return &store.FieldError{Field: field, Reason: err.Error()}
	}
	return err
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

func normalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

func withCategory(categories []string, category string) []string {
	out := make([]string, 0, len(categories)+1)
	seen := map[string]bool{}
	for _, c := range append(append([]string(nil), categories...), category) {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
