package api

import (
	"log/slog"
	"net/http"
	"time"

	"waitlist-edge/fx"
	"waitlist-edge/localization"
	"waitlist-edge/location"
	"waitlist-edge/location/providers"
	"waitlist-edge/middleware/throttle"
	"waitlist-edge/middleware/throttle/application"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Deps struct {
	Guard    *application.Guard
	Throttle throttle.Options

	Resolver *location.Resolver
	// IPLocator atende GET /v1/location/ip/{ip}; a cadeia dele não deve ter o
	// sensor, senão a posição reportada responde no lugar do IP. Sem ele a rota
	// responde 404.
	IPLocator *location.Resolver
	// Sensor é opcional; sem ele POST /v1/location/sensor responde 404.
	Sensor *providers.ReportedSensor

	Rates  *fx.Cache
	Facade *localization.Facade

	// Metrics é montado em /metrics quando presente.
	Metrics http.Handler

	// Limite de requisições simultâneas nas rotas que podem sair para a rede.
	ConcurrencyMax     int
	ConcurrencyTimeout time.Duration
	// OnReject devolve o callback de rejeição para uma rota (ex.: métrica).
	OnReject func(route string) func()

	Logger *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Throttle.KeyFn == nil {
		d.Throttle.KeyFn = throttle.DefaultKeyFunc(d.Throttle.Keys)
	}
	if d.Throttle.Guard == nil && d.Guard != nil {
		d.Throttle.Guard = d.Guard
	}
	if d.Throttle.Logger == nil {
		d.Throttle.Logger = d.Logger
	}

	h := &handlers{Deps: d}
	locationLimit := h.limit("location")
	lookupLimit := h.limit("location-ip")
	ratesLimit := h.limit("rates")
	pricingLimit := h.limit("pricing")

	// sensor e invalidate mexem no registro que todo mundo vê
	reportLimit := throttle.Middleware(LocationReportAction, d.Throttle)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/actions", func(r chi.Router) {
			r.Get("/", h.listActions)
			r.With(h.requirePolicy, throttle.ActionMiddleware(actionParam, d.Throttle)).Post("/{action}", h.performAction)
			r.Get("/{action}/status", h.actionStatus)
			r.With(h.requirePolicy).Delete("/{action}", h.resetAction)
		})

		r.Get("/stats", h.stats)

		r.Route("/location", func(r chi.Router) {
			r.With(locationLimit).Get("/", h.location)
			r.With(reportLimit).Post("/sensor", h.reportSensor)
			r.With(reportLimit, locationLimit).Post("/invalidate", h.invalidateLocation)
			r.With(lookupLimit).Get("/ip/{ip}", h.lookupIP)
		})

		r.With(ratesLimit).Get("/rates", h.rates)
		r.With(pricingLimit).Get("/pricing/{segment}/{tier}", h.pricing)
		r.With(pricingLimit).Get("/budget-buckets", h.budgetBuckets)
	})

	return r
}

// LocationReportAction é a ação do throttle que protege sensor e invalidate.
const LocationReportAction = "location_report"

func actionParam(r *http.Request) string { return chi.URLParam(r, "action") }

// requirePolicy responde 404 para ações sem política antes do throttle, para
// nomes arbitrários não virarem contador, label ou chave de estatística.
func (h *handlers) requirePolicy(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		action := actionParam(r)
		if h.Guard == nil {
			writeError(w, http.StatusNotFound, "unknown_action", action)
			return
		}
		if _, ok := h.Guard.Policy(action); !ok {
			writeError(w, http.StatusNotFound, "unknown_action", action)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limit cria um limitador de concorrência; cada chamada tem seu próprio pool.
func (h *handlers) limit(route string) func(http.Handler) http.Handler {
	opts := throttle.ConcurrencyOptions{
		Max:            h.ConcurrencyMax,
		AcquireTimeout: h.ConcurrencyTimeout,
	}
	if h.OnReject != nil {
		opts.OnReject = h.OnReject(route)
	}
	return throttle.ConcurrencyMiddleware(opts)
}
