package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"civic-registry/internal/auth"
	"civic-registry/internal/metrics"
	"civic-registry/internal/service"
)

const defaultMaxBody = 10 << 20

// Services is everything the router dispatches to.
type Services struct {
	Auth      service.AuthService
	Users     service.UserService
	People    service.PersonService
	Templates service.TemplateService
	Messages  service.MessageService
}

// RouterConfig tunes the middleware stack.
type RouterConfig struct {
	CORSOrigins    []string
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	// Gatherer backs /metrics; nil leaves the endpoint unmounted.
	Gatherer prometheus.Gatherer
}

// NewRouter builds the /api surface plus /healthz and /metrics.
func NewRouter(svcs Services, tokens *auth.TokenManager, cfg RouterConfig, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}

	authH := NewAuthHandler(svcs.Auth, maxBody, logger)
	usersH := NewUserHandler(svcs.Users, maxBody, logger)
	peopleH := NewPeopleHandler(svcs.People, maxBody, logger)
	templatesH := NewTemplateHandler(svcs.Templates, maxBody, logger)
	messagesH := NewMessageHandler(svcs.Messages, maxBody, logger)

	r := chi.NewRouter()
	r.Use(Recovery(logger))
	r.Use(RequestID)
	r.Use(AccessLog(logger, m))
	r.Use(CORS(cfg.CORSOrigins))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, Fail("Route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, Fail("Method not allowed"))
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Ok("ok"))
	})
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	requireAuth := RequireAuth(tokens, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authH.Register)
			r.Post("/login", authH.Login)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/verify", authH.Verify)
				r.Get("/users", authH.ListUsers)
				r.Put("/change-password", authH.ChangePassword)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/people", func(r chi.Router) {
				r.Get("/", peopleH.List)
				r.Post("/", peopleH.Create)
				r.Post("/sync", peopleH.Sync)
				r.Post("/import", peopleH.Import)
				r.Get("/export", peopleH.Export)
				r.Get("/{id}", peopleH.Get)
				r.Put("/{id}", peopleH.Update)
				r.Delete("/{id}", peopleH.Delete)
			})

			r.Route("/templates", func(r chi.Router) {
				r.Get("/", templatesH.List)
				r.Post("/", templatesH.Create)
				r.Get("/{id}", templatesH.Get)
				r.Put("/{id}", templatesH.Update)
				r.Delete("/{id}", templatesH.Delete)
				r.Post("/{id}/preview", templatesH.Preview)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Get("/", messagesH.List)
				r.Post("/", messagesH.Send)
				r.Get("/{id}", messagesH.Get)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", usersH.List)
				r.Get("/{id}", usersH.Get)
				r.Put("/{id}", usersH.Update)
				r.Delete("/{id}", usersH.Delete)
			})
		})
	})

	return r
}
