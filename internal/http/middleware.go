package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"civic-registry/internal/auth"
	applog "civic-registry/internal/common/logger"
	"civic-registry/internal/domain"
	"civic-registry/internal/metrics"
	"civic-registry/internal/service"
)

type contextKeyRequestID struct{}
type contextKeyCaller struct{}

const requestIDHeader = "X-Request-ID"

// RequestIDFrom returns the request id set by RequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID{}).(string)
	return id
}

// CallerFrom returns the authenticated caller set by RequireAuth.
func CallerFrom(ctx context.Context) (service.Caller, bool) {
	c, ok := ctx.Value(contextKeyCaller{}).(service.Caller)
	return c, ok
}

// WithCaller attaches c to ctx.
func WithCaller(ctx context.Context, c service.Caller) context.Context {
	return context.WithValue(ctx, contextKeyCaller{}, c)
}

// RequestID propagates an incoming X-Request-ID or generates one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKeyRequestID{}, id)))
	})
}

// Recovery turns a handler panic into a 500 envelope.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("Panic recovered",
						zap.Any("panic", rec),
						zap.String("path", r.URL.Path),
						zap.String("request_id", RequestIDFrom(r.Context())),
						zap.Stack("stack"),
					)
					writeJSON(w, http.StatusInternalServerError, Fail(internalErrorMessage))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AccessLog logs one line per request and records latency by route pattern.
func AccessLog(logger *zap.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := applog.ForRequest(logger, RequestIDFrom(r.Context()), r.Method, r.URL.Path)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(applog.WithLogger(r.Context(), reqLogger)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.ObserveHTTP(r.Method, route, strconv.Itoa(status), start)
			reqLogger.Info("HTTP request",
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// CORS allows the configured browser origins. An origin of "*" allows any.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	_, wildcard := allowed["*"]
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				if _, ok := allowed[origin]; ok || wildcard {
					h := w.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Set("Access-Control-Allow-Credentials", "true")
					h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
					h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
					h.Add("Vary", "Origin")
				}
			}
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth verifies the bearer token and attaches the caller.
func RequireAuth(tokens *auth.TokenManager, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			token = strings.TrimSpace(token)
			if !ok || token == "" {
				writeJSON(w, http.StatusUnauthorized, Fail("Access denied. No token provided."))
				return
			}
			claims, err := tokens.Parse(token)
			if err != nil {
				message := auth.ErrTokenInvalid.Message
				if de, ok := domain.AsError(err); ok {
					message = de.Message
				}
				applog.FromContext(r.Context(), logger).Debug("Token rejected", zap.Error(err))
				writeJSON(w, http.StatusUnauthorized, Fail(message))
				return
			}
			caller := service.Caller{
				ID:        claims.ID,
				Email:     claims.Email,
				Role:      claims.Role,
				Direction: claims.Direction,
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

// mustCaller is used by handlers mounted behind RequireAuth.
func mustCaller(w http.ResponseWriter, r *http.Request) (service.Caller, bool) {
	c, ok := CallerFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("Access denied. User not authenticated."))
	}
	return c, ok
}
