package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"n5-drill-service/internal/auth"
)

// RouterOptions collects what NewRouter needs beyond the handlers.
type RouterOptions struct {
	Authenticator  auth.Authenticator
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter mounts health, REST and WebSocket routes.
func NewRouter(ws *WSHandler, api *APIHandler, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	authn := opts.Authenticator
	if authn == nil {
		authn = auth.HeaderAuthenticator{}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(logger), middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "PATCH", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-User-ID"},
			ExposedHeaders: []string{"Content-Length"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware(authn))
		pr.Get("/ws/practice", ws.ServeWS)

		pr.Route("/api", func(ar chi.Router) {
			ar.Use(middleware.Timeout(30 * time.Second))
			ar.Get("/me", api.GetProfile)
			ar.Patch("/me", api.UpdateProfile)
			ar.Get("/ranking/weekly", api.WeeklyRanking)
		})
	})
	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// OriginChecker returns a WebSocket origin check matching the CORS allow list.
// An empty list accepts every origin.
func OriginChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin] || set["*"]
	}
}
