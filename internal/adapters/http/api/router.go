package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/breezeapi/pkg/logger"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
	Logger         logger.Logger
	// Mounts register extra routes (docs) on the same router.
	Mounts []func(chi.Router)
}

// NewRouter builds the chi router with the middleware chain and every route.
func NewRouter(ctx context.Context, s *Server, opts RouterOptions) http.Handler {
	l := opts.Logger
	if l == nil {
		l = logger.NewNop()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(
		RequestID,
		middleware.RealIP,
		CORS(origins),
		RequestLogger(l.Named("http")),
		Metrics,
		// Inside logging and metrics so a recovered panic is logged and counted as a 500.
		middleware.Recoverer,
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})

	s.Register(ctx, r)
	for _, mount := range opts.Mounts {
		mount(r)
	}
	return r
}
