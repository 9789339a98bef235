package http

import (
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yourtyme-app/yourtyme/frontend"
	"github.com/yourtyme-app/yourtyme/pkg/service/worldtime"
	"github.com/yourtyme-app/yourtyme/pkg/usecase"
	"github.com/yourtyme-app/yourtyme/pkg/utils/logging"
	"github.com/yourtyme-app/yourtyme/pkg/utils/safe"
)

type Server struct {
	router        *chi.Mux
	uc            *usecase.UseCases
	timeSvc       worldtime.Client
	signingSecret string
}

type Options func(*Server)

// WithWorldtime enables the worldtime proxy endpoint
func WithWorldtime(client worldtime.Client) Options {
	return func(s *Server) {
		s.timeSvc = client
	}
}

// WithSlackSigningSecret enables the Slack webhook surface under /hooks/slack
func WithSlackSigningSecret(secret string) Options {
	return func(s *Server) {
		s.signingSecret = secret
	}
}

func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", statusHandler)

		if s.timeSvc != nil {
			r.Get("/worldtime", worldtimeHandler(s.timeSvc))
		}

		// OAuth endpoints (if configured)
		if uc.Auth != nil {
			r.Route("/auth", func(r chi.Router) {
				r.Get("/login", authLoginHandler(uc.Auth))
				r.Get("/callback", authCallbackHandler(uc.Auth))
			})
		}

		// Profile and community routes require a known caller identity
		r.Group(func(r chi.Router) {
			r.Use(identityAuthMiddleware(uc.Profile))

			r.Get("/profile", getProfileHandler(uc.Profile))
			r.Post("/profile/name", updateNameHandler(uc.Profile))
			r.Post("/city", addCityHandler(uc.Profile))
			r.Get("/city", getCityHandler(uc.Profile))
			r.Delete("/city", deleteCityHandler(uc.Profile))
			r.Get("/community/{channelID}", getCommunityHandler(uc.Community))
			r.Get("/community/{channelID}/members", getMembersHandler(uc.Community))
			r.Delete("/community/members", clearMembersHandler(uc.Community))
		})
	})

	// Slack webhook endpoints - no identity auth, uses signature verification
	if s.signingSecret != "" {
		r.Route("/hooks/slack", func(r chi.Router) {
			r.Use(SlackSignatureMiddleware(s.signingSecret))

			r.Post("/event", NewSlackEventHandler(uc).ServeHTTP)
			r.Post("/interaction", NewSlackInteractionHandler(uc).ServeHTTP)
		})
	}

	// Static file serving for the dashboard SPA (catch-all, must be last)
	staticFS, err := fs.Sub(frontend.StaticFiles, "dist")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to bind dist dir for static")
	}

	r.Get("/*", spaHandler(staticFS))

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// spaHandler handles SPA routing by serving static files and falling back to index.html
func spaHandler(staticFS fs.FS) http.HandlerFunc {
	fileServer := http.FileServer(http.FS(staticFS))

	return func(w http.ResponseWriter, r *http.Request) {
		urlPath := strings.TrimPrefix(r.URL.Path, "/")

		if urlPath == "" {
			urlPath = "index.html"
		}

		if file, err := staticFS.Open(urlPath); err != nil {
			// File not found, serve index.html for SPA routing
			if indexFile, err := staticFS.Open("index.html"); err == nil {
				defer safe.Close(r.Context(), indexFile)
				w.Header().Set("Content-Type", "text/html")
				safe.Copy(r.Context(), w, indexFile)
				return
			}

			http.NotFound(w, r)
			return
		} else {
			safe.Close(r.Context(), file)
		}

		fileServer.ServeHTTP(w, r)
	}
}
