package api

import (
	"net/http"
	"time"
	"travelgram/internal/api/handler"
	"travelgram/internal/app/service"
	"travelgram/internal/common/security"
	"travelgram/internal/platform/upload"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	recoveryService *service.RecoveryService,
	userService *service.UserService,
	postService *service.PostService,
	uploads *upload.Store,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies the bearer token when present and puts claims in context.
	// Route groups opt into enforcement via middleware.Authenticator.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Uploaded images are served statically; URLs stored on posts and
	// profiles point here.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(uploads.Dir()))))

	// Route paths are fixed by the reference client.
	r.Route("/user", func(user chi.Router) {
		handler.NewAuthHandler(authService).RegisterRoutes(user)
		handler.NewRecoveryHandler(recoveryService).RegisterRoutes(user)
		handler.NewUserHandler(userService, uploads).RegisterRoutes(user)
	})

	r.Route("/post", func(post chi.Router) {
		handler.NewPostHandler(postService, uploads).RegisterRoutes(post)
	})

	return r
}
