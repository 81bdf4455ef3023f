package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrLotU/user-profile-be/internal/api/handlers"
	"github.com/MrLotU/user-profile-be/internal/auth"
	"github.com/MrLotU/user-profile-be/internal/services"
	"github.com/MrLotU/user-profile-be/internal/storage"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(tokens *auth.Manager, accounts services.AccountServiceProvider, profiles services.ProfileServiceProvider, events services.EventServiceProvider, pictures *storage.PictureStore) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Every route sees the resolved session; protected groups also
	// require it to be authenticated.
	r.Use(tokens.Sessions())

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(accounts, events, tokens)
	profileHandler := handlers.NewProfileHandler(accounts, profiles, pictures)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", accountHandler.SignUp)
			r.Post("/signin", accountHandler.SignIn)
			r.With(auth.RequireAuthenticated).Post("/signout", accountHandler.SignOut)
		})

		r.Route("/profile", func(r chi.Router) {
			r.Use(auth.RequireAuthenticated)
			r.Get("/", profileHandler.Get)
			r.Put("/", profileHandler.Update)
			r.Put("/email", profileHandler.UpdateEmail)
			r.Post("/picture", profileHandler.UploadPicture)
		})

		r.Route("/account", func(r chi.Router) {
			r.Use(auth.RequireAuthenticated)
			r.Post("/password", accountHandler.ChangePassword)
			r.Get("/activity", accountHandler.Activity)
		})
	})

	return r
}
