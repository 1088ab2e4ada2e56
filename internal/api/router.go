package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/realworld-go/conduit-be/internal/api/handlers"
	"github.com/realworld-go/conduit-be/internal/auth"
	"github.com/realworld-go/conduit-be/internal/config"
	"github.com/realworld-go/conduit-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	cfg *config.Config,
	authSvc *auth.Service,
	userService services.UserServiceProvider,
	articleService services.ArticleServiceProvider,
	commentService services.CommentServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, authSvc, cfg.Production())
	profileHandler := handlers.NewProfileHandler(userService, cfg.Production())
	articleHandler := handlers.NewArticleHandler(articleService, userService, cfg.Production())
	commentHandler := handlers.NewCommentHandler(commentService, userService, cfg.Production())
	tagHandler := handlers.NewTagHandler(articleService, cfg.Production())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})

		r.Post("/users", userHandler.Register)
		r.Post("/users/login", userHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(authSvc.Required)
			r.Get("/user", userHandler.GetCurrent)
			r.Put("/user", userHandler.UpdateCurrent)
		})

		r.Route("/profiles/{username}", func(r chi.Router) {
			r.With(authSvc.Optional).Get("/", profileHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(authSvc.Required)
				r.Post("/follow", profileHandler.Follow)
				r.Delete("/follow", profileHandler.Unfollow)
			})
		})

		r.Route("/articles", func(r chi.Router) {
			r.With(authSvc.Optional).Get("/", articleHandler.List)
			r.With(authSvc.Required).Get("/feed", articleHandler.Feed)
			r.With(authSvc.Required).Post("/", articleHandler.Create)

			r.Route("/{slug}", func(r chi.Router) {
				r.With(authSvc.Optional).Get("/", articleHandler.Get)
				r.Group(func(r chi.Router) {
					r.Use(authSvc.Required)
					r.Put("/", articleHandler.Update)
					r.Delete("/", articleHandler.Delete)
					r.Post("/favorite", articleHandler.Favorite)
					r.Delete("/favorite", articleHandler.Unfavorite)
					r.Post("/comments", commentHandler.Create)
					r.Delete("/comments/{commentID}", commentHandler.Delete)
				})
				r.With(authSvc.Optional).Get("/comments", commentHandler.List)
			})
		})

		r.Get("/tags", tagHandler.List)
	})

	return r
}
