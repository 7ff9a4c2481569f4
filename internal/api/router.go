package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/cms-be/internal/api/handlers"
	"github.com/isdelr/cms-be/internal/auth"
	"github.com/isdelr/cms-be/internal/services"
	"github.com/isdelr/cms-be/internal/websocket"
)

// Dependencies groups everything the router wires into handlers.
type Dependencies struct {
	Hub            *websocket.Hub
	Tokens         *auth.TokenManager
	Users          services.UserServiceProvider
	Posts          services.PostServiceProvider
	Comments       services.CommentServiceProvider
	Tags           services.TagServiceProvider
	Backups        services.BackupServiceProvider
	Events         services.EventServiceProvider
	Volume         handlers.VolumeReporter // optional
	BackupDir      string
	AllowedOrigins []string
	SecureCookies  bool
}

// NewRouter creates and configures a new Chi router. Routes are served both
// at the root and under /api/v1.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(deps.Users, deps.Tokens, deps.SecureCookies)
	postHandler := handlers.NewPostHandler(deps.Posts, deps.Tags)
	commentHandler := handlers.NewCommentHandler(deps.Comments)
	backupHandler := handlers.NewBackupHandler(deps.Backups)
	eventHandler := handlers.NewEventHandler(deps.Events)
	healthHandler := handlers.NewHealthHandler(deps.BackupDir, deps.Volume)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.AllowedOrigins)
	requireAuth := deps.Tokens.Middleware()

	routes := func(r chi.Router) {
		r.Get("/health", healthHandler.Get)
		r.Get("/ws", wsHandler.Serve)
		r.Get("/events", eventHandler.GetRecent)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", userHandler.GetProfile)
			r.Post("/avatars", userHandler.AddAvatar)
			r.Put("/avatars/{avatarId}/active", userHandler.SetActiveAvatar)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.GetAll)
			r.Get("/recent", postHandler.GetRecent)
			r.Get("/{postId}", postHandler.Get)
			r.With(requireAuth).Post("/", postHandler.Create)
			r.With(requireAuth).Delete("/{postId}", postHandler.Delete)
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/{id}", commentHandler.GetAllForPost) // id is a post ID
			r.With(requireAuth).Post("/", commentHandler.Create)
			r.With(requireAuth).Delete("/{id}", commentHandler.Delete) // id is a comment ID
		})

		r.Get("/tags", postHandler.GetTags)

		r.Route("/backups", func(r chi.Router) {
			r.Get("/", backupHandler.GetAll)
			r.With(requireAuth).Post("/", backupHandler.Create)
		})
	}

	// API versioning
	r.Route("/api/v1", routes)
	r.Group(routes)

	return r
}
