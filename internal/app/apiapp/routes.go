package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/skipdm/edworking/internal/config"
	authsvc "github.com/skipdm/edworking/internal/services/auth"
	connsvc "github.com/skipdm/edworking/internal/services/connections"
	feedsvc "github.com/skipdm/edworking/internal/services/feed"
	mediasvc "github.com/skipdm/edworking/internal/services/media"
	postssvc "github.com/skipdm/edworking/internal/services/posts"
	profilesvc "github.com/skipdm/edworking/internal/services/profiles"
	swipesvc "github.com/skipdm/edworking/internal/services/swipes"
	"github.com/skipdm/edworking/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService        *authsvc.Service
	ProfileService     *profilesvc.Service
	MediaService       *mediasvc.Service
	PostService        *postssvc.Service
	FeedService        *feedsvc.Service
	SwipeService       *swipesvc.Service
	ConnectionsService *connsvc.Service
	Logger             *zap.Logger
	Config             config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.MediaService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)
	postHandler := handlers.NewPostHandler(deps.PostService)
	feedHandler := handlers.NewFeedHandler(deps.FeedService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	connectionsHandler := handlers.NewConnectionsHandler(deps.ConnectionsService)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/refresh", authHandler.Refresh)
			r.With(authMW).Post("/logout", authHandler.Logout)
		})

		r.Route("/profile", func(r chi.Router) {
			r.Use(authMW)
			r.Get("/", profileHandler.Get)
			r.Put("/", profileHandler.Update)
			r.Post("/avatar", profileHandler.UploadAvatar)
		})

		r.With(authMW).Get("/users", profileHandler.Directory)
		r.With(authMW).Get("/feed/next", feedHandler.Next)
		r.With(authMW).Post("/swipes", swipeHandler.Handle)

		r.Route("/posts", func(r chi.Router) {
			r.Use(authMW)
			r.Get("/", postHandler.ListAll)
			r.Post("/", postHandler.Create)
			r.Get("/user/{id}", postHandler.ListByAuthor)
		})

		r.Route("/connections", func(r chi.Router) {
			r.Use(authMW)
			r.Get("/chats", connectionsHandler.Chats)
			r.Get("/admirers", connectionsHandler.Admirers)
		})
	})
}
