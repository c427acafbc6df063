package http

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/shopfront/pkg/health"
	"github.com/utafrali/shopfront/pkg/middleware"
)

// RouterConfig carries the handler dependencies and the knobs the router
// needs from application config.
type RouterConfig struct {
	Cart    *CartHandler
	Catalog *CatalogHandler
	Forum   *ForumHandler
	Users   *UserHandler
	Health  *health.Handler

	Logger         *slog.Logger
	JWTSecret      string
	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string
}

// NewRouter builds the HTTP routing tree with the full middleware stack.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("shopfront"))
	r.Use(middleware.Tracing("shopfront"))

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowedOrigins = cfg.AllowedOrigins
	}
	r.Use(middleware.CORS(corsCfg))

	limiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	r.Use(limiter.Middleware)
	r.Use(ContentTypeJSON)

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		// Public surface: catalog browsing, boards, sign-in.
		api.Group(func(public chi.Router) {
			public.Use(middleware.RequestLogger(cfg.Logger))

			public.Post("/auth/signin", cfg.Users.SignIn)

			public.Get("/products", cfg.Catalog.ListProducts)
			public.Get("/products/{productId}", cfg.Catalog.GetProduct)
			public.Get("/products/{productId}/reviews", cfg.Catalog.ListReviews)

			public.Get("/boards", cfg.Forum.ListBoards)
			public.Get("/boards/{boardId}/posts", cfg.Forum.ListPosts)
		})

		// Protected surface: everything tied to a session.
		api.Group(func(protected chi.Router) {
			protected.Use(SessionAuth(cfg.JWTSecret))
			protected.Use(middleware.RequestLogger(cfg.Logger))

			protected.Get("/users/me", cfg.Users.Me)
			protected.Get("/users/{userId}", cfg.Users.GetUser)

			protected.Post("/products/{productId}/reviews", cfg.Catalog.SubmitReview)

			protected.Post("/boards/{boardId}/posts", cfg.Forum.CreatePost)
			protected.Post("/boards/{boardId}/posts/{postId}/votes", cfg.Forum.RecordVote)

			protected.Get("/cart", cfg.Cart.GetCart)
			protected.Delete("/cart", cfg.Cart.ClearCart)
			protected.Post("/cart/items", cfg.Cart.AddItem)
			protected.Put("/cart/items/{productId}", cfg.Cart.UpdateItemQuantity)
			protected.Delete("/cart/items/{productId}", cfg.Cart.RemoveItem)
		})
	})

	return r
}
