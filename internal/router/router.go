package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/marketly-dev/marketly/internal/handlers"
	"github.com/marketly-dev/marketly/internal/middleware"
	"github.com/marketly-dev/marketly/internal/models"
	"github.com/marketly-dev/marketly/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Options struct {
	Logger      *slog.Logger
	ServiceName string
	Origins     []string
	Media       storage.Store
	// MediaRoot is served under /media when product images live on local disk.
	MediaRoot string
}

func NewRouter(opts Options) *gin.Engine {
	r := gin.New()

	origins := opts.Origins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r.Use(
		middleware.RequestLogger(opts.Logger),
		middleware.Recovery(opts.Logger),
		middleware.Metrics(),
		otelgin.Middleware(opts.ServiceName),
	)

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.MediaRoot != "" {
		r.Static("/media", opts.MediaRoot)
	}

	authenticated := middleware.AuthMiddleware()
	buyer := middleware.RequireRole(models.RoleBuyer)
	seller := middleware.RequireRole(models.RoleSeller)
	admin := middleware.RequireRole(models.RoleAdmin)

	users := r.Group("/users")
	{
		users.POST("", handlers.CreateUser)
		users.POST("/token", handlers.LoginUser)
		users.POST("/refresh-token", handlers.RefreshToken)
		users.GET("/me", authenticated, handlers.Me)
	}

	categories := r.Group("/categories")
	{
		categories.GET("", handlers.ListCategories)
		categories.POST("", handlers.CreateCategory)
		categories.PUT("/:id", handlers.UpdateCategory)
		categories.DELETE("/:id", handlers.DeleteCategory)
	}

	products := r.Group("/products")
	{
		products.GET("", handlers.ListProducts)
		products.GET("/:id", handlers.GetProduct)
		products.GET("/:id/reviews", handlers.ListProductReviews)
		products.GET("/category/:id", handlers.GetProductsByCategory)
		products.POST("", authenticated, seller, handlers.CreateProduct)
		products.PUT("/:id", authenticated, seller, handlers.UpdateProduct)
		products.DELETE("/:id", authenticated, seller, handlers.DeleteProduct)
		products.POST("/:id/image", authenticated, seller, handlers.UploadProductImage(opts.Media))
	}

	reviews := r.Group("/reviews")
	{
		reviews.GET("", handlers.ListReviews)
		reviews.GET("/:id", handlers.GetReview)
		reviews.POST("", authenticated, buyer, handlers.CreateReview)
		reviews.DELETE("/:id", authenticated, admin, handlers.DeleteReview)
	}

	cart := r.Group("/cart", authenticated, buyer)
	{
		cart.GET("", handlers.GetCart)
		cart.DELETE("", handlers.ClearCart)
		cart.POST("/items", handlers.AddCartItem)
		cart.PUT("/items/:product_id", handlers.UpdateCartItem)
		cart.DELETE("/items/:product_id", handlers.RemoveCartItem)
	}

	return r
}
