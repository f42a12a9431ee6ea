package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ratethestore/ratethestore-backend/config"
	"github.com/ratethestore/ratethestore-backend/internal/app/controller"
	"github.com/ratethestore/ratethestore-backend/internal/app/service"
	"github.com/ratethestore/ratethestore-backend/internal/metrics"
	"github.com/ratethestore/ratethestore-backend/internal/middleware"
)

type Router struct {
	authController      *controller.AuthController
	userController      *controller.UserController
	storeController     *controller.StoreController
	ratingController    *controller.RatingController
	dashboardController *controller.DashboardController
	authMiddleware      *middleware.AuthMiddleware
	metrics             *metrics.Metrics
	config              *config.Config
}

// NewRouter wires the controllers. m may be nil when metrics are disabled.
func NewRouter(
	authController *controller.AuthController,
	userController *controller.UserController,
	storeController *controller.StoreController,
	ratingController *controller.RatingController,
	dashboardController *controller.DashboardController,
	authMiddleware *middleware.AuthMiddleware,
	m *metrics.Metrics,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:      authController,
		userController:      userController,
		storeController:     storeController,
		ratingController:    ratingController,
		dashboardController: dashboardController,
		authMiddleware:      authMiddleware,
		metrics:             m,
		config:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	if r.metrics != nil {
		router.Use(middleware.MetricsMiddleware(r.metrics))
		router.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Rate The Store API is running",
		})
	})

	authenticate := r.authMiddleware.Authenticate()
	adminOnly := r.authMiddleware.RequireCapability(service.CapAdmin)
	storeManagers := r.authMiddleware.RequireCapability(service.CapManageStores)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", r.authController.Signup)
			auth.POST("/login", r.authController.Login)
			auth.GET("/me", authenticate, r.authController.Me)
		}

		users := api.Group("/users", authenticate)
		{
			users.GET("", adminOnly, r.userController.ListUsers)
			users.POST("", adminOnly, r.userController.CreateUser)
			users.GET("/:id", adminOnly, r.userController.GetUser)
			users.DELETE("/:id", adminOnly, r.userController.DeleteUser)
			// self or admin, checked by the service
			users.PATCH("/:id/password", r.userController.UpdatePassword)
		}

		stores := api.Group("/stores", authenticate)
		{
			stores.GET("", r.storeController.ListStores)
			stores.GET("/:id", r.storeController.GetStore)
			stores.POST("", storeManagers, r.storeController.CreateStore)
			stores.PATCH("/:id", storeManagers, r.storeController.UpdateStore)
			stores.PATCH("/:id/ratings", r.storeController.RateStore)
			stores.DELETE("/:id", adminOnly, r.storeController.DeleteStore)
		}

		ratings := api.Group("/ratings", authenticate)
		{
			ratings.POST("", r.ratingController.SubmitRating)
			ratings.GET("/:store_id", r.ratingController.ListRatings)
			ratings.GET("/:store_id/average", r.ratingController.GetAverage)
		}

		api.GET("/dashboard", authenticate, r.dashboardController.GetDashboard)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
