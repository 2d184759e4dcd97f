package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/storeratings/ratehub/internal/authz"
	"github.com/storeratings/ratehub/internal/handlers"
	"github.com/storeratings/ratehub/internal/middleware"
)

func NewRouter(allowedOrigins []string) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", handlers.Logout)
			auth.GET("/profile", middleware.RequireAuth(), handlers.Profile)
			auth.PUT("/password", middleware.RequireAuth(), handlers.UpdatePassword)
		}

		storeRoutes := api.Group("/stores", middleware.RequireAuth())
		{
			storeRoutes.GET("", handlers.ListStores)
			storeRoutes.GET("/owner/store", middleware.RequirePermission(authz.PermViewOwnStore), handlers.OwnerStore)
			storeRoutes.GET("/:id", handlers.GetStore)
		}

		ratingRoutes := api.Group("/ratings", middleware.RequireAuth())
		{
			ratingRoutes.POST("", middleware.RequirePermission(authz.PermSubmitRating), handlers.SubmitRating)
			ratingRoutes.PUT("/:id", middleware.RequirePermission(authz.PermManageOwnRating), handlers.UpdateRating)
			ratingRoutes.DELETE("/:id", middleware.RequirePermission(authz.PermManageOwnRating), handlers.DeleteRating)
			ratingRoutes.GET("/store/:id", middleware.RequirePermission(authz.PermManageOwnRating), handlers.MyStoreRating)
			ratingRoutes.GET("/store/:id/all", middleware.RequirePermission(authz.PermViewStoreRatings), handlers.StoreRatings)
		}

		userRoutes := api.Group("/users", middleware.RequireAuth())
		{
			userRoutes.GET("/profile", handlers.Profile)
			userRoutes.PUT("/profile", middleware.RequirePermission(authz.PermUpdateProfile), handlers.UpdateProfile)
			userRoutes.GET("/ratings", middleware.RequirePermission(authz.PermRatingHistory), handlers.MyRatings)
			userRoutes.GET("/store", middleware.RequirePermission(authz.PermViewOwnStore), handlers.MyStore)
		}

		admin := api.Group("/admin", middleware.RequireAuth())
		{
			admin.GET("/dashboard", middleware.RequirePermission(authz.PermViewDashboard), handlers.AdminDashboard)

			admin.GET("/users", middleware.RequirePermission(authz.PermManageUsers), handlers.AdminListUsers)
			admin.POST("/users", middleware.RequirePermission(authz.PermManageUsers), handlers.AdminCreateUser)
			admin.PUT("/users/:id/role", middleware.RequirePermission(authz.PermManageUsers), handlers.AdminUpdateUserRole)
			admin.DELETE("/users/:id", middleware.RequirePermission(authz.PermDeleteUser), handlers.AdminDeleteUser)

			admin.GET("/stores", middleware.RequirePermission(authz.PermManageStores), handlers.AdminListStores)
			admin.POST("/stores", middleware.RequirePermission(authz.PermManageStores), handlers.AdminCreateStore)
			admin.DELETE("/stores/:id", middleware.RequirePermission(authz.PermManageStores), handlers.AdminDeleteStore)
		}
	}

	return r
}
