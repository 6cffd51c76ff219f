package router

import (
	"time"

	"github.com/farmconnect-dev/farmconnect/internal/handlers"
	"github.com/farmconnect-dev/farmconnect/internal/middleware"
	"github.com/farmconnect-dev/farmconnect/internal/relay"
	"github.com/farmconnect-dev/farmconnect/internal/services"
	"github.com/farmconnect-dev/farmconnect/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(hub *relay.Hub, orders *services.OrderService, weather *services.WeatherService) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Static("/uploads", handlers.UploadDir())

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocket(hub))
		api.GET("/weather", handlers.GetWeather(weather))

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		crops := api.Group("/crops")
		{
			crops.GET("", handlers.ListCrops)
			crops.GET("/:id", handlers.GetCrop)

			farmerOnly := crops.Group("", middleware.AuthMiddleware(), middleware.RequireRoles(types.RoleFarmer))
			{
				farmerOnly.POST("", handlers.CreateCrop)
				farmerOnly.GET("/mine", handlers.ListMyCrops)
				farmerOnly.PUT("/:id", handlers.UpdateCrop)
				farmerOnly.DELETE("/:id", handlers.DeleteCrop)
			}
		}

		orderRoutes := api.Group("/orders", middleware.AuthMiddleware())
		{
			orderRoutes.POST("", handlers.PlaceOrder(orders))
			orderRoutes.GET("/my", handlers.MyOrders(orders))
			orderRoutes.GET("/farmer/revenue", middleware.RequireRoles(types.RoleFarmer), handlers.FarmerRevenue(orders))
			orderRoutes.GET("/:id", handlers.GetOrder(orders))
			orderRoutes.PATCH("/:id/status", handlers.UpdateOrderStatus(orders))
		}

		forum := api.Group("/forum")
		{
			forum.GET("/posts", handlers.ListPosts)
			forum.GET("/posts/:post_id/comments", handlers.ListComments)

			authed := forum.Group("", middleware.AuthMiddleware())
			{
				authed.POST("/posts", handlers.CreatePost)
				authed.DELETE("/posts/:post_id", handlers.DeletePost)
				authed.POST("/posts/:post_id/comments", handlers.AddComment(hub))
				authed.POST("/posts/:post_id/like", handlers.LikePost)
				authed.POST("/comments/:comment_id/like", handlers.LikeComment)
				authed.DELETE("/comments/:comment_id", handlers.DeleteComment)
			}
		}

		alerts := api.Group("/alerts")
		{
			alerts.GET("", handlers.ListAlerts)
			alerts.POST("", middleware.AuthMiddleware(), handlers.CreateAlert(hub))
			alerts.DELETE("/:id", middleware.AuthMiddleware(), handlers.DeleteAlert(hub))
		}

		admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.RequireRoles(types.RoleAdmin))
		{
			admin.GET("/stats", handlers.GetStats)
			admin.GET("/top-crops", handlers.GetTopCrops)
			admin.GET("/recent-orders", handlers.GetRecentOrders)
			admin.GET("/users", handlers.GetUsers)
		}

		users := api.Group("/users", middleware.AuthMiddleware())
		{
			users.GET("/profile", handlers.GetProfile)
			users.PUT("/profile", handlers.UpdateProfile)
			users.POST("/profile/pic", handlers.UploadProfilePic)
		}
	}

	return r
}
