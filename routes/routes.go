package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/shopstream/user-service/controllers"
	"github.com/shopstream/user-service/metrics"
	"github.com/shopstream/user-service/middleware"
	"github.com/shopstream/user-service/services"
	"github.com/shopstream/user-service/utils"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter(svc *services.UserService, collector *metrics.Collector) *gin.Engine {
	router := gin.New()

	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(collector.Middleware())

	router.GET("/metrics", collector.Handler())

	userCtrl := controllers.NewUserController(svc)
	addressCtrl := controllers.NewAddressController(svc)
	adminCtrl := controllers.NewAdminController(svc)

	api := router.Group("/v1")

	users := api.Group("/users")
	users.Use(middleware.Authenticate())
	{
		// "me" is accepted wherever :userId appears and resolves to the
		// caller's own id inside the gates.
		users.GET("/:userId", middleware.RequireSelfOrAdmin(), userCtrl.GetUser)
		users.PUT("/:userId", middleware.RequireSelf(), userCtrl.UpdateProfile)
		users.DELETE("/:userId", middleware.RequireSelf(), userCtrl.CloseAccount)

		users.GET("/:userId/addresses", middleware.RequireSelfOrAdmin(), addressCtrl.ListAddresses)
		users.POST("/:userId/addresses", middleware.RequireSelf(), addressCtrl.AddAddress)
		users.GET("/:userId/addresses/:addressId", middleware.RequireSelfOrAdmin(), addressCtrl.GetAddress)
		users.PUT("/:userId/addresses/:addressId", middleware.RequireSelf(), addressCtrl.UpdateAddress)
		users.DELETE("/:userId/addresses/:addressId", middleware.RequireSelf(), addressCtrl.DeleteAddress)
		users.PUT("/:userId/addresses/:addressId/default", middleware.RequireSelf(), addressCtrl.SetDefaultAddress)
	}

	admin := api.Group("/admin/users")
	admin.Use(middleware.Authenticate(), middleware.RequireAdmin())
	{
		admin.GET("", adminCtrl.ListUsers)
		admin.POST("", adminCtrl.CreateUser)
		// Gin rejects a literal /statistics route next to /:id, so the
		// reserved segment is dispatched here.
		admin.GET("/:id", func(c *gin.Context) {
			if c.Param("id") == "statistics" {
				adminCtrl.GetStatistics(c)
				return
			}
			adminCtrl.GetUser(c)
		})
		admin.PUT("/:id", adminCtrl.UpdateUser)
		admin.DELETE("/:id", adminCtrl.DeleteUser)
		admin.PUT("/:id/role", adminCtrl.UpdateRole)
		admin.PUT("/:id/toggle-status", adminCtrl.ToggleStatus)
	}

	return router
}
