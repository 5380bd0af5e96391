package routes

import (
	"github.com/gin-gonic/gin"

	"timeclock/controllers"
	"timeclock/middleware"
	"timeclock/models"
)

func InitializeRoutes(router *gin.Engine, h *controllers.Handler) {
	router.GET("/health", controllers.Health)
	router.GET("/metrics", middleware.MetricsHandler(h.Config.MetricsAllowedIPs))

	api := router.Group("/api")

	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/me", h.Me)

	api.GET("/setup/status", h.SetupStatus)
	api.POST("/setup/create-admin", h.CreateAdmin)

	api.GET("/debug/users", h.DebugUsers)

	cron := api.Group("/cron")
	cron.Use(middleware.CronSecret(h.Config.CronSecret))
	{
		cron.GET("/cleanup-cloudinary", h.CronCleanupImages)
		cron.POST("/cleanup-cloudinary", h.CronCleanupImages)
	}

	api.GET("/image", middleware.RequireSession(h.AnySession()), h.ProxyImage)

	api.POST("/employee/login", h.EmployeeLogin)
	api.POST("/employee/logout", h.EmployeeLogout)
	employee := api.Group("/employee")
	employee.Use(middleware.RequireEmployee(h.Employee))
	{
		employee.GET("/me", h.EmployeeMe)
		employee.GET("/timesheet", h.EmployeeTimesheet)
		employee.POST("/upload/image", h.UploadEmployeeImage)
		employee.POST("/clock/:action", h.Clock)
	}

	dashboard := api.Group("")
	dashboard.Use(middleware.RequireDashboard(h.Dashboard, h.Store.Users))
	{
		dashboard.POST("/upload/image", h.UploadImage)
		dashboard.GET("/employees/generate-pin", h.GeneratePin)

		employees := dashboard.Group("/employees", middleware.RequireRight(models.RightEmployees))
		employees.GET("", h.ListEmployees)
		employees.POST("", h.CreateEmployee)
		employees.GET("/:id", h.GetEmployee)
		employees.PUT("/:id", h.UpdateEmployee)
		employees.DELETE("/:id", h.DeleteEmployee)

		categories := dashboard.Group("/categories", middleware.RequireRight(models.RightCategories))
		categories.GET("", h.ListCategories)
		categories.POST("", h.CreateCategory)
		categories.GET("/:id", h.GetCategory)
		categories.PUT("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)

		devices := dashboard.Group("/devices", middleware.RequireRight(models.RightDevices))
		devices.GET("", h.ListDevices)
		devices.POST("", h.RegisterDevice)
		devices.PATCH("/:id/status", h.SetDeviceStatus)
		devices.DELETE("/:id", h.DeleteDevice)

		timesheets := dashboard.Group("/timesheets", middleware.RequireRight(models.RightTimesheets))
		timesheets.GET("", h.ListTimesheets)
		timesheets.POST("", h.CreateTimesheet)
		timesheets.GET("/export", h.ExportTimesheets)
		timesheets.PUT("/:id", h.UpdateTimesheet)
		timesheets.DELETE("/:id", h.DeleteTimesheet)

		shifts := dashboard.Group("/shifts", middleware.RequireRight(models.RightTimesheets))
		shifts.GET("", h.ListShifts)
		shifts.PATCH("/:id/status", h.SetShiftStatus)

		users := dashboard.Group("/users", middleware.RequireAdmin())
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)

		admin := dashboard.Group("/admin", middleware.RequireAdmin())
		admin.POST("/cleanup/timesheets", h.CleanupTimesheets)
		admin.POST("/cleanup/cloudinary", h.CleanupImages)
	}
}
