package router

import (
	"github.com/gin-gonic/gin"
	"github.com/tablebook/restaurant-app/config"
	"github.com/tablebook/restaurant-app/controllers"
	"github.com/tablebook/restaurant-app/events"
	"github.com/tablebook/restaurant-app/middlewares"
	"github.com/tablebook/restaurant-app/services"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, hub *events.Hub) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	cfg := config.LoadBookingConfig()
	bookingSvc := services.NewBookingService(db, cfg, hub)
	availabilitySvc := services.NewAvailabilityService(db, cfg.BufferMinutes)

	userCtrl := controllers.NewUserController(db)
	bookingCtrl := controllers.NewBookingController(db, bookingSvc)
	tableCtrl := controllers.NewTableController(db, availabilitySvc, bookingSvc, hub)
	menuCtrl := controllers.NewMenuController(db)
	orderCtrl := controllers.NewOrderController(db, hub)
	cleanLogCtrl := controllers.NewCleaningLogController(db)
	notificationCtrl := controllers.NewNotificationController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Customers book without logging in; a presented token attaches the
	// account.
	r.POST("/bookings", middlewares.OptionalAuthMiddleware(), bookingCtrl.CreateBooking)
	r.GET("/tables/available", tableCtrl.GetAvailableTables)
	r.GET("/menus", menuCtrl.GetAllMenus)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)

	// BOOKINGS
	auth.GET("/bookings", middlewares.RequireRoles("staff", "waiter", "manager"), bookingCtrl.GetAllBookings)
	auth.GET("/bookings/my", bookingCtrl.GetMyBookings)
	auth.GET("/bookings/:id", bookingCtrl.GetBookingByID)
	auth.PUT("/bookings/:id", middlewares.RequireRoles("staff", "waiter", "manager"), bookingCtrl.UpdateBooking)
	auth.PUT("/bookings/:id/status", middlewares.RequireRoles("staff", "waiter", "manager"), bookingCtrl.UpdateBookingStatus)
	auth.PUT("/bookings/:id/confirm", middlewares.RequireRoles("staff", "waiter", "manager"), bookingCtrl.ConfirmBooking)
	auth.PUT("/bookings/:id/cancel-by-customer", bookingCtrl.CancelByCustomer)

	// TABLES
	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.POST("/tables", middlewares.RequireRoles("manager"), tableCtrl.CreateTable)
	auth.GET("/tables/check-availability", tableCtrl.CheckTableAvailability)
	auth.GET("/tables/:table_id", tableCtrl.GetTableByID)
	auth.PUT("/tables/:table_id", middlewares.RequireRoles("manager"), tableCtrl.UpdateTable)
	auth.DELETE("/tables/:table_id", middlewares.RequireRoles("manager"), tableCtrl.DeleteTable)
	auth.PUT("/tables/:table_id/status", tableCtrl.UpdateTableStatus)
	auth.PUT("/tables/:table_id/reserve", middlewares.RequireRoles("staff", "waiter", "manager"), tableCtrl.ReserveTable)
	auth.PUT("/tables/:table_id/clear", tableCtrl.ClearTable)
	auth.GET("/tables/:table_id/upcoming-reservations", tableCtrl.GetUpcomingReservations)

	// MENUS
	auth.POST("/menus", middlewares.RequireRoles("manager"), menuCtrl.CreateMenu)
	auth.PATCH("/menus/:menu_id", middlewares.RequireRoles("manager"), menuCtrl.UpdateMenu)
	auth.DELETE("/menus/:menu_id", middlewares.RequireRoles("manager"), menuCtrl.DeleteMenu)

	// ORDERS (table lifecycle side only)
	auth.POST("/orders", middlewares.RequireRoles("staff", "waiter", "manager"), orderCtrl.CreateOrder)
	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	auth.POST("/orders/:order_id/complete", middlewares.RequireRoles("staff", "waiter", "manager"), orderCtrl.CompleteOrder)

	// CLEANING LOGS
	auth.GET("/cleaning-logs", cleanLogCtrl.GetAllCleaningLogs)
	auth.POST("/cleaning-logs", middlewares.RequireRoles("cleaner", "staff"), cleanLogCtrl.CreateCleaningLog)
	auth.PATCH("/cleaning-logs/:clean_id", middlewares.RequireRoles("cleaner", "staff"), cleanLogCtrl.UpdateCleaningLog)

	// NOTIFICATIONS
	auth.GET("/notifications", notificationCtrl.GetAllNotifications)
	auth.PATCH("/notifications/:notif_id/read", notificationCtrl.MarkNotificationRead)

	// WebSocket endpoint for staff event streams
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.AuthMiddleware())
	{
		wsGroup.GET("/:role", controllers.EventsHandler(hub))
	}

	return r
}
