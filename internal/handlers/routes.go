package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/middleware"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
)

type Handlers struct {
	Booking       *BookingHandler
	Payment       *PaymentHandler
	OverallStatus *OverallStatusHandler
	Job           *JobHandler
	Award         *AwardHandler
	Notification  *NotificationHandler
}

var (
	customer  = string(models.RoleCustomer)
	jobSeeker = string(models.RoleJobSeeker)
	admin     = string(models.RoleAdmin)
)

func RegisterRoutes(app *fiber.App, h Handlers, jwtSecret string) {
	api := app.Group("/api")

	// public
	api.Post("/payment/gateway/callback", h.Payment.HandleCallback)

	// protected (JWT)
	protected := api.Group("/",
		middleware.JWTFromCookie(jwtSecret),
		middleware.AttachJWTLocals(),
	)

	bk := protected.Group("/booking")
	bk.Post("/", middleware.RequireRoles(customer, admin), h.Booking.Create)
	bk.Get("/user", h.Booking.ListMine)
	bk.Get("/available", middleware.RequireRoles(jobSeeker, admin), h.Booking.ListAvailable)
	bk.Get("/all", middleware.RequireRoles(admin), h.Booking.ListAll)
	bk.Get("/:id", h.Booking.Get)
	bk.Patch("/:id/status", h.Booking.UpdateStatus)
	bk.Delete("/:id", middleware.RequireRoles(admin), h.Booking.Delete)

	pay := protected.Group("/payment")
	pay.Post("/initialize", h.Payment.Initialize)
	pay.Get("/discount", h.Payment.Discount)
	pay.Get("/booking/:bookingId", h.Payment.GetByBooking)
	pay.Patch("/admin/:paymentId/status", middleware.RequireRoles(admin), h.Payment.AdminSetStatus)
	pay.Delete("/admin/:paymentId", middleware.RequireRoles(admin), h.Payment.AdminDelete)
	pay.Post("/:paymentId/proof", h.Payment.UploadProof)
	pay.Get("/:paymentId/proof", h.Payment.GetProof)
	pay.Post("/:paymentId/confirm", middleware.RequireRoles(jobSeeker), h.Payment.Confirm)
	pay.Post("/:paymentId/retry", h.Payment.Retry)
	pay.Patch("/:paymentId/complete", h.Payment.Complete)
	pay.Delete("/:paymentId/customer", h.Payment.CustomerDelete)

	ov := protected.Group("/overallStatus", middleware.RequireRoles(admin))
	ov.Post("/update-all", h.OverallStatus.UpdateAll)
	ov.Post("/update/:jobId/:bookingId?", h.OverallStatus.Update)
	ov.Get("/analytics", h.OverallStatus.Analytics)

	job := protected.Group("/job")
	job.Post("/", middleware.RequireRoles(customer, admin), h.Job.Create)
	job.Get("/:id", h.Job.Get)
	job.Patch("/:id/status", middleware.RequireRoles(admin), h.Job.UpdateStatus)

	protected.Post("/award", middleware.RequireRoles(admin), h.Award.Create)
	protected.Get("/award/me", h.Award.ListMine)

	protected.Get("/notifications", h.Notification.List)
	protected.Patch("/notifications/:id/read", h.Notification.MarkRead)
	protected.Post("/notifications/ticket", h.Notification.Ticket)

	// WebSocket endpoint (no JWT middleware, token comes as a query param)
	app.Get("/ws/notifications", h.Notification.Upgrade, websocket.New(h.Notification.WebSocketHandler))
}
