package handler

import (
	"github.com/dafibh/mpwr/portal-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups the HTTP handlers mounted under /api
type Handlers struct {
	Profile      *ProfileHandler
	Loan         *LoanHandler
	Payment      *PaymentHandler
	Document     *DocumentHandler
	Notification *NotificationHandler
	Dashboard    *DashboardHandler
	WebSocket    *WebSocketHandler
}

// RegisterRoutes sets up all API routes. Every customer route authenticates
// the bearer token and requires :customerId to be the token's customer.
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	api := e.Group("/api")

	customer := api.Group("/customers/:customerId")
	customer.Use(authMiddleware.Authenticate())
	customer.Use(middleware.RequireCustomerMatch())
	customer.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Profile
	customer.GET("", h.Profile.GetProfile)
	customer.PUT("", h.Profile.UpdateProfile)

	// Loans, schedule and overrides
	loans := customer.Group("/loans")
	loans.GET("", h.Loan.GetLoans)
	loans.GET("/:loanId", h.Loan.GetLoan)
	loans.GET("/:loanId/schedule", h.Loan.GetSchedule)
	loans.GET("/:loanId/projection", h.Loan.GetProjection)
	loans.PUT("/:loanId/schedule/overrides/:number", h.Loan.StageOverride)
	loans.DELETE("/:loanId/schedule/overrides/:number", h.Loan.ClearOverride)
	loans.DELETE("/:loanId/schedule/overrides", h.Loan.ResetOverrides)
	loans.POST("/:loanId/payment", h.Payment.RecordPayment)

	// Payments
	payments := customer.Group("/payments")
	payments.GET("", h.Payment.GetPayments)
	payments.GET("/upcoming", h.Payment.GetUpcoming)
	payments.GET("/:paymentId", h.Payment.GetPayment)

	// Documents
	documents := customer.Group("/documents")
	documents.GET("", h.Document.GetDocuments)
	documents.POST("/upload-url", h.Document.RequestUploadURL)
	documents.POST("/confirm", h.Document.ConfirmUpload)
	documents.GET("/:docId/download-url", h.Document.GetDownloadURL)
	documents.DELETE("/:docId", h.Document.DeleteDocument)
	documents.GET("/:docId/sign", h.Document.StartSigning)
	documents.POST("/:docId/confirm-signature", h.Document.ConfirmSignature)
	documents.GET("/:docId/signing-status", h.Document.GetSigningStatus)

	// Notifications
	notifications := customer.Group("/notifications")
	notifications.GET("", h.Notification.GetNotifications)
	notifications.POST("/read-all", h.Notification.MarkAllRead)
	notifications.POST("/:notificationId/read", h.Notification.MarkRead)

	// Dashboard
	customer.GET("/dashboard", h.Dashboard.GetSummary)

	// WebSocket authenticates with its own query token
	e.GET("/ws/customers/:customerId/notifications", h.WebSocket.HandleWS)
}
