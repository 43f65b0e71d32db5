// routes/routes.go
package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eilanhub/eilan_backend/controllers"
	"github.com/eilanhub/eilan_backend/middleware"
	"github.com/eilanhub/eilan_backend/storage"
)

// SetupRoutes wires all API routes. Register/login, raw file fetch and
// the settings read are public; everything else sits behind the JWT
// middleware, with admin routes additionally role-guarded.
func SetupRoutes(e *echo.Echo, db *mongo.Database, files storage.BlobStore) {
	authController := controllers.NewAuthController(db)
	fileController := controllers.NewFileController(files)
	adRequestController := controllers.NewAdRequestController(db, files)
	paymentController := controllers.NewPaymentController(db, files)
	subscriptionController := controllers.NewSubscriptionController(db, files)
	settingsController := controllers.NewSettingsController(db, files)

	// Public routes
	public := e.Group("/api")
	public.POST("/auth/register", authController.Register)
	public.POST("/auth/login", authController.Login)
	public.GET("/files/:id", fileController.GetFile)
	public.GET("/admin/settings", settingsController.GetSettings)

	// Authenticated routes
	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())

	r.GET("/auth/me", authController.GetMe)
	r.POST("/upload", fileController.Upload)

	r.POST("/ad-requests", adRequestController.CreateAdRequest)
	r.GET("/ad-requests", adRequestController.GetAdRequests)
	r.GET("/ad-requests/:id", adRequestController.GetAdRequest)
	r.POST("/ad-requests/:id/photos", adRequestController.AttachPhotos)

	r.POST("/payments", paymentController.CreatePayment)
	r.GET("/payments", paymentController.GetPayments)
	r.POST("/payments/:id/screenshot", paymentController.AttachScreenshot)

	r.POST("/subscriptions", subscriptionController.CreateSubscription)
	r.GET("/subscriptions/my", subscriptionController.GetMySubscriptions)
	r.POST("/subscriptions/:id/screenshot", subscriptionController.AttachScreenshot)

	// Admin routes
	admin := e.Group("/api")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireAdmin())

	admin.PATCH("/ad-requests/:id/status", adRequestController.UpdateAdStatus)
	admin.PATCH("/payments/:id/verify", paymentController.VerifyPayment)
	admin.GET("/subscriptions", subscriptionController.GetAllSubscriptions)
	admin.PATCH("/subscriptions/:id/verify", subscriptionController.VerifySubscription)
	admin.PATCH("/admin/settings", settingsController.UpdateSettings)
	admin.POST("/admin/settings/qr", settingsController.GenerateQR)
}
