package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/parfumier/internal/config"
	"github.com/example/parfumier/internal/handlers"
	"github.com/example/parfumier/internal/middleware"
	"github.com/example/parfumier/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	googleVerifier := services.NewGoogleVerifier(cfg.GoogleClientID)

	authHandler := handlers.NewAuthHandler(db, cfg, googleVerifier, telegramService)
	profileHandler := handlers.NewProfileHandler(db)
	collectorHandler := handlers.NewCollectorHandler(db)
	catalogHandler := handlers.NewCatalogHandler(db)
	perfumeHandler := handlers.NewPerfumeHandler(db)
	commentHandler := handlers.NewCommentHandler(db)
	adminHandler := handlers.NewAdminHandler(db, telegramService)
	resetHandler := handlers.NewPasswordResetHandler(db, telegramService)

	requireAuth := middleware.AuthMiddleware(db, cfg)
	requireAdmin := middleware.RequireAdmin()

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/google-login", authHandler.GoogleLogin)
	auth.Post("/forgot-password", resetHandler.ForgotPassword)
	auth.Post("/verify-reset", resetHandler.VerifyResetCode)
	auth.Post("/reset-password", resetHandler.ResetPassword)
	auth.Get("/profile", requireAuth, profileHandler.GetProfile)
	auth.Put("/profile", requireAuth, profileHandler.UpdateProfile)

	// Brand catalog: public reads, admin writes
	brands := api.Group("/brands")
	brands.Get("/", catalogHandler.ListBrands)
	brands.Get("/:id", catalogHandler.GetBrand)
	brands.Post("/", requireAuth, requireAdmin, catalogHandler.CreateBrand)
	brands.Put("/:id", requireAuth, requireAdmin, catalogHandler.UpdateBrand)
	brands.Delete("/:id", requireAuth, requireAdmin, catalogHandler.DeleteBrand)

	// Perfume catalog: public reads, admin writes
	perfumes := api.Group("/perfumes")
	perfumes.Get("/", perfumeHandler.ListPerfumes)
	perfumes.Get("/:id", perfumeHandler.GetPerfume)
	perfumes.Post("/", requireAuth, requireAdmin, perfumeHandler.CreatePerfume)
	perfumes.Put("/:id", requireAuth, requireAdmin, perfumeHandler.UpdatePerfume)
	perfumes.Delete("/:id", requireAuth, requireAdmin, perfumeHandler.DeletePerfume)

	// Comments live under their perfume
	perfumes.Post("/:id/comments", requireAuth, commentHandler.AddComment)
	perfumes.Put("/:id/comments/:commentId", requireAuth, commentHandler.UpdateComment)
	perfumes.Delete("/:id/comments/:commentId", requireAuth, commentHandler.DeleteComment)

	// Collector accounts
	collectors := api.Group("/collectors", requireAuth)
	collectors.Get("/:id", collectorHandler.GetCollector)
	collectors.Put("/:id", middleware.RequireSelf("id"), collectorHandler.UpdateCollector)
	collectors.Put("/:id/password", middleware.RequireSelf("id"), collectorHandler.ChangePassword)

	// Admin back-office
	admin := api.Group("/admin", requireAuth, requireAdmin)
	admin.Get("/dashboard", adminHandler.DashboardStats)
	admin.Get("/collectors", adminHandler.ListCollectors)
	admin.Patch("/collectors/:id/ban", adminHandler.BanCollector)
	admin.Patch("/collectors/:id/restore", adminHandler.RestoreCollector)
}
