package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/tastetrail/engagement-backend/internal/config"
	"github.com/tastetrail/engagement-backend/internal/handlers"
	"github.com/tastetrail/engagement-backend/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	limiterStorage fiber.Storage,
	healthHandler *handlers.HealthHandler,
	meHandler *handlers.MeHandler,
	dropsHandler *handlers.DropsHandler,
	referralsHandler *handlers.ReferralsHandler,
	eventsHandler *handlers.EventsHandler,
	gamificationHandler *handlers.GamificationHandler,
	adminHandler *handlers.AdminHandler,
) {
	byIP := func(c *fiber.Ctx) string { return c.IP() }

	// Invite links are hit by unauthenticated browsers, outside /api.
	// The window is a soft guard; referral crediting stays correct
	// through store-side uniqueness either way.
	app.Get("/invite/:code", limiter.New(limiter.Config{
		Max:               20,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		Storage:           limiterStorage,
		KeyGenerator:      byIP,
	}), referralsHandler.Invite)

	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		Storage:           limiterStorage,
		KeyGenerator:      byIP,
	}))

	api.Get("/health", healthHandler.Check)

	// Identity: response shape depends on whether a token is present
	api.Get("/me", middleware.JWTOptional(cfg), meHandler.Me)

	// Drops
	api.Get("/drops/today", middleware.JWTOptional(cfg), dropsHandler.Today)
	api.Get("/drops/my-claims", middleware.JWTProtected(cfg), dropsHandler.MyClaims)

	// Claims contend over scarce capacity; keep the request rate down
	// (the allocator itself stays correct at any rate)
	api.Post("/drops/:id/claim", limiter.New(limiter.Config{
		Max:               20,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		Storage:           limiterStorage,
		KeyGenerator:      byIP,
	}), middleware.JWTProtected(cfg), dropsHandler.Claim)

	// Referrals
	api.Get("/referrals/me", middleware.JWTProtected(cfg), referralsHandler.Me)

	// Analytics intake (public, fire-and-forget)
	api.Post("/events/log", middleware.JWTOptional(cfg), eventsHandler.Log)

	// Gamification
	api.Get("/passport", middleware.JWTProtected(cfg), gamificationHandler.Passport)
	api.Post("/stamps", middleware.JWTProtected(cfg), gamificationHandler.Stamp)
	api.Get("/gamification/leaderboard", gamificationHandler.Leaderboard)
	api.Get("/gamification/badges", middleware.JWTProtected(cfg), gamificationHandler.Badges)

	// Trails
	api.Get("/trails", gamificationHandler.Trails)
	api.Get("/trails/:id", gamificationHandler.Trail)
	api.Post("/trails/:id/steps/:stepId/complete", middleware.JWTProtected(cfg), gamificationHandler.CompleteStep)

	// Admin catalog management (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Post("/restaurants", adminHandler.CreateRestaurant)
	admin.Post("/badges", adminHandler.CreateBadge)
	admin.Post("/trails", adminHandler.CreateTrail)
	admin.Post("/drops", adminHandler.CreateDrop)
	admin.Put("/drops/:id/publish", adminHandler.PublishDrop)
}
