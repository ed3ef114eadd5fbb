package main

import (
	"flag"
	"log"
	"strings"

	"glua-backend/internal/auth"
	"glua-backend/internal/cannister"
	"glua-backend/internal/client"
	"glua-backend/internal/config"
	"glua-backend/internal/database"
	"glua-backend/internal/export"
	"glua-backend/internal/inventory"
	"glua-backend/internal/locked"
	"glua-backend/internal/marketing"
	"glua-backend/internal/migrate"
	"glua-backend/internal/models"
	"glua-backend/internal/picking"
	"glua-backend/internal/report"
	"glua-backend/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	backfillClients := flag.Bool("backfill-clients", false,
		"convert legacy free-text client columns into client records, then exit")
	flag.Parse()

	cfg := config.Load()
	database.Init(cfg)

	if *backfillClients {
		if err := migrate.BackfillClients(database.DB); err != nil {
			log.Fatal("client backfill failed: ", err)
		}
		log.Println("client backfill complete")
		return
	}

	var sessions session.Store = session.NoopStore{}
	if cfg.RedisAddr != "" {
		sessions = session.NewRedisStore(cfg.RedisAddr)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Session-ID",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg, sessions))

	protected.Get("/auth/me", auth.MeHandler())
	protected.Post("/auth/logout", auth.LogoutHandler(sessions))
	protected.Post("/auth/logout-inactivity", auth.InactivityLogoutHandler(sessions))

	// Admin-only routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	adminRoutes.Post("/users", auth.CreateUserHandler())
	adminRoutes.Get("/users", auth.ListUsersHandler(sessions))

	adminRoutes.Post("/drugs", inventory.CreateDrugHandler())
	adminRoutes.Put("/drugs/:id", inventory.UpdateDrugHandler())
	adminRoutes.Post("/measurements", inventory.CreateMeasurementHandler())

	adminRoutes.Delete("/clients/:id", client.DeleteHandler())

	adminRoutes.Post("/cannisters", cannister.CreateHandler())
	adminRoutes.Post("/marketing-items", marketing.CreateItemHandler())

	// Inventory
	protected.Get("/measurements", inventory.ListMeasurementsHandler())
	protected.Get("/drugs", inventory.ListDrugsHandler())
	protected.Post("/drugs/:id/restock", inventory.RestockHandler())
	protected.Post("/drugs/:id/sell", inventory.SellHandler())
	protected.Post("/drugs/:id/lock", inventory.LockHandler())
	protected.Get("/stocked", inventory.ListStockedHandler())

	// Locked products
	protected.Get("/locked-products", locked.ListHandler())
	protected.Post("/locked-products/:id/fulfill", locked.FulfillHandler())
	protected.Post("/locked-products/:id/unlock", locked.UnlockHandler())
	protected.Put("/locked-products/:id", locked.UpdateHandler())

	// Clients
	protected.Get("/clients", client.ListHandler())
	protected.Post("/clients", client.CreateHandler())
	protected.Put("/clients/:id", client.UpdateHandler())

	// Marketing items
	protected.Get("/marketing-items", marketing.ListItemsHandler())
	protected.Post("/marketing-items/issue", marketing.IssueItemHandler())
	protected.Get("/issued-items", marketing.IssuedItemsHandler())

	// Cannisters
	protected.Get("/cannisters", cannister.ListHandler())
	protected.Post("/cannisters/:id/issue", cannister.IssueHandler())
	protected.Get("/cannisters/bin-card", cannister.BinCardHandler())
	protected.Post("/cannisters/bin-card/:id/return", cannister.ReturnHandler())

	// Picking list
	protected.Get("/picking-list", picking.ListHandler())
	protected.Post("/picking-list", picking.AddHandler())
	protected.Delete("/picking-list/:id", picking.DeleteHandler())

	// Reports
	protected.Get("/dashboard", report.DashboardHandler(sessions))
	protected.Get("/reports/bin", report.BinReportHandler())
	protected.Get("/reports/history", report.SaleHistoryHandler())
	protected.Get("/reports/today", report.TodaySalesHandler())
	protected.Get("/reports/top-sold", report.TopSoldHandler())
	protected.Get("/reports/low-stock", report.LowStockHandler())
	protected.Get("/reports/out-of-stock", report.OutOfStockHandler())
	protected.Get("/reports/expiring-soon", report.ExpiringSoonHandler())

	// Exports
	protected.Get("/export/bin-report.xlsx", export.BinReportExcelHandler())
	protected.Get("/export/bin-card.xlsx", export.BinCardExcelHandler())
	protected.Get("/export/top-sold.csv", export.TopSoldCSVHandler())

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
