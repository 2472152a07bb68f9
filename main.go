package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/kento-cell/MyHobbyCoffee/cart"
	"github.com/kento-cell/MyHobbyCoffee/config"
	"github.com/kento-cell/MyHobbyCoffee/database"
	"github.com/kento-cell/MyHobbyCoffee/feed"
	"github.com/kento-cell/MyHobbyCoffee/models"
	"github.com/kento-cell/MyHobbyCoffee/router"
	"github.com/kento-cell/MyHobbyCoffee/services"
	"github.com/kento-cell/MyHobbyCoffee/utils"
)

func main() {
	utils.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.DBDriver, cfg.DBSource)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	if err := database.Seed(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed database: %v", err)
	}
	if cfg.AdminJWTSecret == "" {
		utils.InfoLogger.Warn("ADMIN_JWT_SECRET is not set; admin routes will reject every request")
	}

	cms := services.NewCMSClient(cfg.MicroCMSServiceDomain, cfg.MicroCMSAPIKey)
	inventory := services.NewInventoryService(db)
	hub := feed.NewHub()

	checkout := &services.CheckoutService{
		DB:        db,
		Menu:      cms,
		Inventory: inventory,
		Notifier: services.NewNotifier(context.Background(), services.GmailConfig{
			ClientID:     cfg.GmailClientID,
			ClientSecret: cfg.GmailClientSecret,
			RefreshToken: cfg.GmailRefreshToken,
			Sender:       cfg.GmailSender,
		}),
		SiteURL:  cfg.SiteURL,
		NotifyTo: cfg.GmailSender,
		OnOrder:  func(order models.Order) { hub.BroadcastOrderCreated(order) },
	}
	if cfg.StripeConfigured() {
		checkout.Gateway = services.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	} else {
		utils.InfoLogger.Warn("STRIPE_SECRET_KEY is not set; checkout is disabled")
	}

	sweeper := services.NewDraftSweeper(db)
	sweeper.Start()
	defer sweeper.Stop()

	r := router.SetupRouter(router.Deps{
		DB:        db,
		Config:    cfg,
		CMS:       cms,
		Checkout:  checkout,
		Recommend: &services.RecommendService{DB: db, Menu: cms, Inventory: inventory},
		Inventory: inventory,
		Carts:     cart.NewStore(db),
		Hub:       hub,
	})
	if err := r.SetTrustedProxies(nil); err != nil {
		utils.ErrorLogger.Warnf("set trusted proxies: %v", err)
	}

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}
