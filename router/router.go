package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kento-cell/MyHobbyCoffee/cart"
	"github.com/kento-cell/MyHobbyCoffee/config"
	"github.com/kento-cell/MyHobbyCoffee/controllers"
	"github.com/kento-cell/MyHobbyCoffee/feed"
	"github.com/kento-cell/MyHobbyCoffee/middlewares"
	"github.com/kento-cell/MyHobbyCoffee/services"
	"gorm.io/gorm"
)

// Deps carries the long-lived components the handlers share.
type Deps struct {
	DB        *gorm.DB
	Config    *config.Config
	CMS       *services.CMSClient
	Checkout  *services.CheckoutService
	Recommend *services.RecommendService
	Inventory *services.InventoryService
	Carts     *cart.Store
	Hub       *feed.Hub
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	cfg := d.Config
	secret := []byte(cfg.AdminJWTSecret)
	allow := cfg.AdminEmails()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.AllowedOrigins()))
	r.Use(middlewares.LoggerMiddleware())

	menuCtrl := controllers.NewMenuController(d.CMS)
	blogCtrl := controllers.NewBlogController(d.CMS)
	cartCtrl := controllers.NewCartController(d.Carts, d.CMS, cfg.CookieSecure)
	checkoutCtrl := controllers.NewCheckoutController(d.Checkout, d.Carts)
	recommenderCtrl := controllers.NewRecommenderController(d.Recommend, cfg.CookieSecure)
	adminCtrl := controllers.NewAdminController(d.DB, secret, cfg.AdminTokenTTL)
	orderCtrl := controllers.NewOrderController(d.DB, d.Hub)
	inventoryCtrl := controllers.NewInventoryController(d.Inventory, d.Hub)
	feedCtrl := controllers.NewFeedController(d.Hub, cfg.AllowedOrigins())

	limiter := middlewares.NewRateLimiter(cfg.CheckoutPerMin, 5)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := r.Group("/api")

	// Content
	api.GET("/menu", menuCtrl.GetAllMenus)
	api.GET("/menu/recommended", menuCtrl.GetRecommendedMenus)
	api.GET("/menu/:id", menuCtrl.GetMenuByID)
	api.GET("/blogs", blogCtrl.GetAllBlogs)
	api.GET("/blogs/:id", blogCtrl.GetBlogByID)
	api.GET("/top-background", blogCtrl.GetTopBackgrounds)

	// Cart, keyed by the device cookie
	api.GET("/cart", cartCtrl.GetCart)
	api.POST("/cart/items", cartCtrl.AddItem)
	api.PATCH("/cart/items/:line_id", cartCtrl.UpdateItem)
	api.DELETE("/cart/items/:line_id", cartCtrl.RemoveItem)
	api.DELETE("/cart", cartCtrl.ClearCart)

	// Checkout and payments
	api.POST("/order/create", limiter.RateLimit(), checkoutCtrl.CreateOrder)
	api.POST("/stripe/webhook", checkoutCtrl.StripeWebhook)

	// Recommender
	api.GET("/recommender/questions", recommenderCtrl.GetQuestions)
	api.POST("/recommender", limiter.RateLimit(), recommenderCtrl.Submit)
	api.GET("/recommender/latest", recommenderCtrl.Latest)

	api.POST("/admin/login", limiter.RateLimit(), adminCtrl.Login)

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := api.Group("/admin")
	admin.Use(middlewares.AdminAuthMiddleware(secret, allow))
	{
		admin.GET("/menu", menuCtrl.GetAdminMenus)
		admin.GET("/stats", adminCtrl.GetDashboardStats)

		admin.GET("/orders", orderCtrl.GetAllOrders)
		admin.PATCH("/orders", orderCtrl.UpdateOrder)
		admin.GET("/orders/export", orderCtrl.ExportOrdersCSV)
		admin.GET("/orders/:order_id", orderCtrl.GetOrderByID)

		admin.GET("/inventory", inventoryCtrl.GetInventory)
		admin.POST("/inventory/update", inventoryCtrl.UpdateInventory)
	}

	// WebSocket order feed; browsers pass the token as ?token=
	ws := api.Group("/admin/feed")
	ws.Use(middlewares.WebSocketAuthMiddleware(secret, allow))
	{
		ws.GET("", feedCtrl.OrderFeed)
	}

	return r
}
