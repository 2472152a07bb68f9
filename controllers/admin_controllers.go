package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kento-cell/MyHobbyCoffee/models"
	"github.com/kento-cell/MyHobbyCoffee/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Beans at or below this many grams are reported as low stock.
const lowStockGrams = 500

type AdminController struct {
	DB       *gorm.DB
	Secret   []byte
	TokenTTL time.Duration
	Now      func() time.Time
}

func NewAdminController(db *gorm.DB, secret []byte, ttl time.Duration) *AdminController {
	return &AdminController{DB: db, Secret: secret, TokenTTL: ttl, Now: time.Now}
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges admin credentials for a signed token.
func (ac *AdminController) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if len(ac.Secret) == 0 {
		utils.ErrorLogger.Error("admin login attempted without ADMIN_JWT_SECRET")
		utils.RespondError(c, http.StatusInternalServerError, errors.New("admin login is not configured"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	var admin models.AdminUser
	if err := ac.DB.WithContext(c.Request.Context()).Where("email = ?", email).First(&admin).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorLogger.Errorf("admin lookup: %v", err)
		}
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(input.Password)); err != nil {
		utils.InfoLogger.Warnf("failed admin login for %s", email)
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := utils.GenerateAdminToken(ac.Secret, admin.Email, admin.Role, ac.TokenTTL)
	if err != nil {
		utils.ErrorLogger.Errorf("sign admin token: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to generate token"))
		return
	}

	utils.InfoLogger.Infof("admin %s signed in", admin.Email)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":      token,
		"expires_at": ac.Now().Add(ac.TokenTTL),
		"email":      admin.Email,
		"role":       admin.Role,
	})
}

type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type beanSales struct {
	ProductName string `json:"product_name"`
	Grams       int64  `json:"grams"`
	Revenue     int64  `json:"revenue"`
}

type dashboardStats struct {
	TotalOrders  int64              `json:"total_orders"`
	TodayOrders  int64              `json:"today_orders"`
	TotalRevenue int64              `json:"total_revenue"`
	TodayRevenue int64              `json:"today_revenue"`
	ByStatus     []statusCount      `json:"by_status"`
	TopBeans     []beanSales        `json:"top_beans"`
	LowStock     []models.BeanStock `json:"low_stock"`
}

// GetDashboardStats summarises orders, revenue and stock for the admin home.
// Cancelled orders are excluded from revenue.
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	db := ac.DB.WithContext(c.Request.Context())
	now := ac.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var stats dashboardStats
	err := db.Model(&models.Order{}).Count(&stats.TotalOrders).Error
	if err == nil {
		err = db.Model(&models.Order{}).Where("created_at >= ?", today).Count(&stats.TodayOrders).Error
	}
	if err == nil {
		err = db.Model(&models.Order{}).Where("status <> ?", models.OrderStatusCancelled).
			Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&stats.TotalRevenue)
	}
	if err == nil {
		err = db.Model(&models.Order{}).Where("status <> ? AND created_at >= ?", models.OrderStatusCancelled, today).
			Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&stats.TodayRevenue)
	}
	if err == nil {
		err = db.Model(&models.Order{}).Select("status, COUNT(*) AS count").
			Group("status").Order("status").Scan(&stats.ByStatus).Error
	}
	if err == nil {
		err = db.Model(&models.OrderItem{}).
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("orders.status <> ?", models.OrderStatusCancelled).
			Select("order_items.product_name, SUM(order_items.grams * order_items.qty) AS grams, SUM(order_items.subtotal) AS revenue").
			Group("order_items.product_name").
			Order("grams DESC").
			Limit(5).
			Scan(&stats.TopBeans).Error
	}
	if err == nil {
		err = db.Where("stock_grams <= ?", lowStockGrams).Order("stock_grams").Find(&stats.LowStock).Error
	}
	if err != nil {
		utils.ErrorLogger.Errorf("dashboard stats: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to load stats"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}
