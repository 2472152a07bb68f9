package Controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/kento-cell/MyHobbyCoffee/models"
	"github.com/kento-cell/MyHobbyCoffee/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/admin/login", map[string]string{
		"email": "Admin@Example.com", "password": testAdminPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var login struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
		Email     string    `json:"email"`
		Role      string    `json:"role"`
	}
	decode(t, w, &login)
	assert.Equal(t, testAdminEmail, login.Email)
	assert.Equal(t, utils.RoleAdmin, login.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), login.ExpiresAt, time.Minute)

	claims, err := utils.ParseAdminToken(login.Token, []byte(testJWTSecret))
	require.NoError(t, err)
	assert.Equal(t, testAdminEmail, claims.Email)

	w = env.do(t, http.MethodGet, "/api/admin/inventory", nil, withBearer(login.Token))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminLoginFailures(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/admin/login", map[string]string{
		"email": testAdminEmail, "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/admin/login", map[string]string{
		"email": "nobody@example.com", "password": testAdminPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/admin/login", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutesRequireAuthorisedToken(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		opts []requestOption
		want int
	}{
		{"missing token", nil, http.StatusUnauthorized},
		{"garbage token", []requestOption{withBearer("not-a-jwt")}, http.StatusUnauthorized},
		{"customer role", []requestOption{withBearer(env.adminToken(t, "someone@example.com", "customer"))}, http.StatusUnauthorized},
		{"admin role", []requestOption{withBearer(env.adminToken(t, "staff@example.com", utils.RoleAdmin))}, http.StatusOK},
		{"allow-listed email", []requestOption{withBearer(env.adminToken(t, "Owner@Example.com", ""))}, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/admin/orders", nil, tc.opts...)
			assert.Equal(t, tc.want, w.Code)
		})
	}

	forged, err := utils.GenerateAdminToken([]byte("other-secret"), testAdminEmail, utils.RoleAdmin, time.Hour)
	require.NoError(t, err)
	w := env.do(t, http.MethodGet, "/api/admin/orders", nil, withBearer(forged))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	env.setStock(t, "Kenya AA", 300)
	env.setStock(t, "Brazil Santos", 5000)

	orders := []models.Order{
		{StripeSessionID: "cs_a", Email: "a@example.com", TotalAmount: 4000, Status: models.OrderStatusPaid,
			Items: []models.OrderItem{{ProductID: "kenya", ProductName: "Kenya AA", Grams: 200, Qty: 2, UnitPrice: 2000, Subtotal: 4000}}},
		{StripeSessionID: "cs_b", Email: "b@example.com", TotalAmount: 3000, Status: models.OrderStatusShipped,
			Items: []models.OrderItem{{ProductID: "brazil", ProductName: "Brazil Santos", Grams: 200, Qty: 1, UnitPrice: 3000, Subtotal: 3000}}},
		{StripeSessionID: "cs_c", Email: "c@example.com", TotalAmount: 9999, Status: models.OrderStatusCancelled,
			Items: []models.OrderItem{{ProductID: "brazil", ProductName: "Brazil Santos", Grams: 1000, Qty: 5, UnitPrice: 9999, Subtotal: 9999}}},
	}
	for i := range orders {
		require.NoError(t, env.db.Create(&orders[i]).Error)
	}

	w := env.do(t, http.MethodGet, "/api/admin/stats", nil, withBearer(env.adminToken(t, testAdminEmail, utils.RoleAdmin)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats struct {
		TotalOrders  int64 `json:"total_orders"`
		TodayOrders  int64 `json:"today_orders"`
		TotalRevenue int64 `json:"total_revenue"`
		ByStatus     []struct {
			Status string `json:"status"`
			Count  int64  `json:"count"`
		} `json:"by_status"`
		TopBeans []struct {
			ProductName string `json:"product_name"`
			Grams       int64  `json:"grams"`
		} `json:"top_beans"`
		LowStock []models.BeanStock `json:"low_stock"`
	}
	decode(t, w, &stats)

	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(3), stats.TodayOrders)
	assert.Equal(t, int64(7000), stats.TotalRevenue)
	assert.Len(t, stats.ByStatus, 3)
	require.Len(t, stats.TopBeans, 2)
	assert.Equal(t, "Kenya AA", stats.TopBeans[0].ProductName)
	assert.Equal(t, int64(400), stats.TopBeans[0].Grams)
	require.Len(t, stats.LowStock, 1)
	assert.Equal(t, "Kenya AA", stats.LowStock[0].BeanName)
}
