package Controllers_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/kento-cell/MyHobbyCoffee/cart"
	"github.com/kento-cell/MyHobbyCoffee/config"
	"github.com/kento-cell/MyHobbyCoffee/database"
	"github.com/kento-cell/MyHobbyCoffee/feed"
	"github.com/kento-cell/MyHobbyCoffee/models"
	"github.com/kento-cell/MyHobbyCoffee/router"
	"github.com/kento-cell/MyHobbyCoffee/services"
	"github.com/kento-cell/MyHobbyCoffee/utils"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"gorm.io/gorm"
)

const (
	testJWTSecret     = "test-jwt-secret"
	testWebhookSecret = "whsec_test"
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "roast-me-slowly"
)

const cmsMenuJSON = `{
	"contents": [
		{"id": "kenya", "name": "Kenya AA", "price": 1000, "amount": 100, "roast": ["浅煎り"], "acidity": 4, "bitterness": 1.5, "isRecommended": true, "image": {"url": "https://images.test/kenya.jpg"}},
		{"id": "brazil", "name": "Brazil Santos", "price": "1500", "amount": "200", "roast": "深煎り", "acidity": 1.5, "bitterness": 4}
	],
	"totalCount": 2, "offset": 0, "limit": 100
}`

const cmsBlogsJSON = `{
	"contents": [{"id": "post-1", "title": "焙煎日記", "eyecatch": {"url": "https://images.test/post.jpg"}}],
	"totalCount": 1, "offset": 0, "limit": 10
}`

// newCMSHandler serves a tiny microCMS: the menu above, one blog and one hero image.
func newCMSHandler(t *testing.T) http.HandlerFunc {
	var menu struct {
		Contents []json.RawMessage `json:"contents"`
	}
	require.NoError(t, json.Unmarshal([]byte(cmsMenuJSON), &menu))

	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api/v1/")
		switch {
		case path == "menu":
			w.Write([]byte(cmsMenuJSON))
		case path == "menu/kenya":
			w.Write(menu.Contents[0])
		case path == "menu/brazil":
			w.Write(menu.Contents[1])
		case path == "blogs":
			w.Write([]byte(cmsBlogsJSON))
		case path == "blogs/post-1":
			w.Write([]byte(`{"id": "post-1", "title": "焙煎日記", "content": "<p>hello</p>", "publishedAt": "2024-04-01T00:00:00Z"}`))
		case path == "top-background":
			w.Write([]byte(`{"contents": [{"id": "bg1", "image": {"url": "https://images.test/bg.jpg"}}], "totalCount": 1}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

// fakeGateway opens sessions locally and verifies webhooks with the real Stripe code.
type fakeGateway struct {
	*services.StripeGateway
	mu       sync.Mutex
	requests []services.SessionRequest
}

func (g *fakeGateway) CreateSession(ctx context.Context, req services.SessionRequest) (*services.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	id := fmt.Sprintf("cs_test_%d", len(g.requests))
	return &services.Session{ID: id, URL: "https://checkout.stripe.test/" + id}, nil
}

type testEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	gateway *fakeGateway
	hub     *feed.Hub
	cfg     *config.Config
	orders  []models.Order
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitLogger()

	db, err := database.OpenInMemory()
	require.NoError(t, err)
	require.NoError(t, database.Seed(db, testAdminEmail, testAdminPassword))

	srv := httptest.NewServer(newCMSHandler(t))
	t.Cleanup(srv.Close)
	cms := services.NewCMSClientWithBaseURL(srv.URL+"/api/v1", "test-key", srv.Client())

	cfg := &config.Config{
		SiteURL:        "https://shop.test",
		RawOrigins:     "http://localhost:3000",
		CheckoutPerMin: 1000,
		AdminJWTSecret: testJWTSecret,
		AdminTokenTTL:  time.Hour,
		RawAdminEmails: "owner@example.com",
	}

	env := &testEnv{
		db:      db,
		gateway: &fakeGateway{StripeGateway: services.NewStripeGateway("sk_test_dummy", testWebhookSecret)},
		hub:     feed.NewHub(),
		cfg:     cfg,
	}
	inventory := services.NewInventoryService(db)
	checkout := &services.CheckoutService{
		DB:        db,
		Menu:      cms,
		Inventory: inventory,
		Gateway:   env.gateway,
		Notifier:  services.NopNotifier{},
		SiteURL:   cfg.SiteURL,
		OnOrder:   func(o models.Order) { env.orders = append(env.orders, o) },
	}

	env.router = router.SetupRouter(router.Deps{
		DB:        db,
		Config:    cfg,
		CMS:       cms,
		Checkout:  checkout,
		Recommend: &services.RecommendService{DB: db, Menu: cms, Inventory: inventory},
		Inventory: inventory,
		Carts:     cart.NewStore(db),
		Hub:       env.hub,
	})
	return env
}

func (e *testEnv) setStock(t *testing.T, bean string, grams int) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.BeanStock{BeanName: bean, StockGrams: grams, LossRate: models.DefaultLossRate}).Error)
}

func (e *testEnv) adminToken(t *testing.T, email, role string) string {
	t.Helper()
	token, err := utils.GenerateAdminToken([]byte(testJWTSecret), email, role, time.Hour)
	require.NoError(t, err)
	return token
}

type requestOption func(*http.Request)

func withHeader(key, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func withBearer(token string) requestOption {
	return withHeader("Authorization", "Bearer "+token)
}

func withCookies(cookies []*http.Cookie) requestOption {
	return func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// envelope is the {status, message, data} body every JSON handler answers with.
type envelope struct {
	Status    bool                `json:"status"`
	Message   string              `json:"message"`
	Data      json.RawMessage     `json:"data"`
	Shortages []services.Shortage `json:"shortages"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}

func signStripePayload(secret string, payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func completedEvent(t *testing.T, sessionID string, amount int64) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":          "evt_" + sessionID,
		"object":      "event",
		"api_version": stripe.APIVersion,
		"type":        "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":               sessionID,
				"object":           "checkout.session",
				"amount_total":     amount,
				"customer_details": map[string]interface{}{"email": "buyer@example.com"},
				"metadata":         map[string]string{},
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
