package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/kento-cell/MyHobbyCoffee/cart"
	"github.com/kento-cell/MyHobbyCoffee/models"
	"github.com/kento-cell/MyHobbyCoffee/utils"
	"gorm.io/gorm"
)

const (
	metaItems       = "items"
	metaProductID   = "productId"
	metaProductName = "productName"
	metaQty         = "qty"
	metaGram        = "gram"
	metaRoastID     = "roastId"
	metaUnitPrice   = "unitPrice"

	// Stripe rejects metadata values longer than this.
	maxMetadataValue = 500

	EventCheckoutCompleted = "checkout.session.completed"
)

var ErrInvalidCheckoutLine = errors.New("productId, qty, gram are required")

// CheckoutLine is a line as the storefront submits it.
type CheckoutLine struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
	Gram      int    `json:"gram"`
	RoastID   string `json:"roastId,omitempty"`
}

type PricedLine struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Image       string `json:"image"`
	Roast       string `json:"roast"`
	Grams       int    `json:"gram"`
	Qty         int    `json:"qty"`
	UnitPrice   int64  `json:"unitPrice"`
	Subtotal    int64  `json:"subtotal"`
}

type Quote struct {
	Lines []PricedLine `json:"lines"`
	Total int64        `json:"total"`
}

type SessionRequest struct {
	Lines      []PricedLine
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutCompletion is the provider-neutral payload of a completed checkout.
type CheckoutCompletion struct {
	SessionID   string
	Email       string
	AmountTotal int64
	Metadata    map[string]string
}

type WebhookEvent struct {
	ID         string
	Type       string
	Completion *CheckoutCompletion
}

// PaymentGateway creates hosted checkout sessions and verifies webhooks.
type PaymentGateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

type CheckoutService struct {
	DB        *gorm.DB
	Menu      MenuSource
	Inventory *InventoryService
	Gateway   PaymentGateway
	Notifier  Notifier
	SiteURL   string
	// NotifyTo receives order notifications; empty means the customer.
	NotifyTo string
	// OnOrder runs after an order is committed.
	OnOrder func(order models.Order)
	Now     func() time.Time
}

func (s *CheckoutService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Quote prices lines against the CMS and checks stock, aggregating grams per bean.
func (s *CheckoutService) Quote(ctx context.Context, lines []CheckoutLine) (*Quote, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCheckout
	}

	quote := &Quote{Lines: make([]PricedLine, 0, len(lines))}
	required := map[string]int{}
	productByBean := map[string]string{}
	var beanOrder []string

	for _, line := range lines {
		if strings.TrimSpace(line.ProductID) == "" || line.Qty <= 0 || line.Gram <= 0 {
			return nil, ErrInvalidCheckoutLine
		}

		item, err := s.Menu.GetMenu(ctx, line.ProductID)
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
		}
		if err != nil {
			return nil, fmt.Errorf("get product %s: %w", line.ProductID, err)
		}

		base := item.BaseGram()
		qty := cart.ClampQty(line.Qty)
		gram := cart.ClampGram(line.Gram, base)
		unit := int64(math.Max(0, math.Round(float64(item.BasePrice())/float64(base)*float64(gram))))

		priced := PricedLine{
			ProductID:   item.ID,
			ProductName: item.Name,
			Image:       item.ImageURL(),
			Roast:       line.RoastID,
			Grams:       gram,
			Qty:         qty,
			UnitPrice:   unit,
			Subtotal:    unit * int64(qty),
		}
		quote.Lines = append(quote.Lines, priced)
		quote.Total += priced.Subtotal

		if _, seen := productByBean[item.Name]; !seen {
			productByBean[item.Name] = item.ID
			beanOrder = append(beanOrder, item.Name)
		}
		required[item.Name] += gram * qty
	}

	var shortages []Shortage
	for _, name := range beanOrder {
		available, lossRate := 0, models.DefaultLossRate
		stock, err := s.Inventory.Find(ctx, name)
		switch {
		case err == nil:
			available, lossRate = stock.StockGrams, stock.LossRate
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}

		need := RequiredGrams(required[name], 1, lossRate)
		if available < need {
			shortages = append(shortages, Shortage{
				ProductID: productByBean[name],
				BeanName:  name,
				Required:  need,
				Available: available,
			})
		}
	}
	if len(shortages) > 0 {
		return nil, &InsufficientStockError{Shortages: shortages}
	}

	return quote, nil
}

type compactLine struct {
	P string `json:"p"`
	G int    `json:"g"`
	Q int    `json:"q"`
	R string `json:"r,omitempty"`
	U int64  `json:"u"`
}

func sessionMetadata(lines []PricedLine) map[string]string {
	first := lines[0]
	meta := map[string]string{
		metaProductID:   first.ProductID,
		metaProductName: first.ProductName,
		metaQty:         strconv.Itoa(first.Qty),
		metaGram:        strconv.Itoa(first.Grams),
		metaRoastID:     first.Roast,
		metaUnitPrice:   strconv.FormatInt(first.UnitPrice, 10),
	}

	compact := make([]compactLine, 0, len(lines))
	for _, l := range lines {
		compact = append(compact, compactLine{P: l.ProductID, G: l.Grams, Q: l.Qty, R: l.Roast, U: l.UnitPrice})
	}
	if raw, err := json.Marshal(compact); err == nil && len(raw) <= maxMetadataValue {
		meta[metaItems] = string(raw)
	}
	return meta
}

// CreateSession quotes the lines, opens a checkout session and records a draft
// so the webhook can rebuild every line.
func (s *CheckoutService) CreateSession(ctx context.Context, lines []CheckoutLine) (*Session, *Quote, error) {
	if s.Gateway == nil {
		return nil, nil, fmt.Errorf("payments %w", ErrNotConfigured)
	}

	quote, err := s.Quote(ctx, lines)
	if err != nil {
		return nil, nil, err
	}

	siteURL := strings.TrimRight(s.SiteURL, "/")
	session, err := s.Gateway.CreateSession(ctx, SessionRequest{
		Lines:      quote.Lines,
		SuccessURL: siteURL + "/success",
		CancelURL:  siteURL + "/cart",
		Metadata:   sessionMetadata(quote.Lines),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create checkout session: %w", err)
	}

	draft := models.CheckoutDraft{SessionID: session.ID, Lines: make([]models.DraftLine, 0, len(quote.Lines))}
	for _, l := range quote.Lines {
		draft.Lines = append(draft.Lines, models.DraftLine{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Roast:       l.Roast,
			Grams:       l.Grams,
			Qty:         l.Qty,
			UnitPrice:   l.UnitPrice,
		})
	}
	if err := s.DB.WithContext(ctx).Create(&draft).Error; err != nil {
		// The webhook can still fall back to session metadata.
		utils.ErrorLogger.Errorf("save checkout draft %s: %v", session.ID, err)
	}

	return session, quote, nil
}

// linesFromMetadata rebuilds lines when no draft exists: the compact items list
// first, then the single-line keys.
func linesFromMetadata(meta map[string]string) []models.DraftLine {
	if raw := meta[metaItems]; raw != "" {
		var compact []compactLine
		if err := json.Unmarshal([]byte(raw), &compact); err == nil && len(compact) > 0 {
			lines := make([]models.DraftLine, 0, len(compact))
			for i, c := range compact {
				name := ""
				if i == 0 {
					name = meta[metaProductName]
				}
				lines = append(lines, models.DraftLine{ProductID: c.P, ProductName: name, Roast: c.R, Grams: c.G, Qty: c.Q, UnitPrice: c.U})
			}
			return lines
		}
	}

	if meta[metaProductID] == "" && meta[metaProductName] == "" {
		return nil
	}
	qty, err := strconv.Atoi(meta[metaQty])
	if err != nil || qty <= 0 {
		qty = 1
	}
	gram, _ := strconv.Atoi(meta[metaGram])
	unit, _ := strconv.ParseInt(meta[metaUnitPrice], 10, 64)
	name := meta[metaProductName]
	if name == "" {
		name = "Unknown product"
	}
	return []models.DraftLine{{
		ProductID:   meta[metaProductID],
		ProductName: name,
		Roast:       meta[metaRoastID],
		Grams:       gram,
		Qty:         qty,
		UnitPrice:   unit,
	}}
}

// resolveNames fills missing product names from the CMS; failures keep the id.
func (s *CheckoutService) resolveNames(ctx context.Context, lines []models.DraftLine) {
	for i := range lines {
		if lines[i].ProductName != "" {
			continue
		}
		if s.Menu != nil {
			if item, err := s.Menu.GetMenu(ctx, lines[i].ProductID); err == nil {
				lines[i].ProductName = item.Name
				continue
			}
		}
		lines[i].ProductName = lines[i].ProductID
	}
}

// Fulfil records the order for a completed session, decrements stock and
// notifies. It is idempotent on the session id; created is false on replays.
func (s *CheckoutService) Fulfil(ctx context.Context, c CheckoutCompletion) (order *models.Order, created bool, err error) {
	if c.SessionID == "" {
		return nil, false, errors.New("missing session id")
	}
	db := s.DB.WithContext(ctx)

	var existing models.Order
	err = db.Preload("Items").Where("stripe_session_id = ?", c.SessionID).First(&existing).Error
	if err == nil {
		utils.InfoLogger.Printf("checkout session %s already fulfilled as order %d", c.SessionID, existing.ID)
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("lookup order: %w", err)
	}

	var lines []models.DraftLine
	var draft models.CheckoutDraft
	if err := db.Where("session_id = ?", c.SessionID).First(&draft).Error; err == nil {
		lines = draft.Lines
	} else {
		lines = linesFromMetadata(c.Metadata)
	}
	s.resolveNames(ctx, lines)

	var profile *models.RoastProfile
	var roastID string
	for _, l := range lines {
		if l.Roast != "" {
			roastID = l.Roast
			break
		}
	}
	if roastID != "" {
		var p models.RoastProfile
		if err := db.Where("id = ?", roastID).First(&p).Error; err == nil {
			profile = &p
		}
	}

	now := s.now()
	newOrder := models.Order{
		StripeSessionID: c.SessionID,
		Email:           c.Email,
		TotalAmount:     c.AmountTotal,
		Status:          models.OrderStatusPaid,
	}
	if roastID != "" {
		newOrder.RoastID = &roastID
	}
	if profile != nil {
		start, end, expiry := profile.Window(now)
		newOrder.TasteStart, newOrder.TasteEnd, newOrder.ExpiryDate = &start, &end, &expiry
	}
	for _, l := range lines {
		newOrder.Items = append(newOrder.Items, models.OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Roast:       l.Roast,
			Grams:       l.Grams,
			Qty:         l.Qty,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.UnitPrice * int64(l.Qty),
		})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newOrder).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, l := range lines {
			var stock models.BeanStock
			err := tx.Where("bean_name = ?", l.ProductName).First(&stock).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.InfoLogger.Warnf("no stock row for %q; skipping decrement", l.ProductName)
				continue
			}
			if err != nil {
				return fmt.Errorf("find bean stock: %w", err)
			}

			// Stock loses the shipped grams; loss only applies to the checkout check.
			// Single UPDATE so concurrent webhooks cannot drive stock below zero.
			need := l.Grams * l.Qty
			if err := tx.Model(&models.BeanStock{}).Where("id = ?", stock.ID).Updates(map[string]interface{}{
				"stock_grams": gorm.Expr("CASE WHEN stock_grams > ? THEN stock_grams - ? ELSE 0 END", need, need),
				"updated_at":  now,
			}).Error; err != nil {
				return fmt.Errorf("decrement bean stock: %w", err)
			}
		}

		return tx.Where("session_id = ?", c.SessionID).Delete(&models.CheckoutDraft{}).Error
	})
	if err != nil {
		return nil, false, err
	}

	utils.InfoLogger.Printf("order %d created for checkout session %s", newOrder.ID, c.SessionID)
	s.notify(ctx, newOrder, profile, now)
	if s.OnOrder != nil {
		s.OnOrder(newOrder)
	}
	return &newOrder, true, nil
}

func (s *CheckoutService) notify(ctx context.Context, order models.Order, profile *models.RoastProfile, at time.Time) {
	if s.Notifier == nil {
		return
	}
	to := s.NotifyTo
	if to == "" {
		to = order.Email
	}
	if to == "" {
		utils.InfoLogger.Warnf("order %d has no notification recipient", order.ID)
		return
	}

	subject, body := BuildOrderNotification(order, profile, at)
	if err := s.Notifier.Send(ctx, to, subject, body); err != nil {
		utils.ErrorLogger.Errorf("send order notification for %s: %v", order.StripeSessionID, err)
	}
}

// HandleWebhook verifies the payload and fulfils completed checkouts.
// Other event types are acknowledged and ignored.
func (s *CheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, *models.Order, error) {
	if s.Gateway == nil {
		return nil, nil, fmt.Errorf("payments %w", ErrNotConfigured)
	}
	event, err := s.Gateway.ParseWebhook(payload, signature)
	if err != nil {
		return nil, nil, err
	}
	if event.Type != EventCheckoutCompleted || event.Completion == nil {
		return event, nil, nil
	}

	order, _, err := s.Fulfil(ctx, *event.Completion)
	if err != nil {
		return event, nil, err
	}
	return event, order, nil
}
