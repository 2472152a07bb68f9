package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kento-cell/MyHobbyCoffee/cart"
	"github.com/kento-cell/MyHobbyCoffee/recommender"
	"github.com/kento-cell/MyHobbyCoffee/services"
	"github.com/kento-cell/MyHobbyCoffee/utils"
)

// Stripe caps webhook payloads well below this.
const maxWebhookBody = 1 << 16

type CheckoutController struct {
	Checkout *services.CheckoutService
	Carts    *cart.Store
}

func NewCheckoutController(checkout *services.CheckoutService, carts *cart.Store) *CheckoutController {
	return &CheckoutController{Checkout: checkout, Carts: carts}
}

// createOrderInput accepts either items[] or a single line at the top level.
type createOrderInput struct {
	Items []services.CheckoutLine `json:"items"`
	services.CheckoutLine
}

type checkoutResponse struct {
	SessionID string                `json:"sessionId"`
	URL       string                `json:"url"`
	Lines     []services.PricedLine `json:"lines"`
	Total     int64                 `json:"total"`
}

func (cc *CheckoutController) linesFor(c *gin.Context, input createOrderInput) ([]services.CheckoutLine, error) {
	if len(input.Items) > 0 {
		return input.Items, nil
	}
	if input.ProductID != "" {
		return []services.CheckoutLine{input.CheckoutLine}, nil
	}

	// No lines in the body: check out the device cart.
	id, err := c.Cookie(recommender.DeviceCookieName)
	if err != nil || id == "" || cc.Carts == nil {
		return nil, services.ErrEmptyCheckout
	}
	crt, err := cc.Carts.Load(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	items := crt.Items()
	lines := make([]services.CheckoutLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, services.CheckoutLine{
			ProductID: it.ProductID,
			Qty:       it.Qty,
			Gram:      it.SelectedGram,
			RoastID:   it.SelectedRoast,
		})
	}
	return lines, nil
}

// CreateOrder opens a Stripe checkout session after pricing and stock checks.
func (cc *CheckoutController) CreateOrder(c *gin.Context) {
	var input createOrderInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}

	lines, err := cc.linesFor(c, input)
	if err != nil && !errors.Is(err, services.ErrEmptyCheckout) {
		utils.ErrorLogger.Errorf("load cart for checkout: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Server error"))
		return
	}

	session, quote, err := cc.Checkout.CreateSession(c.Request.Context(), lines)
	if err != nil {
		cc.respondCheckoutError(c, err)
		return
	}

	utils.InfoLogger.Infof("checkout session %s created, total %s", session.ID, utils.FormatYen(quote.Total))
	utils.RespondJSON(c, http.StatusOK, "Checkout session created", checkoutResponse{
		SessionID: session.ID,
		URL:       session.URL,
		Lines:     quote.Lines,
		Total:     quote.Total,
	})
}

func (cc *CheckoutController) respondCheckoutError(c *gin.Context, err error) {
	var stockErr *services.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		utils.RespondErrorWith(c, http.StatusBadRequest, services.ErrInsufficientStock, gin.H{
			"shortages": stockErr.Shortages,
		})
	case errors.Is(err, services.ErrProductNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrEmptyCheckout), errors.Is(err, services.ErrInvalidCheckoutLine):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrNotConfigured):
		utils.ErrorLogger.Errorf("checkout: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Stripe is not configured"))
	default:
		utils.ErrorLogger.Errorf("checkout: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Server error"))
	}
}

// StripeWebhook verifies the signature against the raw body and fulfils the order.
func (cc *CheckoutController) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("failed to read body"))
		return
	}

	event, order, err := cc.Checkout.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	switch {
	case errors.Is(err, services.ErrInvalidSignature):
		utils.ErrorLogger.Warnf("stripe webhook rejected: %v", err)
		utils.RespondError(c, http.StatusBadRequest, errors.New("Webhook signature verification failed"))
		return
	case errors.Is(err, services.ErrNotConfigured):
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Stripe is not configured"))
		return
	case err != nil:
		utils.ErrorLogger.Errorf("stripe webhook: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Server error"))
		return
	}

	if order != nil {
		utils.InfoLogger.Infof("stripe event %s fulfilled order %d", event.ID, order.ID)
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
