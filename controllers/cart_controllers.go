package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kento-cell/MyHobbyCoffee/cart"
	"github.com/kento-cell/MyHobbyCoffee/services"
	"github.com/kento-cell/MyHobbyCoffee/utils"
)

type CartController struct {
	Store        *cart.Store
	Menu         services.MenuSource
	CookieSecure bool
}

func NewCartController(store *cart.Store, menu services.MenuSource, cookieSecure bool) *CartController {
	return &CartController{Store: store, Menu: menu, CookieSecure: cookieSecure}
}

type addCartItemInput struct {
	ProductID     string `json:"productId" binding:"required"`
	Qty           int    `json:"qty"`
	SelectedGram  int    `json:"selectedGram"`
	SelectedRoast string `json:"selectedRoast"`
}

type updateCartItemInput struct {
	Qty          *int `json:"qty"`
	SelectedGram *int `json:"selectedGram"`
}

// load opens the device cart with write-back enabled. The returned func
// detaches persistence.
func (cc *CartController) load(c *gin.Context) (*cart.Cart, func(), bool) {
	id, fresh := deviceID(c, "")
	if fresh {
		setDeviceCookie(c, id, cc.CookieSecure)
	}

	ctx := c.Request.Context()
	crt, err := cc.Store.Load(ctx, id)
	if err != nil {
		utils.ErrorLogger.Errorf("load cart %s: %v", id, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to load cart"))
		return nil, nil, false
	}
	detach := cc.Store.Persist(ctx, id, crt, func(err error) {
		utils.ErrorLogger.Errorf("save cart %s: %v", id, err)
	})
	return crt, detach, true
}

// GetCart
func (cc *CartController) GetCart(c *gin.Context) {
	crt, detach, ok := cc.load(c)
	if !ok {
		return
	}
	defer detach()

	utils.RespondJSON(c, http.StatusOK, "Cart", crt.Summary())
}

// AddItem prices the line from the CMS so clients cannot choose their own price.
func (cc *CartController) AddItem(c *gin.Context) {
	var input addCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	product, err := cc.Menu.GetMenu(c.Request.Context(), input.ProductID)
	if errors.Is(err, services.ErrNotFound) {
		utils.RespondError(c, http.StatusNotFound, services.ErrProductNotFound)
		return
	}
	if err != nil {
		utils.ErrorLogger.Errorf("cart product lookup %s: %v", input.ProductID, err)
		utils.RespondError(c, http.StatusBadGateway, errors.New("failed to load product"))
		return
	}

	crt, detach, ok := cc.load(c)
	if !ok {
		return
	}
	defer detach()

	roast := input.SelectedRoast
	if roast == "" {
		roast = product.Roast.First()
	}
	qty := input.Qty
	if qty == 0 {
		qty = 1
	}

	line := crt.Add(cart.Item{
		ProductID:     product.ID,
		Title:         product.Name,
		Price:         product.BasePrice(),
		Image:         product.ImageURL(),
		SelectedGram:  input.SelectedGram,
		BaseGram:      product.BaseGram(),
		SelectedRoast: roast,
	}, qty)

	utils.InfoLogger.Infof("cart line %s added for product %s", line.LineID, line.ProductID)
	utils.RespondJSON(c, http.StatusCreated, "Item added", crt.Summary())
}

// UpdateItem changes qty and/or selected gram of a line.
func (cc *CartController) UpdateItem(c *gin.Context) {
	var input updateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if input.Qty == nil && input.SelectedGram == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("qty or selectedGram is required"))
		return
	}

	crt, detach, ok := cc.load(c)
	if !ok {
		return
	}
	defer detach()

	lineID := c.Param("line_id")
	var err error
	if input.Qty != nil {
		_, err = crt.UpdateQty(lineID, *input.Qty)
	}
	if err == nil && input.SelectedGram != nil {
		_, err = crt.UpdateGram(lineID, *input.SelectedGram)
	}
	if errors.Is(err, cart.ErrLineNotFound) {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Cart updated", crt.Summary())
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	crt, detach, ok := cc.load(c)
	if !ok {
		return
	}
	defer detach()

	if err := crt.Remove(c.Param("line_id")); err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item removed", crt.Summary())
}

func (cc *CartController) ClearCart(c *gin.Context) {
	crt, detach, ok := cc.load(c)
	if !ok {
		return
	}
	defer detach()

	crt.Clear()
	utils.RespondJSON(c, http.StatusOK, "Cart cleared", crt.Summary())
}
