package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kento-cell/MyHobbyCoffee/feed"
	"github.com/kento-cell/MyHobbyCoffee/services"
	"github.com/kento-cell/MyHobbyCoffee/utils"
)

type InventoryController struct {
	Inventory *services.InventoryService
	Hub       *feed.Hub
}

func NewInventoryController(inventory *services.InventoryService, hub *feed.Hub) *InventoryController {
	return &InventoryController{Inventory: inventory, Hub: hub}
}

func (ic *InventoryController) GetInventory(c *gin.Context) {
	stocks, err := ic.Inventory.List(c.Request.Context())
	if err != nil {
		utils.ErrorLogger.Errorf("list inventory: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to load inventory"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bean stocks", stocks)
}

// UpdateInventory applies {beanName, deltaGram, lossRate?}, creating the row when missing.
func (ic *InventoryController) UpdateInventory(c *gin.Context) {
	var req services.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := req.Validate(); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	stock, err := ic.Inventory.Adjust(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrNegativeStock) || errors.Is(err, services.ErrInvalidLossRate) {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		utils.ErrorLogger.Errorf("adjust inventory %q: %v", req.BeanName, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to update inventory"))
		return
	}

	utils.InfoLogger.Infof("stock for %s set to %dg", stock.BeanName, stock.StockGrams)
	if ic.Hub != nil {
		ic.Hub.BroadcastStockUpdated(*stock)
	}
	utils.RespondJSON(c, http.StatusOK, "Stock updated", stock)
}
