package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kento-cell/MyHobbyCoffee/services"
	"github.com/kento-cell/MyHobbyCoffee/utils"
)

type MenuController struct {
	CMS *services.CMSClient
}

func NewMenuController(cms *services.CMSClient) *MenuController {
	return &MenuController{CMS: cms}
}

func listQuery(c *gin.Context) services.ListQuery {
	q := services.ListQuery{
		Orders:  c.Query("orders"),
		Filters: c.Query("filters"),
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		q.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		q.Offset = v
	}
	return q
}

// GetAllMenus
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	list, err := mc.CMS.ListMenu(c.Request.Context(), listQuery(c))
	if err != nil {
		utils.ErrorLogger.Errorf("list menu: %v", err)
		utils.RespondError(c, http.StatusBadGateway, errors.New("failed to load menu"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu", list)
}

// GetRecommendedMenus
func (mc *MenuController) GetRecommendedMenus(c *gin.Context) {
	list, err := mc.CMS.ListRecommended(c.Request.Context())
	if err != nil {
		utils.ErrorLogger.Errorf("list recommended menu: %v", err)
		utils.RespondError(c, http.StatusBadGateway, errors.New("failed to load menu"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Recommended menu", list)
}

// GetMenuByID
func (mc *MenuController) GetMenuByID(c *gin.Context) {
	item, err := mc.CMS.GetMenu(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrNotFound) {
		utils.RespondError(c, http.StatusNotFound, errors.New("Not found"))
		return
	}
	if err != nil {
		utils.ErrorLogger.Errorf("get menu %s: %v", c.Param("id"), err)
		utils.RespondError(c, http.StatusBadGateway, errors.New("Server error"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu detail", item)
}

type menuSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GetAdminMenus lists id and name of every bean, for the inventory screen.
func (mc *MenuController) GetAdminMenus(c *gin.Context) {
	list, err := mc.CMS.ListMenu(c.Request.Context(), services.ListQuery{})
	if err != nil {
		utils.ErrorLogger.Errorf("admin list menu: %v", err)
		utils.RespondError(c, http.StatusBadGateway, errors.New("failed to load menu"))
		return
	}

	data := make([]menuSummary, 0, len(list.Contents))
	for _, item := range list.Contents {
		data = append(data, menuSummary{ID: item.ID, Name: item.Name})
	}
	utils.RespondJSON(c, http.StatusOK, "List of beans", data)
}
