package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kento-cell/MyHobbyCoffee/services"
	"github.com/kento-cell/MyHobbyCoffee/utils"
)

type BlogController struct {
	CMS *services.CMSClient
}

func NewBlogController(cms *services.CMSClient) *BlogController {
	return &BlogController{CMS: cms}
}

func (bc *BlogController) GetAllBlogs(c *gin.Context) {
	list, err := bc.CMS.ListBlogs(c.Request.Context(), listQuery(c))
	if err != nil {
		utils.ErrorLogger.Errorf("list blogs: %v", err)
		utils.RespondError(c, http.StatusBadGateway, errors.New("failed to load blogs"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of blogs", list)
}

func (bc *BlogController) GetBlogByID(c *gin.Context) {
	entry, err := bc.CMS.GetBlog(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrNotFound) {
		utils.RespondError(c, http.StatusNotFound, errors.New("Not found"))
		return
	}
	if err != nil {
		utils.ErrorLogger.Errorf("get blog %s: %v", c.Param("id"), err)
		utils.RespondError(c, http.StatusBadGateway, errors.New("Server error"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Blog detail", entry)
}

func (bc *BlogController) GetTopBackgrounds(c *gin.Context) {
	list, err := bc.CMS.ListTopBackgrounds(c.Request.Context())
	if err != nil {
		utils.ErrorLogger.Errorf("list top backgrounds: %v", err)
		utils.RespondError(c, http.StatusBadGateway, errors.New("failed to load images"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Top background images", list)
}
