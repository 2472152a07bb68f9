package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kento-cell/MyHobbyCoffee/recommender"
	"github.com/kento-cell/MyHobbyCoffee/services"
	"github.com/kento-cell/MyHobbyCoffee/utils"
)

type RecommenderController struct {
	Recommend    *services.RecommendService
	CookieSecure bool
}

func NewRecommenderController(recommend *services.RecommendService, cookieSecure bool) *RecommenderController {
	return &RecommenderController{Recommend: recommend, CookieSecure: cookieSecure}
}

type submitAnswersInput struct {
	DeviceID string              `json:"deviceId"`
	Answers  recommender.Answers `json:"answers"`
}

// GetQuestions returns the questionnaire in display order.
func (rc *RecommenderController) GetQuestions(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Questions", recommender.Questions)
}

// Submit scores the answers and remembers the device that sent them.
func (rc *RecommenderController) Submit(c *gin.Context) {
	var input submitAnswersInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := input.Answers.Validate(); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	id, _ := deviceID(c, input.DeviceID)
	sub, err := rc.Recommend.Submit(c.Request.Context(), id, input.Answers)
	if err != nil {
		utils.ErrorLogger.Errorf("recommender submit: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Server error"))
		return
	}

	setDeviceCookie(c, id, rc.CookieSecure)
	utils.RespondJSON(c, http.StatusOK, "Recommendation", sub)
}

// Latest returns the newest stored recommendation for the caller's device.
// Only the httpOnly cookie identifies the device here.
func (rc *RecommenderController) Latest(c *gin.Context) {
	id, _ := c.Cookie(recommender.DeviceCookieName)
	if !validDeviceID(id) {
		utils.RespondError(c, http.StatusNotFound, errors.New("No recommendation yet"))
		return
	}

	sub, err := rc.Recommend.Latest(c.Request.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		utils.RespondError(c, http.StatusNotFound, errors.New("No recommendation yet"))
		return
	}
	if err != nil {
		utils.ErrorLogger.Errorf("recommender latest %s: %v", id, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Server error"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Latest recommendation", sub)
}
