package progress

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/middleware"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/reject"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/utils"
)

type adminHandler struct {
	progress *ProgressService
}

func RegisterAdminRoutes(rg *gin.RouterGroup, service *ProgressService) {
	handler := adminHandler{
		progress: service,
	}

	routes := rg.Group("/admin/progress/users", middleware.VerifyAuthToken, middleware.RequireAdmin)
	routes.GET("", handler.listUsers)
	routes.GET("/:username", handler.getUser)
	routes.POST("/:username/balance", handler.adjustBalance)
	routes.POST("/:username/xp", handler.adjustExperience)
	routes.POST("/:username/avatar", handler.setAvatar)
	routes.POST("/:username/reset-cooldowns", handler.resetCooldowns)
}

type AdminAdjustRequest struct {
	Delta     *int64 `json:"delta"`
	Level     *int64 `json:"level"`
	AvatarUrl string `json:"avatarUrl"`
	Reason    string `json:"reason"`
}

func (h adminHandler) listUsers(c *gin.Context) {
	page, pageErr := utils.NewPageRequest(c)
	if pageErr != nil {
		c.JSON(pageErr.Problem.Status, pageErr.Problem)
		return
	}

	users, err := h.progress.ListProfiles(c.Request.Context(), page)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h adminHandler) getUser(c *gin.Context) {
	user, err := h.progress.FindProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h adminHandler) adjustBalance(c *gin.Context) {
	body := AdminAdjustRequest{}
	if err := c.ShouldBindJSON(&body); err != nil || body.Delta == nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	user, err := h.progress.AdjustBalance(c.Request.Context(), c.Param("username"), *body.Delta, body.Reason, utils.GetUsername(c))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h adminHandler) adjustExperience(c *gin.Context) {
	body := AdminAdjustRequest{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	user, err := h.progress.AdjustExperience(c.Request.Context(), c.Param("username"), body.Delta, body.Level, body.Reason, utils.GetUsername(c))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h adminHandler) setAvatar(c *gin.Context) {
	body := AdminAdjustRequest{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	user, err := h.progress.SetAvatar(c.Request.Context(), c.Param("username"), body.AvatarUrl, utils.GetUsername(c))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h adminHandler) resetCooldowns(c *gin.Context) {
	user, err := h.progress.ResetCooldowns(c.Request.Context(), c.Param("username"), utils.GetUsername(c))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, user)
}
