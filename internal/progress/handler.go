package progress

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/middleware"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/reject"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/utils"
)

type progressHandler struct {
	progress *ProgressService
}

func RegisterRoutes(rg *gin.RouterGroup, service *ProgressService) {
	handler := progressHandler{
		progress: service,
	}

	routes := rg.Group("/progress")
	routes.GET("/leaderboard", handler.getLeaderboard)

	me := routes.Group("/me", middleware.VerifyAuthToken)
	me.GET("", handler.getMe)
	me.POST("/bids", handler.placeBid)
	me.POST("/awards", handler.award)
	me.POST("/daily-login", handler.dailyLogin)
	me.POST("/mystery-box", handler.openMysteryBox)
	me.POST("/starter-pack", handler.claimStarterPack)
}

func (h progressHandler) getLeaderboard(c *gin.Context) {
	entries, err := h.progress.GetLeaderboard(c.Request.Context())
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h progressHandler) getMe(c *gin.Context) {
	profile, err := h.progress.GetProfile(c.Request.Context(), utils.GetUsername(c))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, profile)
}

type PlaceBidRequest struct {
	AuctionId string `json:"auctionId" binding:"required"`
	Amount    int64  `json:"amount" binding:"required"`
}

func (h progressHandler) placeBid(c *gin.Context) {
	body := PlaceBidRequest{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	result, err := h.progress.PlaceBid(c.Request.Context(), utils.GetUsername(c), body.AuctionId, body.Amount)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, result)
}

type AwardRequest struct {
	Kind      string `json:"kind" binding:"required"`
	AuctionId string `json:"auctionId"`
	Amount    *int64 `json:"amount"`
}

func (h progressHandler) award(c *gin.Context) {
	body := AwardRequest{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	kind, parseErr := ParseAwardKind(body.Kind)
	if parseErr != nil {
		problem := reject.RequestValidationProblem()
		problem.Detail = parseErr.Error()
		c.JSON(http.StatusBadRequest, problem)
		return
	}

	result, err := h.progress.Award(c.Request.Context(), utils.GetUsername(c), kind, AwardParams{
		AuctionId: body.AuctionId,
		Amount:    body.Amount,
	})
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h progressHandler) dailyLogin(c *gin.Context) {
	result, err := h.progress.TrackDailyLogin(c.Request.Context(), utils.GetUsername(c))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h progressHandler) claimStarterPack(c *gin.Context) {
	profile, err := h.progress.EnsureStarterPack(c.Request.Context(), utils.GetUsername(c))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h progressHandler) openMysteryBox(c *gin.Context) {
	result, err := h.progress.OpenMysteryBox(c.Request.Context(), utils.GetUsername(c))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, result)
}
