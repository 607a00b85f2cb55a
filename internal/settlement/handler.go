package settlement

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/middleware"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/reject"
)

type settlementHandler struct {
	coordinator *Coordinator
}

func RegisterRoutes(rg *gin.RouterGroup, coordinator *Coordinator, internalKey string) {
	handler := settlementHandler{
		coordinator: coordinator,
	}

	routes := rg.Group("/internal/auctions", middleware.RequireInternalKey(internalKey))
	routes.POST("/:id/finished", handler.auctionFinished)
}

type AuctionFinishedRequest struct {
	Winner   string `json:"winner"`
	ItemSold *bool  `json:"itemSold"`
}

func (h settlementHandler) auctionFinished(c *gin.Context) {
	body := AuctionFinishedRequest{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	winner := model.SettledWinner(body.ItemSold, body.Winner)
	result, err := h.coordinator.SettleAuction(c.Request.Context(), c.Param("id"), winner)
	if errors.Is(err, ErrMissingAuction) {
		c.JSON(http.StatusBadRequest, reject.RequestParamsProblem())
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, reject.UnexpectedProblem(err))
		return
	}

	c.JSON(http.StatusOK, result)
}
