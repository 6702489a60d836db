package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"updown/internal/repository"
	"updown/internal/service"
)

type TradeHandler struct {
	Repo   repository.Repository
	Trades *service.TradeService
}

func (h *TradeHandler) Register(r *gin.Engine, auth gin.HandlerFunc) {
	g := r.Group("/api/v1/trades", auth)
	g.POST("", h.place)
	g.GET("", h.list)
	g.GET("/active", h.active)
}

type placeTradeBody struct {
	Symbol    string          `json:"symbol"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Direction string          `json:"direction" binding:"required"`
}

// @Summary Place a wager on the current round
// @Tags trades
// @Accept json
// @Produce json
// @Param body body placeTradeBody true "wager"
// @Success 201 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Failure 402 {object} apiResponse
// @Failure 409 {object} apiResponse
// @Router /api/v1/trades [post]
func (h *TradeHandler) place(c *gin.Context) {
	if h.Trades == nil {
		Error(c, http.StatusInternalServerError, "trade service unavailable", nil)
		return
	}
	var body placeTradeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	trade, err := h.Trades.PlaceTrade(c.Request.Context(), authedUserID(c), service.PlaceTradeRequest{
		Symbol:    body.Symbol,
		Amount:    body.Amount,
		Direction: body.Direction,
	}, time.Now().UTC())
	if err != nil {
		status, msg := tradeErrorStatus(err)
		Error(c, status, msg, nil)
		return
	}
	Created(c, trade)
}

func tradeErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidDirection):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInsufficientBalance):
		return http.StatusPaymentRequired, err.Error()
	case errors.Is(err, service.ErrNoOpenRound),
		errors.Is(err, service.ErrRoundClosing):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusBadGateway, "trade placement failed, try again"
	}
}

// @Summary List the caller's trade history
// @Tags trades
// @Produce json
// @Success 200 {object} apiResponse
// @Router /api/v1/trades [get]
func (h *TradeHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	userID := authedUserID(c)
	var status *string
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		status = &v
	}
	params := repository.ListTradesParams{
		Limit:   limit,
		Offset:  offset,
		UserID:  &userID,
		Status:  status,
		OrderBy: "placed_at",
		Asc:     boolPtr(false),
	}
	items, err := h.Repo.ListTrades(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountTrades(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary List the caller's unsettled trades
// @Tags trades
// @Produce json
// @Success 200 {object} apiResponse
// @Router /api/v1/trades/active [get]
func (h *TradeHandler) active(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	userID := authedUserID(c)
	pending := "pending"
	items, err := h.Repo.ListTrades(c.Request.Context(), repository.ListTradesParams{
		Limit:   200,
		UserID:  &userID,
		Status:  &pending,
		OrderBy: "placed_at",
		Asc:     boolPtr(false),
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}
