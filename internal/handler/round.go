package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"updown/internal/repository"
	"updown/internal/service"
)

// RoundHandler is the read-only round surface the UI and reporting consume.
// No settlement logic lives here.
type RoundHandler struct {
	Repo   repository.Repository
	Rounds *service.RoundService
}

func (h *RoundHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/rounds")
	g.GET("/current", h.current)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.GET("/:id/trades", h.trades)
}

type currentRoundView struct {
	Round            any   `json:"round"`
	CountdownSeconds int64 `json:"countdown_seconds"`
}

// @Summary Current round and countdown
// @Tags rounds
// @Produce json
// @Success 200 {object} apiResponse
// @Router /api/v1/rounds/current [get]
func (h *RoundHandler) current(c *gin.Context) {
	if h.Rounds == nil {
		Error(c, http.StatusInternalServerError, "round service unavailable", nil)
		return
	}
	now := time.Now().UTC()
	round, err := h.Rounds.EnsureCurrentRound(c.Request.Context(), now)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	countdown := int64(round.EndTime.Sub(now).Seconds())
	if countdown < 0 {
		countdown = 0
	}
	Ok(c, currentRoundView{Round: round, CountdownSeconds: countdown}, nil)
}

// @Summary List rounds
// @Tags rounds
// @Produce json
// @Success 200 {object} apiResponse
// @Router /api/v1/rounds [get]
func (h *RoundHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	var status *string
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		status = &v
	}
	params := repository.ListRoundsParams{
		Limit:   limit,
		Offset:  offset,
		Status:  status,
		OrderBy: "start_time",
		Asc:     boolPtr(false),
	}
	items, err := h.Repo.ListRounds(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountRounds(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary Round by id
// @Tags rounds
// @Produce json
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/v1/rounds/{id} [get]
func (h *RoundHandler) get(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := uint64Param(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	item, err := h.Repo.GetRoundByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "round not found", nil)
		return
	}
	Ok(c, item, nil)
}

// @Summary Trades of a round
// @Tags rounds
// @Produce json
// @Success 200 {object} apiResponse
// @Router /api/v1/rounds/{id}/trades [get]
func (h *RoundHandler) trades(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := uint64Param(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	limit := intQuery(c, "limit", 100)
	offset := intQuery(c, "offset", 0)
	params := repository.ListTradesParams{
		Limit:   limit,
		Offset:  offset,
		RoundID: &id,
		OrderBy: "placed_at",
		Asc:     boolPtr(true),
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
