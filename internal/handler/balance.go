package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"updown/internal/repository"
)

type BalanceHandler struct {
	Repo repository.Repository
}

func (h *BalanceHandler) Register(r *gin.Engine, auth gin.HandlerFunc) {
	g := r.Group("/api/v1/balance", auth)
	g.GET("", h.get)
	g.GET("/ledger", h.ledger)
}

// @Summary Caller's balance
// @Tags balance
// @Produce json
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/v1/balance [get]
func (h *BalanceHandler) get(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	user, err := h.Repo.GetUserByID(c.Request.Context(), authedUserID(c))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if user == nil {
		Error(c, http.StatusNotFound, "user not found", nil)
		return
	}
	Ok(c, gin.H{
		"user_id":    user.ID,
		"balance":    user.Balance,
		"updated_at": user.UpdatedAt,
	}, nil)
}

// @Summary Caller's balance ledger
// @Tags balance
// @Produce json
// @Success 200 {object} apiResponse
// @Router /api/v1/balance/ledger [get]
func (h *BalanceHandler) ledger(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	userID := authedUserID(c)
	var kind *string
	if v := strings.TrimSpace(c.Query("kind")); v != "" {
		kind = &v
	}
	params := repository.ListLedgerEntriesParams{
		Limit:  limit,
		Offset: offset,
		UserID: &userID,
		Kind:   kind,
	}
	items, err := h.Repo.ListLedgerEntries(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountLedgerEntries(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}
