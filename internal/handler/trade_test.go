package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"updown/internal/service"
)

func TestTradeErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrInvalidAmount, http.StatusBadRequest},
		{service.ErrInvalidDirection, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", service.ErrInvalidAmount), http.StatusBadRequest},
		{service.ErrInsufficientBalance, http.StatusPaymentRequired},
		{service.ErrNoOpenRound, http.StatusConflict},
		{service.ErrRoundClosing, http.StatusConflict},
		{service.ErrUserNotFound, http.StatusNotFound},
		{errors.New("pg: connection refused"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		if got, _ := tradeErrorStatus(tt.err); got != tt.want {
			t.Fatalf("tradeErrorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestParseUint64(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"42", 42},
		{" 42 ", 42},
		{"", 0},
		{"-1", 0},
		{"abc", 0},
	}
	for _, tt := range tests {
		if got := parseUint64(tt.in); got != tt.want {
			t.Fatalf("parseUint64(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
