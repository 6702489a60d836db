package service

import "errors"

// Trade intake rejections. Handlers map these onto HTTP codes; nothing below
// mutates state before failing.
var (
	ErrInvalidAmount       = errors.New("wager amount out of bounds")
	ErrInvalidDirection    = errors.New("direction must be up or down")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUserNotFound        = errors.New("user not found")
	ErrNoOpenRound         = errors.New("no open round")
	ErrRoundClosing        = errors.New("round closes too soon for new trades")
)
