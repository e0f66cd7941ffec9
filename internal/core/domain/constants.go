package domain

import "errors"

var (
	ErrSendingReplyFailed = errors.New("failed to send reply")
	ErrEmptyPrompt        = errors.New("empty prompt")
	ErrUnknownCommand     = errors.New("command not found")

	ErrInvalidInterval    = errors.New("invalid interval, use e.g. '5 min' or '45 sec'")
	ErrIntervalOutOfRange = errors.New("interval out of allowed range")
	ErrNotConfigured      = errors.New("destination not configured or already stopped")
	ErrAlreadyActive      = errors.New("destination already active")
	ErrShutdown           = errors.New("scheduler shut down")
	ErrEmptySelector      = errors.New("empty selector")

	ErrNotFound        = errors.New("no suitable item found")
	ErrSourceDisabled  = errors.New("content source disabled")
	ErrEmptySession    = errors.New("session needs at least one item")
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrUnknownAction   = errors.New("unknown session action")
)
