package services

import "errors"

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameClosed   = errors.New("game is closed")
	ErrInvalidName  = errors.New("participant name is empty")
	ErrRateLimited  = errors.New("too many actions, slow down")
)
