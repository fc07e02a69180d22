package service

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrAlreadyAllocated = errors.New("payment already allocated")
	ErrInvalidState     = errors.New("invalid payment state")
	ErrAuthentication   = errors.New("worker not recognized")
)
