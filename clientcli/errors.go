package clientcli

import "errors"

// Errors for client construction.
var (
	ErrConfigRequired = errors.New("config is required")
)

// Errors for input validation.
var (
	ErrNoNames   = errors.New("no object names provided")
	ErrEmptyName = errors.New("object name is required")
	ErrEmptyPath = errors.New("path is required")
)
