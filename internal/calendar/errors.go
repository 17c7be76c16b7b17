package calendar

import (
	"errors"

	"github.com/tartampluch/go-agenda/internal/config"
)

// Errors returned by Day and Calendar operations. Callers compare with errors.Is;
// every one of them leaves the in-memory model unchanged.
var (
	ErrOutOfRange        = errors.New(config.ErrTaskOutOfRange)
	ErrNoSuchDate        = errors.New(config.ErrNoSuchDate)
	ErrInvalidRecurrence = errors.New(config.ErrInvalidRecurrence)
	ErrStorageFault      = errors.New(config.ErrStorageFault)
	ErrMalformedData     = errors.New(config.ErrMalformedData)
	ErrInvalidDate       = errors.New(config.ErrInvalidDate)
	ErrEmptyDescription  = errors.New(config.ErrEmptyDescription)
)
