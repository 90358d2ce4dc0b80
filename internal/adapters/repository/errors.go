package repository

import (
	"errors"

	"github.com/okian/swiss/internal/domain/model"
)

// Sentinel kinds for store errors.
var (
	ErrCompetitorNotFound = model.ErrUnknownCompetitor
	ErrSameCompetitor     = model.ErrSameCompetitor
	ErrNotConfigured      = errors.New("store is not configured")
)
