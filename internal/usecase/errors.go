package usecase

import (
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput          = crerr.New("invalid input")
	ErrNotFound              = crerr.New("resource not found")
	ErrUnauthorized          = crerr.New("unauthorized")
	ErrDependencyUnavailable = crerr.New("dependency unavailable")

	// ErrUpstream marks failures of the esports schedule feed.
	ErrUpstream = crerr.New("upstream feed error")
	// ErrCacheNotReady is returned by reads before the first successful refresh.
	ErrCacheNotReady = fmt.Errorf("%w: cache is warming up", ErrDependencyUnavailable)
	// ErrPredictionLocked is returned once a match started or a pick was scored.
	ErrPredictionLocked = fmt.Errorf("%w: prediction is locked", ErrInvalidInput)
)
