package render

import "errors"

var (
	ErrSurfaceBusy = errors.New("surface already acquired")
	ErrNotAcquired = errors.New("surface not acquired")
)
