package shopsearch

import "github.com/kailas-cloud/shopsearch/internal/domain"

// Sentinel errors for use with errors.Is.
var (
	ErrEngineUnavailable = domain.ErrEngineUnavailable
	ErrEngineRejected    = domain.ErrEngineRejected
	ErrInvalidResponse   = domain.ErrInvalidResponse
)
