package health

import "context"

// EngineChecker checks search engine availability.
type EngineChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger checks response cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
