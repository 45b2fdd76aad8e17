package shopsearch

import (
	"context"
	"errors"
	"fmt"
	"sort"

	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
)

// HealthReport holds the result of a health check.
type HealthReport struct {
	Status string            // "ok", "degraded" or "error"
	Checks map[string]string // component -> "ok" or "error"
}

// Healthy reports whether every component responded.
func (r HealthReport) Healthy() bool { return r.Status == string(healthuc.Healthy) }

// Health checks the engine and, when configured, the cache.
// A non-nil error names the failing components.
func (c *Client) Health(ctx context.Context) (HealthReport, error) {
	var out HealthReport
	err := c.obs.do(ctx, "health", func() error {
		report := c.health.Check(ctx)
		out = HealthReport{
			Status: string(report.Status),
			Checks: make(map[string]string, len(report.Checks)),
		}
		var failed []string
		for name, res := range report.Checks {
			out.Checks[name] = string(res)
			if res != healthuc.CheckOK {
				failed = append(failed, name)
			}
		}
		if len(failed) == 0 {
			return nil
		}
		sort.Strings(failed)
		return fmt.Errorf("%w: %v", errUnhealthy, failed)
	})
	return out, err
}

var errUnhealthy = errors.New("unhealthy components")
