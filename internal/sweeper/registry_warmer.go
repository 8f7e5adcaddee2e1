package sweeper

import (
	"context"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-sweeper/internal/adapter"
	"github.com/feral-file/ff-token-sweeper/internal/domain"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
	"github.com/feral-file/ff-token-sweeper/internal/registry"
)

type registryWarmer struct {
	*periodic
	chains   []domain.Chain
	registry registry.VerifiedRegistry
	pool     pond.Pool
}

// NewRegistryWarmer creates a sweeper that refreshes the verified token list of
// each chain every interval, so discovery rarely waits for a cold list
func NewRegistryWarmer(chains []domain.Chain, interval time.Duration, verified registry.VerifiedRegistry, pool pond.Pool, clock adapter.Clock) Sweeper {
	w := &registryWarmer{
		chains:   chains,
		registry: verified,
		pool:     pool,
	}
	w.periodic = newPeriodic("registry-warmer", interval, clock, w.warm)
	return w
}

// warm refreshes every chain concurrently. Failures are logged and left to the
// registry's degraded handling.
func (w *registryWarmer) warm(ctx context.Context) error {
	tasks := make([]pond.Task, 0, len(w.chains))
	for _, chain := range w.chains {
		tasks = append(tasks, w.pool.Submit(func() {
			if err := w.registry.Refresh(ctx, chain); err != nil {
				logger.WarnCtx(ctx, "Failed to warm verified token list",
					zap.String("chain", string(chain)),
					zap.Error(err))
			}
		}))
	}

	for _, task := range tasks {
		_ = task.Wait()
	}

	return ctx.Err()
}
