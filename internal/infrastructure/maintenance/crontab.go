// Package maintenance runs the scheduled retention sweeps.
package maintenance

import (
	"context"
	"time"

	"github.com/mileusna/crontab"

	"github.com/continuumhq/continuum-server/internal/domain/pulse"
	"github.com/continuumhq/continuum-server/internal/domain/signup"
	"github.com/continuumhq/continuum-server/internal/infrastructure/logger"
	"github.com/continuumhq/continuum-server/internal/infrastructure/metrics"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

const jobTimeout = 10 * time.Minute

// Crontab schedules the nightly retention sweeps over pulse logs and stale
// signup requests.
type Crontab struct {
	ctab           *crontab.Crontab
	pulses         *pulse.Service
	signups        *signup.Service
	pulseRetention time.Duration
	signupMaxAge   time.Duration
}

// NewCrontab constructs a Crontab with required dependencies.
func NewCrontab(
	pulses *pulse.Service,
	signups *signup.Service,
	pulseRetention time.Duration,
	signupMaxAge time.Duration,
) *Crontab {
	return &Crontab{
		ctab:           crontab.New(),
		pulses:         pulses,
		signups:        signups,
		pulseRetention: pulseRetention,
		signupMaxAge:   signupMaxAge,
	}
}

// Run schedules the sweeps and blocks until the context is canceled. Sweeps
// also run once at startup so a restart never extends retention.
func (c *Crontab) Run(ctx context.Context) error {
	c.sweep(ctx)

	if err := c.ctab.AddJob("15 3 * * *", func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		c.sweep(jobCtx)
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add retention sweep job")
	}

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

func (c *Crontab) sweep(ctx context.Context) {
	log := logger.GetLogger()

	pruned, err := c.pulses.Prune(ctx, c.pulseRetention)
	if err != nil {
		log.Error().Err(err).Msg("Failed to prune pulse logs")
	} else if pruned > 0 {
		metrics.MaintenancePrunedTotal.WithLabelValues("pulse_logs").Add(float64(pruned))
		log.Info().Int64("rows", pruned).Msg("Pruned pulse logs")
	}

	pruned, err = c.signups.PruneStale(ctx, c.signupMaxAge)
	if err != nil {
		log.Error().Err(err).Msg("Failed to prune signup requests")
	} else if pruned > 0 {
		metrics.MaintenancePrunedTotal.WithLabelValues("signup_requests").Add(float64(pruned))
		log.Info().Int64("rows", pruned).Msg("Pruned signup requests")
	}
}
