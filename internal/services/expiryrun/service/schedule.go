package service

import (
	"context"
	"errors"
	"time"

	perr "expiryai/internal/platform/errors"
	"expiryai/internal/platform/logger"
	"expiryai/internal/services/expiryrun/domain"
)

// Every runs p now and then once per interval until ctx ends.
// Failed runs are logged and retried on the next tick; invalid params stop the loop
func (s *Service) Every(ctx context.Context, interval time.Duration, p domain.Params) error {
	if interval <= 0 {
		return perr.InvalidArgf("expiryrun: interval must be positive, got %s", interval)
	}
	l := logger.C(ctx).With().Str("mod", "expiryrun").Dur("every", interval).Logger()
	l.Info().Msg("expiryrun: scheduler start")

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		_, err := s.Run(ctx, p)
		switch {
		case err == nil:
		case perr.IsCode(err, perr.ErrorCodeValidation):
			return err
		case errors.Is(err, domain.ErrRunInProgress):
			l.Warn().Msg("expiryrun: previous run still in progress; tick skipped")
		case ctx.Err() != nil:
		default:
			l.Error().Err(err).Msg("expiryrun: scheduled run failed; retrying next tick")
		}

		select {
		case <-ctx.Done():
			l.Info().Msg("expiryrun: scheduler stop")
			return nil
		case <-t.C:
		}
	}
}
