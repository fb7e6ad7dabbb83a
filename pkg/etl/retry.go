// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package etl

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	retryBaseDelay = 100 * time.Millisecond
	retryMaxDelay  = 5 * time.Second
	retryMaxTries  = 5
)

// retry wraps an external call with capped exponential backoff. Each call
// site gets an independent policy instance. When retries are exhausted the
// last error is returned and the pipeline's turn is aborted.
func (service *Service) retry(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = service.retryBase
	policy.MaxInterval = retryMaxDelay
	policy.MaxElapsedTime = 0

	return backoff.RetryNotify(op,
		backoff.WithContext(backoff.WithMaxRetries(policy, service.retryTries), ctx),
		func(err error, wait time.Duration) {
			service.log.Warn("transient failure, backing off",
				zap.Duration("wait", wait), zap.Error(err))
		})
}
