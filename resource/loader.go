package resource

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"
)

// Loader reads and decodes one resource's bytes, returning the terminal
// LoadDesc to merge and the decoded payload to store. Loaders run on pool
// workers and must not block on anything but I/O; they receive a context
// the manager cancels at shutdown.
type Loader interface {
	Load(ctx context.Context, uniqueID string) (LoadDesc, any, error)
}

// LoaderFunc adapts a plain function to Loader.
type LoaderFunc func(ctx context.Context, uniqueID string) (LoadDesc, any, error)

func (f LoaderFunc) Load(ctx context.Context, uniqueID string) (LoadDesc, any, error) {
	return f(ctx, uniqueID)
}

// runLoaderWithRetry retries transient loader failures with exponential
// backoff, but never retries ErrAssetNotFound: a missing asset is not
// going to appear on the next attempt, and immediately surfacing it lets
// the resource settle into LoadedResourceMissing instead of burning pool
// time.
func runLoaderWithRetry(ctx context.Context, loader Loader, uniqueID string) (LoadDesc, any, error) {
	var desc LoadDesc
	var payload any

	bo := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	operation := func() error {
		d, p, err := loader.Load(ctx, uniqueID)
		if err != nil {
			if errors.Is(err, ErrAssetNotFound) {
				return backoff.Permanent(err)
			}
			return err
		}
		desc, payload = d, p
		return nil
	}

	if err := backoff.Retry(operation, bo); err != nil {
		return LoadDesc{}, nil, err
	}
	return desc, payload, nil
}
