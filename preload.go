package gopick

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Preload resolves keys concurrently from the scope, so singletons are built before being needed.
// It stops on the first failure, remaining keys being skipped once ctx is done.
func (s *Scope) Preload(ctx context.Context, keys ...Key) error {
	group, ctx := errgroup.WithContext(ctx)
	injector := s.Injector()

	for _, key := range keys {
		key := key // per-iteration copy (go < 1.22 loop semantics)
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := injector.Resolve(key, KindInstance); err != nil {
				return fmt.Errorf("failed to preload %s:\n\t%w", key, err)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}
	s.logger.Debug().Int("keys", len(keys)).Msg("Scope preloaded")
	return nil
}
