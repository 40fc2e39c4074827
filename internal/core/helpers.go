package core

import (
	"context"
	"fmt"
	"sync"
)

const defaultConcurrency = 15

// BulkVerify checks release publication for multiple targets in
// parallel. The result maps artifact filenames to verification
// failures; targets whose artifact is published are omitted, so an
// empty map means the release covers every target.
func BulkVerify(ctx context.Context, r *Resolver, targets []Target) map[string]error {
	return BulkVerifyWithConcurrency(ctx, r, targets, defaultConcurrency)
}

// BulkVerifyWithConcurrency verifies with a custom concurrency limit.
func BulkVerifyWithConcurrency(ctx context.Context, r *Resolver, targets []Target, concurrency int) map[string]error {
	results := make(map[string]error)
	var mu sync.Mutex
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, target := range targets {
		wg.Add(1)
		go func(t Target) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			if err := r.Verify(ctx, t); err != nil {
				mu.Lock()
				results[targetKey(t)] = err
				mu.Unlock()
			}
		}(target)
	}

	wg.Wait()
	return results
}

// targetKey names a target in bulk results: the artifact filename when
// one can be derived, the raw coordinates otherwise.
func targetKey(t Target) string {
	if name, err := BinaryFileName(t); err == nil {
		return name
	}
	return fmt.Sprintf("%s/%s/%s", t.Package, t.OS, t.Arch)
}
