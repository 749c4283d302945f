package transferoptimization

import (
	"context"

	"lintang/transitx/pkg/concurrent"
	"lintang/transitx/pkg/datastructure"
	"lintang/transitx/pkg/engine/transfers"
)

type pathResult[T datastructure.TripSchedule] struct {
	idx       int
	transfers []ResolvedTransfer[T]
	err       error
}

// ResolvePaths resolves the transfers of many finished paths in parallel. The result is
// indexed like paths. The first error by path index is returned.
func ResolvePaths[T datastructure.TripSchedule](ctx context.Context, resolver *transfers.Resolver[T], paths [][]TransitLeg[T], workers int) ([][]ResolvedTransfer[T], error) {
	wp := concurrent.NewWorkerPool[int, pathResult[T]](workers, len(paths))
	for i := range paths {
		wp.AddJob(i)
	}
	wp.Close()

	wp.Start(func(i int) pathResult[T] {
		if err := ctx.Err(); err != nil {
			return pathResult[T]{idx: i, err: err}
		}
		res, err := ResolvePath(resolver, paths[i])
		return pathResult[T]{idx: i, transfers: res, err: err}
	})
	wp.Wait()

	out := make([][]ResolvedTransfer[T], len(paths))
	errIdx := -1
	var firstErr error
	for r := range wp.CollectResults() {
		if r.err != nil {
			if errIdx == -1 || r.idx < errIdx {
				errIdx, firstErr = r.idx, r.err
			}
			continue
		}
		out[r.idx] = r.transfers
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
