// Package jobrunner implements the "enclosing job level" of spec.md §5:
// many functions' regions restructured concurrently, each region's
// *cfgraph.Graph owned exclusively by the goroutine restructuring it, so
// no region's pass ever touches another's graph.
//
// A RegionError (spec.md §7 — StructureError, BudgetExceeded,
// MalformedInput) is fatal only to the region that raised it: RunAll
// records it on that region's Result and keeps going. An
// InternalInvariantError is fatal to the whole run, since it signals a
// bug in the algorithm rather than a property of one region's input —
// RunAll cancels every still-running region and returns it.
package jobrunner

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cfgforge/restructure/astbuild"
	"github.com/cfgforge/restructure/cfgraph"
	"github.com/cfgforge/restructure/rerrors"
	"github.com/cfgforge/restructure/restructure"
)

// Region is one function's CFG and the entry node restructure.Run should
// start from.
type Region struct {
	Name  string
	Graph *cfgraph.Graph
	Entry cfgraph.NodeID
}

// Result is one region's outcome: exactly one of Tree and Err is set.
type Result struct {
	Region   string
	Tree     astbuild.Node
	Err      error
	Duration time.Duration
}

// RunAll restructures every region in regions concurrently, at most
// concurrency at a time (concurrency <= 0 means unbounded), and returns one
// Result per region in input order. The returned error is non-nil only
// when some region raised an InternalInvariantError; region-scoped
// failures live in that region's Result.Err instead.
func RunAll(ctx context.Context, regions []Region, cfg restructure.RestructureConfig, concurrency int) ([]Result, error) {
	results := make([]Result, len(regions))

	group, groupCtx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		group.SetLimit(concurrency)
	}

	for i, r := range regions {
		i, r := i, r
		group.Go(func() error {
			start := time.Now()
			// Namespacing each region's debug artifacts under its own
			// name, rather than a random id, is what lets httpapi's
			// GET /regions/{name}/dot/{phase} find them later.
			regionCtx := restructure.WithRunID(groupCtx, r.Name)
			tree, err := restructure.Run(regionCtx, r.Graph, r.Entry, cfg)
			results[i] = Result{
				Region:   r.Name,
				Tree:     tree,
				Err:      err,
				Duration: time.Since(start),
			}
			if _, internal := rerrors.AsInternalInvariantError(err); internal {
				return fmt.Errorf("jobrunner.RunAll: region %q: %w", r.Name, err)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
