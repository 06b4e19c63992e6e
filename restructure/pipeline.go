// File: pipeline.go
// Role: the orchestrator: runs every pass of spec.md §5 in order against
// one region and returns its structured scope tree.
package restructure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/cfgforge/restructure/astbuild"
	"github.com/cfgforge/restructure/cfgraph"
	"github.com/cfgforge/restructure/idb"
	"github.com/cfgforge/restructure/inflate"
	"github.com/cfgforge/restructure/scopecloser"
	"github.com/cfgforge/restructure/singleexit"
	"github.com/cfgforge/restructure/untangle"
	"github.com/cfgforge/restructure/weave"
)

// Run drives one region through the full pipeline of spec.md §5 — IDB and
// single-exit enforcement first, when their own triggers are present, then
// Untangle, Weave, Inflate, and finally AST construction — and returns the
// resulting scope tree. g is mutated in place throughout; callers that
// still need the original region should Clone it first.
//
// The logger and, for tests that want one, the run id are taken from ctx
// (see WithLogger / WithRunID); a ctx with neither set still works, falling
// back to log.Default() and a freshly minted uuid.
func Run(ctx context.Context, g *cfgraph.Graph, entry cfgraph.NodeID, cfg RestructureConfig) (astbuild.Node, error) {
	runID := runIDFromContext(ctx)
	logger := LoggerFromContext(ctx).With("channel", cfg.Debug.LogChannel, "run_id", runID)

	if hasScopeCloserEdges(g) {
		logger.Debug("running idb: scope-closer edges present")
		if err := idb.Run(g); err != nil {
			return nil, fmt.Errorf("restructure.Run: idb: %w", err)
		}
		if cfg.Debug.DumpDots {
			dumpStage(logger, g, runID, "after-idb")
		}
	}

	sink, created, err := singleexit.Enforce(g, entry)
	if err != nil {
		return nil, fmt.Errorf("restructure.Run: singleexit: %w", err)
	}
	if created {
		logger.Debug("single-exit sink inserted", "sink", sink)
		if cfg.Debug.DumpDots {
			dumpStage(logger, g, runID, "after-singleexit")
		}
	}

	logger.Debug("untangle", "multiplicative_factor", cfg.Untangle.MultiplicativeFactor)
	if err := untangle.Run(g, entry, cfg.Untangle); err != nil {
		return nil, fmt.Errorf("restructure.Run: untangle: %w", err)
	}
	if cfg.Debug.DumpDots {
		dumpStage(logger, g, runID, "after-untangle")
	}

	logger.Debug("weave")
	if err := weave.Run(g, entry); err != nil {
		return nil, fmt.Errorf("restructure.Run: weave: %w", err)
	}
	if cfg.Debug.DumpDots {
		dumpStage(logger, g, runID, "after-weave")
	}

	inflateCfg := cfg.Inflate
	inflateCfg.Untangle = cfg.Untangle
	logger.Debug("inflate", "max_duplications", inflateCfg.MaxDuplications)
	if err := inflate.Run(g, entry, inflateCfg); err != nil {
		return nil, fmt.Errorf("restructure.Run: inflate: %w", err)
	}
	if cfg.Debug.DumpDots {
		dumpStage(logger, g, runID, "after-inflate")
	}

	logger.Debug("astbuild")
	tree, err := astbuild.Build(g, entry)
	if err != nil {
		return nil, fmt.Errorf("restructure.Run: astbuild: %w", err)
	}

	return tree, nil
}

// hasScopeCloserEdges reports whether any node in g still carries a
// scope-closer annotation, the IDB precondition named in spec.md §5.
func hasScopeCloserEdges(g *cfgraph.Graph) bool {
	for _, n := range g.NodeIDs() {
		if _, ok := scopecloser.Closer(g, n); ok {
			return true
		}
	}
	return false
}

// dumpStage writes the current graph state to "<runID>/<stage>.svg", named
// by run so two concurrent Run calls never clobber each other's artifacts,
// and logs the failure rather than aborting the run: a debug artifact is
// never worth failing an otherwise-successful restructuring over.
func dumpStage(logger *log.Logger, g *cfgraph.Graph, runID, stage string) {
	if err := os.MkdirAll(runID, 0o755); err != nil {
		logger.Warn("dump_dots failed", "stage", stage, "err", err)
		return
	}
	path := filepath.Join(runID, stage+".svg")
	if err := DumpDot(g, stage, path); err != nil {
		logger.Warn("dump_dots failed", "stage", stage, "err", err)
		return
	}
	logger.Debug("wrote debug dot", "stage", stage, "path", path)
}
