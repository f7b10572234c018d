package dag

import (
	"context"
	"fmt"

	"github.com/pmpowers-usgs/nshmp-sha/internal/ctxlog"
	"github.com/pmpowers-usgs/nshmp-sha/internal/pool"
)

// Run executes the graph on the shared pool, blocking until every node has
// completed, failed, or been skipped. Ready nodes are dispatched as they
// unlock; a node failure prevents its unscheduled dependents from running but
// never interrupts stages already in flight. Run returns the first real
// failure, or nil if every node completed.
func (g *Graph) Run(ctx context.Context, p *pool.Pool) error {
	logger := ctxlog.FromContext(ctx)

	if err := g.detectCycles(); err != nil {
		return fmt.Errorf("invalid stage graph: %w", err)
	}
	if len(g.nodes) == 0 {
		return nil
	}

	for _, n := range g.nodes {
		n.depCount.Store(int32(len(n.deps)))
	}

	// Completions are buffered so a worker never blocks reporting back while
	// this coordinator is itself blocked submitting the next ready node.
	doneChan := make(chan *Node, len(g.nodes))

	dispatch := func(n *Node) {
		n.state.Store(int32(Running))
		run := n.Run
		node := n
		p.Submit(ctx, func(ctx context.Context) error {
			err := run(ctx)
			node.err = err
			doneChan <- node
			return err
		})
	}

	rootCount := 0
	for _, n := range g.nodes {
		if n.depCount.Load() == 0 {
			dispatch(n)
			rootCount++
		}
	}
	logger.Debug("Stage graph started.", "nodes", len(g.nodes), "roots", rootCount)

	var firstErr error
	failedID := ""
	remaining := len(g.nodes)
	for remaining > 0 {
		n := <-doneChan
		remaining--

		if n.err != nil {
			n.state.Store(int32(Failed))
			logger.Error("Stage failed.", "stage", n.ID, "error", n.err)
			if firstErr == nil {
				firstErr = n.err
				failedID = n.ID
			}
			remaining -= g.skipDependents(ctx, n)
			continue
		}

		n.state.Store(int32(Done))
		for _, dependent := range n.dependents {
			if dependent.depCount.Add(-1) == 0 && dependent.State() == Pending {
				dispatch(dependent)
			}
		}
	}

	if firstErr != nil {
		return fmt.Errorf("stage %s: %w", failedID, firstErr)
	}
	logger.Debug("Stage graph complete.")
	return nil
}

// skipDependents marks every unscheduled transitive dependent of n as skipped
// and returns how many nodes it removed from the pending count. Only Pending
// nodes are skipped; running stages are left to finish.
func (g *Graph) skipDependents(ctx context.Context, n *Node) int {
	logger := ctxlog.FromContext(ctx)
	skipped := 0
	for _, dependent := range n.dependents {
		if dependent.state.CompareAndSwap(int32(Pending), int32(Skipped)) {
			logger.Warn("Skipping stage due to upstream failure.",
				"stage", dependent.ID, "failedDependency", n.ID)
			dependent.err = fmt.Errorf("skipped: upstream stage %q failed", n.ID)
			skipped += 1 + g.skipDependents(ctx, dependent)
		}
	}
	return skipped
}
