package dag

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmpowers-usgs/nshmp-sha/internal/pool"
)

func noop(ctx context.Context) error { return nil }

func TestAddNode(t *testing.T) {
	g := New()

	n, err := g.AddNode("a", noop)
	require.NoError(t, err)
	assert.Equal(t, "a", n.ID)
	assert.Equal(t, 1, g.Size())

	_, err = g.AddNode("a", noop)
	assert.ErrorContains(t, err, "duplicate node")
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("a", noop)
		g.AddNode("b", noop)

		require.NoError(t, g.AddEdge("a", "b"))
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		g.AddNode("a", noop)

		assert.ErrorContains(t, g.AddEdge("a", "a"), "self-referential")
		assert.ErrorContains(t, g.AddEdge("dne", "a"), "source node not found")
		assert.ErrorContains(t, g.AddEdge("a", "dne"), "destination node not found")
	})
}

func TestRunEmptyGraph(t *testing.T) {
	p := pool.New(1)
	defer p.Close()
	require.NoError(t, New().Run(context.Background(), p))
}

func TestRunRespectsChainOrder(t *testing.T) {
	p := pool.New(4)
	defer p.Close()

	g := New()
	var mu sync.Mutex
	var order []string
	record := func(id string) pool.Task {
		return func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, id)
			return nil
		}
	}

	// Diamond: a -> b, a -> c, b -> d, c -> d.
	for _, id := range []string{"a", "b", "c", "d"} {
		_, err := g.AddNode(id, record(id))
		require.NoError(t, err)
	}
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("a", "c"))
	require.NoError(t, g.AddEdge("b", "d"))
	require.NoError(t, g.AddEdge("c", "d"))

	require.NoError(t, g.Run(context.Background(), p))

	require.Len(t, order, 4)
	assert.Equal(t, "a", order[0])
	assert.Equal(t, "d", order[3])
}

func TestRunFailureSkipsDependents(t *testing.T) {
	p := pool.New(4)
	defer p.Close()

	g := New()
	wantErr := errors.New("stage exploded")
	var cRan, dRan bool

	g.AddNode("a", func(ctx context.Context) error { return wantErr })
	g.AddNode("b", func(ctx context.Context) error { return nil })
	g.AddNode("c", func(ctx context.Context) error { cRan = true; return nil })
	g.AddNode("d", func(ctx context.Context) error { dRan = true; return nil })
	require.NoError(t, g.AddEdge("a", "c"))
	require.NoError(t, g.AddEdge("c", "d"))

	err := g.Run(context.Background(), p)
	assert.ErrorIs(t, err, wantErr)
	assert.ErrorContains(t, err, "stage a")

	assert.False(t, cRan, "dependent of failed stage must not run")
	assert.False(t, dRan, "transitive dependent of failed stage must not run")
}

func TestRunIndependentChainsComplete(t *testing.T) {
	p := pool.New(4)
	defer p.Close()

	g := New()
	wantErr := errors.New("chain one failed")
	var otherChain []string
	var mu sync.Mutex
	record := func(id string) pool.Task {
		return func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			otherChain = append(otherChain, id)
			return nil
		}
	}

	g.AddNode("1.a", func(ctx context.Context) error { return wantErr })
	g.AddNode("1.b", noop)
	require.NoError(t, g.AddEdge("1.a", "1.b"))

	g.AddNode("2.a", record("2.a"))
	g.AddNode("2.b", record("2.b"))
	require.NoError(t, g.AddEdge("2.a", "2.b"))

	err := g.Run(context.Background(), p)
	assert.ErrorIs(t, err, wantErr)

	// The unrelated chain is not interrupted by the failure.
	assert.Equal(t, []string{"2.a", "2.b"}, otherChain)
}

func TestDetectCycles(t *testing.T) {
	p := pool.New(1)
	defer p.Close()

	g := New()
	g.AddNode("a", noop)
	g.AddNode("b", noop)
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "a"))

	assert.ErrorContains(t, g.Run(context.Background(), p), "cycle detected")
}

func TestNodeStateAfterRun(t *testing.T) {
	p := pool.New(2)
	defer p.Close()

	g := New()
	ok, _ := g.AddNode("ok", noop)
	bad, _ := g.AddNode("bad", func(ctx context.Context) error { return errors.New("nope") })
	skipped, _ := g.AddNode("skipped", noop)
	require.NoError(t, g.AddEdge("bad", "skipped"))

	require.Error(t, g.Run(context.Background(), p))

	assert.Equal(t, Done, ok.State())
	assert.Equal(t, Failed, bad.State())
	assert.Equal(t, Skipped, skipped.State())
	assert.ErrorContains(t, skipped.Err(), "skipped")
}
