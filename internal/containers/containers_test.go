package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayPushPop(t *testing.T) {
	a := NewArray[int](1, 2, 3)
	assert.Equal(t, 3, a.Length())
	a.Push(4)
	v, ok := a.Pop()
	require.True(t, ok)
	assert.Equal(t, 4, v)
	assert.Equal(t, 3, a.Length())
}

func TestMapPreservesInsertionOrder(t *testing.T) {
	m := NewMap[string, int]()
	m.Set("b", 2)
	m.Set("a", 1)
	m.Set("b", 20)
	assert.Equal(t, []string{"b", "a"}, m.Keys())
	assert.Equal(t, []int{20, 1}, m.Values())
	ok := m.Delete("a")
	assert.True(t, ok)
	assert.Equal(t, 1, m.Size())
}

func TestSetUniqueness(t *testing.T) {
	s := NewSet[int]()
	s.Add(1)
	s.Add(2)
	s.Add(1)
	assert.Equal(t, 2, s.Size())
	assert.True(t, s.Has(2))
	assert.True(t, s.Delete(2))
	assert.False(t, s.Has(2))
}

func TestMinHeapOrdering(t *testing.T) {
	h := NewHeap(func(a, b int) bool { return a < b })
	for _, v := range []int{5, 1, 9, 3} {
		h.Push(v)
	}
	var popped []int
	for h.Size() > 0 {
		v, _ := h.Pop()
		popped = append(popped, v)
	}
	assert.Equal(t, []int{1, 3, 5, 9}, popped)
}

func TestHeapMapPopsKeyWithMinPriority(t *testing.T) {
	hm := NewHeapMap[string, int](func(a, b int) bool { return a < b })
	hm.Push("five", 5)
	hm.Push("one", 1)
	hm.Push("three", 3)
	k, ok := hm.Pop()
	require.True(t, ok)
	assert.Equal(t, "one", k)
}

func TestBinaryTreeTraversals(t *testing.T) {
	less := func(a, b int) bool { return a < b }
	bt := NewBinaryTree(less)
	for _, v := range []int{5, 3, 8, 1, 4} {
		bt.Insert(v)
	}
	assert.True(t, bt.Search(4))
	assert.False(t, bt.Search(100))
	assert.Equal(t, []int{1, 3, 4, 5, 8}, bt.InOrder())
}

func TestAVLTreeStaysBalanced(t *testing.T) {
	less := func(a, b int) bool { return a < b }
	avl := NewAVLTree(less)
	for i := 1; i <= 7; i++ {
		avl.Insert(i)
	}
	// A balanced 7-node tree has height 3, unlike the degenerate unbalanced
	// insertion order this would produce in a plain BinaryTree.
	assert.Equal(t, 3, avl.GetHeight())
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, avl.InOrder())
}

func TestGraphUndirectedEdgesAreSymmetric(t *testing.T) {
	g := NewGraph[string](false)
	g.AddEdge("a", "b", 1)
	assert.True(t, g.HasEdge("a", "b"))
	assert.True(t, g.HasEdge("b", "a"))
	assert.Len(t, g.GetEdges(), 1)
}

func TestGraphDirectedEdgesAreOneWay(t *testing.T) {
	g := NewGraph[string](true)
	g.AddEdge("a", "b", 2.5)
	assert.True(t, g.HasEdge("a", "b"))
	assert.False(t, g.HasEdge("b", "a"))
	neighbors := g.GetNeighbors("a")
	require.Len(t, neighbors, 1)
	assert.Equal(t, 2.5, neighbors[0].Weight)
}

func TestLazyRangeToArray(t *testing.T) {
	end := 5
	r := NewLazyRange(1, &end, false)
	vals, ok := r.ToArray()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3, 4}, vals)

	inclusive := NewLazyRange(1, &end, true)
	vals, ok = inclusive.ToArray()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, vals)
}

func TestLazyRangeUnboundedGenerator(t *testing.T) {
	r := NewLazyRange(0, nil, false)
	assert.True(t, r.IsInfinite())
	next := r.Generate()
	for i := 0; i < 5; i++ {
		v, ok := next()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}
