package containers

// HeapMap is a priority queue mapping a key K to a priority V (spec §6:
// `push(k,v)`, `pop()->k`, `peek()->k`, ordered by v). It is built on Heap
// over a Pair, ordered by the pair's priority rather than its key.
type heapMapPair[K, V any] struct {
	key      K
	priority V
}

type HeapMap[K, V any] struct {
	heap *Heap[heapMapPair[K, V]]
}

// NewHeapMap builds a HeapMap ordered by priorityLess(a,b); pass the
// natural order for a min-heap-map and its inverse for a max-heap-map.
func NewHeapMap[K, V any](priorityLess func(a, b V) bool) *HeapMap[K, V] {
	return &HeapMap[K, V]{
		heap: NewHeap(func(a, b heapMapPair[K, V]) bool { return priorityLess(a.priority, b.priority) }),
	}
}

func (h *HeapMap[K, V]) Size() int { return h.heap.Size() }

func (h *HeapMap[K, V]) Push(k K, v V) { h.heap.Push(heapMapPair[K, V]{key: k, priority: v}) }

func (h *HeapMap[K, V]) Pop() (K, bool) {
	var zero K
	p, ok := h.heap.Pop()
	if !ok {
		return zero, false
	}
	return p.key, true
}

func (h *HeapMap[K, V]) Peek() (K, bool) {
	var zero K
	p, ok := h.heap.Peek()
	if !ok {
		return zero, false
	}
	return p.key, true
}
