package containers

import "container/heap"

// Heap is a binary min-heap or max-heap over a caller-supplied Less, using
// the standard library's container/heap for the actual sift operations.
type Heap[T any] struct {
	items []T
	less  func(a, b T) bool
}

// NewHeap builds a heap. less(a,b) should report "a before b"; callers pass
// the natural order for a min-heap and its inverse for a max-heap.
func NewHeap[T any](less func(a, b T) bool) *Heap[T] {
	return &Heap[T]{less: less}
}

func (h *Heap[T]) Size() int { return len(h.items) }

func (h *Heap[T]) Push(v T) {
	heap.Push((*heapAdapter[T])(h), v)
}

func (h *Heap[T]) Pop() (T, bool) {
	var zero T
	if len(h.items) == 0 {
		return zero, false
	}
	return heap.Pop((*heapAdapter[T])(h)).(T), true
}

func (h *Heap[T]) Peek() (T, bool) {
	var zero T
	if len(h.items) == 0 {
		return zero, false
	}
	return h.items[0], true
}

// heapAdapter implements container/heap.Interface over a *Heap without
// exposing heap.Interface's Push/Pop(any) signature on the public type.
type heapAdapter[T any] Heap[T]

func (a *heapAdapter[T]) Len() int            { return len(a.items) }
func (a *heapAdapter[T]) Less(i, j int) bool  { return a.less(a.items[i], a.items[j]) }
func (a *heapAdapter[T]) Swap(i, j int)       { a.items[i], a.items[j] = a.items[j], a.items[i] }
func (a *heapAdapter[T]) Push(x any)          { a.items = append(a.items, x.(T)) }
func (a *heapAdapter[T]) Pop() any {
	old := a.items
	n := len(old)
	v := old[n-1]
	a.items = old[:n-1]
	return v
}
