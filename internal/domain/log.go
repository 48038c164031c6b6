package domain

// BoundedLog is an append-only sequence holding at most capacity items.
// Appending to a full log evicts the oldest item.
type BoundedLog[T any] struct {
	items    []T
	capacity int
}

func NewBoundedLog[T any](capacity int) *BoundedLog[T] {
	return &BoundedLog[T]{
		items:    make([]T, 0, capacity),
		capacity: capacity,
	}
}

// Append adds item and returns how many items were evicted.
func (l *BoundedLog[T]) Append(item T) int {
	if l.capacity <= 0 {
		return 1
	}

	if len(l.items) < l.capacity {
		l.items = append(l.items, item)
		return 0
	}

	copy(l.items, l.items[1:])
	l.items[len(l.items)-1] = item
	return 1
}

func (l *BoundedLog[T]) Len() int {
	return len(l.items)
}

func (l *BoundedLog[T]) Cap() int {
	return l.capacity
}

// Items returns a copy of the log, oldest first.
func (l *BoundedLog[T]) Items() []T {
	return l.Last(len(l.items))
}

// Last returns a copy of the newest n items, oldest first.
func (l *BoundedLog[T]) Last(n int) []T {
	if n > len(l.items) {
		n = len(l.items)
	}
	if n < 0 {
		n = 0
	}

	out := make([]T, n)
	copy(out, l.items[len(l.items)-n:])
	return out
}
