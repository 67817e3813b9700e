package school

import (
	"context"
	"sync"
)

// Entity is a record stored in a Collection.
type Entity[T any] interface {
	OwnerID() string
	Key() string
	WithID(id string) T
}

// Collection is an ordered in-memory table of one record type. All resource
// data is mock data and lives only as long as the process.
type Collection[T Entity[T]] struct {
	mu    sync.RWMutex
	items []T
}

// NewCollection seeds a collection with items in order.
func NewCollection[T Entity[T]](items ...T) *Collection[T] {
	return &Collection[T]{items: append([]T(nil), items...)}
}

// List returns a copy of all items in insertion order.
func (c *Collection[T]) List(ctx context.Context) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

// Get fetches an item by ID.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.Key() == id {
			return item, nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

// Insert appends an item.
func (c *Collection[T]) Insert(ctx context.Context, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
}

// Replace overwrites the item sharing item's ID.
func (c *Collection[T]) Replace(ctx context.Context, item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].Key() == item.Key() {
			c.items[i] = item
			return nil
		}
	}
	return ErrNotFound
}

// Delete removes an item by ID, keeping the order of the rest.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].Key() == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Repository groups the dashboard collections.
type Repository struct {
	Attendance  *Collection[AttendanceEntry]
	Results     *Collection[ExamResult]
	LessonPlans *Collection[LessonPlan]
	Recordings  *Collection[Recording]
	Contacts    *Collection[Contact]
	Events      *Collection[Event]
}

// NewRepository returns an empty repository.
func NewRepository() *Repository {
	return &Repository{
		Attendance:  NewCollection[AttendanceEntry](),
		Results:     NewCollection[ExamResult](),
		LessonPlans: NewCollection[LessonPlan](),
		Recordings:  NewCollection[Recording](),
		Contacts:    NewCollection[Contact](),
		Events:      NewCollection[Event](),
	}
}
