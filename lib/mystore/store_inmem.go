package mystore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"
)

type InMemoryStore[T any] struct {
	sync.Mutex
	Items map[string]T
}

func NewInMemoryStore[T any](c context.Context) (*InMemoryStore[T], func(), error) {
	return &InMemoryStore[T]{
		Items: make(map[string]T),
	}, func() {}, nil
}

func (s *InMemoryStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	// Start transaction
	s.Lock()
	defer s.Unlock()

	ctx := context.WithValue(c, ctxTransactionKey{}, true)

	// Within this block everything is transactional
	return f(ctx)
}

func (s *InMemoryStore[T]) lockUnlessTransactional(c context.Context) func() {
	if c.Value(ctxTransactionKey{}) != nil {
		return func() {}
	}
	s.Lock()
	return s.Unlock
}

func (s *InMemoryStore[T]) Put(c context.Context, uid string, value T) error {
	defer s.lockUnlessTransactional(c)()

	s.Items[uid] = value

	return nil
}

func (s *InMemoryStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	defer s.lockUnlessTransactional(c)()

	result, exists := s.Items[uid]

	return result, exists, nil
}

func (s *InMemoryStore[T]) Delete(c context.Context, uid string) error {
	defer s.lockUnlessTransactional(c)()

	delete(s.Items, uid)

	return nil
}

func (s *InMemoryStore[T]) List(c context.Context) ([]T, error) {
	defer s.lockUnlessTransactional(c)()

	result := make([]T, 0, len(s.Items))
	for _, v := range s.Items {
		result = append(result, v)
	}

	return result, nil
}

// Query supports equality filters and ordering on top-level exported fields.
func (s *InMemoryStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	all, err := s.List(c)
	if err != nil {
		return nil, err
	}

	result := make([]T, 0, len(all))
	for _, item := range all {
		matches := true
		for _, f := range filters {
			if f.Compare != "=" {
				return nil, fmt.Errorf("unsupported compare operator '%s'", f.Compare)
			}
			value := reflect.Indirect(reflect.ValueOf(item)).FieldByName(f.Field)
			if !value.IsValid() || !reflect.DeepEqual(value.Interface(), f.Value) {
				matches = false
				break
			}
		}
		if matches {
			result = append(result, item)
		}
	}

	if orderByField != "" {
		sort.SliceStable(result, func(i, j int) bool {
			return less(reflect.Indirect(reflect.ValueOf(result[i])).FieldByName(orderByField),
				reflect.Indirect(reflect.ValueOf(result[j])).FieldByName(orderByField))
		})
	}

	return result, nil
}

func less(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return false
	}
	switch av := a.Interface().(type) {
	case time.Time:
		return av.Before(b.Interface().(time.Time))
	case string:
		return av < b.Interface().(string)
	case int:
		return av < b.Interface().(int)
	case int64:
		return av < b.Interface().(int64)
	default:
		return false
	}
}
