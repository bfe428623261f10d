package picture

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AppendKeepsArrivalOrder(t *testing.T) {
	store := NewStore()

	batches := [][]Record{
		{{Name: "a.jpg", Timestamp: "1"}, {Name: "b.jpg", Timestamp: "2"}},
		{},
		{{Name: "c.jpg", Timestamp: "3"}},
		{{Name: "d.jpg", Timestamp: "4"}, {Name: "e.jpg", Timestamp: "5"}, {Name: "f.jpg", Timestamp: "6"}},
	}

	total := 0
	for _, batch := range batches {
		store.Append(batch...)
		total += len(batch)
		assert.Equal(t, total, store.Len())
	}

	names := make([]string, 0, total)
	for _, r := range store.All() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg", "f.jpg"}, names)
}

func TestStore_NoDeduplication(t *testing.T) {
	store := NewStore()
	rec := Record{Name: "a.jpg", Timestamp: "1"}

	store.Append(rec)
	store.Append(rec)

	assert.Equal(t, 2, store.Len())
}

func TestStore_AtAndLast(t *testing.T) {
	store := NewStore()

	_, ok := store.Last()
	assert.False(t, ok)

	store.Append(Record{Name: "a.jpg", Timestamp: "1"}, Record{Name: "b.jpg", Timestamp: "2"})

	last, ok := store.Last()
	require.True(t, ok)
	assert.Equal(t, "b.jpg", last.Name)

	first, ok := store.At(0)
	require.True(t, ok)
	assert.Equal(t, "a.jpg", first.Name)

	_, ok = store.At(2)
	assert.False(t, ok)
	_, ok = store.At(-1)
	assert.False(t, ok)
}

func TestStore_AllReturnsCopy(t *testing.T) {
	store := NewStore()
	store.Append(Record{Name: "a.jpg", Timestamp: "1"})

	all := store.All()
	all[0].Name = "changed.jpg"

	first, _ := store.At(0)
	assert.Equal(t, "a.jpg", first.Name)
}

func TestStore_ConcurrentAppend(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Append(Record{Name: fmt.Sprintf("%d.jpg", i), Timestamp: fmt.Sprint(i)})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, store.Len())
}
