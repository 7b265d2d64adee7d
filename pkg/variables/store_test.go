package variables

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SeedAndGet(t *testing.T) {
	store := New(map[string]any{"user": map[string]any{"name": "Ada"}, "output": 10})

	user, ok := store.Get("user")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"name": "Ada"}, user)

	for _, alias := range []string{"output", "result", "response", "lastOutput"} {
		value, ok := store.Get(alias)
		assert.True(t, ok, alias)
		assert.Equal(t, 10, value, alias)
	}

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestStore_RecordOutput(t *testing.T) {
	store := New(nil)

	_, ok := store.Last()
	assert.False(t, ok)

	store.RecordOutput("a", "first")
	store.RecordOutput("b", []any{1, 2})

	a, ok := store.Get("node_a")
	require.True(t, ok)
	assert.Equal(t, "first", a)

	last, ok := store.Last()
	require.True(t, ok)
	assert.Equal(t, []any{1, 2}, last)

	result, _ := store.Get("result")
	assert.Equal(t, []any{1, 2}, result)
}

func TestStore_RecordNilOutput(t *testing.T) {
	store := New(map[string]any{"output": "seed"})

	store.RecordOutput("a", nil)

	value, ok := store.Get("output")
	assert.True(t, ok)
	assert.Nil(t, value)
}

func TestStore_SetAndDelete(t *testing.T) {
	store := New(nil)

	store.Set("name", "value")
	store.Set("result", 42)

	snapshot := store.Snapshot()
	assert.Equal(t, "value", snapshot["name"])
	assert.Equal(t, 42, snapshot["output"])
	assert.Equal(t, 42, snapshot["lastOutput"])

	store.Delete("name")
	store.Delete("response")

	assert.Empty(t, store.Names())
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	store := New(map[string]any{"a": 1})

	snapshot := store.Snapshot()
	snapshot["a"] = 2

	value, _ := store.Get("a")
	assert.Equal(t, 1, value)
}

func TestStore_Names(t *testing.T) {
	store := New(map[string]any{"b": 1, "a": 2})
	store.RecordOutput("x", true)

	assert.Equal(t, []string{"a", "b", "lastOutput", "node_x", "output", "response", "result"}, store.Names())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := New(nil)

	var wg sync.WaitGroup

	for i := range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			store.RecordOutput("n", i)
			store.Snapshot()
			store.Get("output")
		}()
	}

	wg.Wait()

	_, ok := store.Last()
	assert.True(t, ok)
}
