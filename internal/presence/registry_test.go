package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct{ id string }

func (f *fakeConn) ID() string             { return f.id }
func (f *fakeConn) Deliver(_ []byte) error { return nil }

func TestRegistry_RegisterLookup(t *testing.T) {
	r := NewRegistry()
	u := uuid.New()

	_, ok := r.Lookup(u)
	assert.False(t, ok)

	c := &fakeConn{id: "c1"}
	r.Register(u, c)

	got, ok := r.Lookup(u)
	require.True(t, ok)
	assert.Equal(t, "c1", got.ID())
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_LastConnectionWins(t *testing.T) {
	r := NewRegistry()
	u := uuid.New()

	r.Register(u, &fakeConn{id: "old"})
	r.Register(u, &fakeConn{id: "new"})

	got, ok := r.Lookup(u)
	require.True(t, ok)
	assert.Equal(t, "new", got.ID())
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry()
	u := uuid.New()

	r.Unregister(u)
	assert.Equal(t, 0, r.Count())

	r.Register(u, &fakeConn{id: "c1"})
	r.Unregister(u)

	_, ok := r.Lookup(u)
	assert.False(t, ok)
}

func TestRegistry_UnregisterIf(t *testing.T) {
	r := NewRegistry()
	u := uuid.New()
	older := &fakeConn{id: "older"}
	newer := &fakeConn{id: "newer"}

	assert.False(t, r.UnregisterIf(u, older), "absent entry")

	r.Register(u, older)
	r.Register(u, newer)

	assert.False(t, r.UnregisterIf(u, older), "superseded connection must not evict the newer one")
	got, ok := r.Lookup(u)
	require.True(t, ok)
	assert.Equal(t, "newer", got.ID())

	assert.True(t, r.UnregisterIf(u, newer))
	_, ok = r.Lookup(u)
	assert.False(t, ok)
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	users := make([]uuid.UUID, 32)
	for i := range users {
		users[i] = uuid.New()
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for n, u := range users {
				c := &fakeConn{id: fmt.Sprintf("%d-%d", worker, n)}
				r.Register(u, c)
				r.Lookup(u)
				r.UnregisterIf(u, c)
				r.Count()
			}
		}(i)
	}
	wg.Wait()

	for _, u := range users {
		r.Unregister(u)
	}
	assert.Equal(t, 0, r.Count())
}
