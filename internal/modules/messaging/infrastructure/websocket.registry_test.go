package infrastructure

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(session string) *Client {
	return NewClient(nil, session, 4, nil)
}

func TestRegistryRegisterAndConnectionsFor(t *testing.T) {
	registry := NewRegistry()
	tab1 := newTestClient("s1")
	tab2 := newTestClient("s2")

	registry.Register("user-a", tab1)
	registry.Register("user-a", tab2)

	require.ElementsMatch(t, []*Client{tab1, tab2}, registry.ConnectionsFor("user-a"))
	require.Equal(t, 2, registry.Len())
	require.Equal(t, 1, registry.UserCount())
	require.True(t, registry.Online("user-a"))
	require.Empty(t, registry.ConnectionsFor("user-b"))
}

func TestRegistryRegisterIsIdempotentPerClient(t *testing.T) {
	registry := NewRegistry()
	client := newTestClient("s1")

	registry.Register("user-a", client)
	registry.Register("user-a", client)

	require.Len(t, registry.ConnectionsFor("user-a"), 1)
	require.Equal(t, 1, registry.Len())
}

func TestRegistryUnregisterRemovesEmptySets(t *testing.T) {
	registry := NewRegistry()
	tab1 := newTestClient("s1")
	tab2 := newTestClient("s2")
	registry.Register("user-a", tab1)
	registry.Register("user-a", tab2)

	registry.Unregister(tab1)
	require.ElementsMatch(t, []*Client{tab2}, registry.ConnectionsFor("user-a"))
	require.True(t, registry.Online("user-a"))

	registry.Unregister(tab2)
	require.Empty(t, registry.ConnectionsFor("user-a"))
	require.False(t, registry.Online("user-a"))
	require.Equal(t, 0, registry.UserCount())

	// Second unregister is a silent no-op.
	registry.Unregister(tab2)
	require.Equal(t, 0, registry.Len())
}

func TestRegistryUnregisterUnknownClientIsNoOp(t *testing.T) {
	registry := NewRegistry()
	registered := newTestClient("s1")
	stranger := newTestClient("s2")
	stranger.setUser("user-b")
	registry.Register("user-a", registered)

	registry.Unregister(stranger)
	registry.Unregister(nil)

	require.Len(t, registry.ConnectionsFor("user-a"), 1)
	require.Equal(t, 1, registry.Len())
}

func TestRegistryMoveClientBetweenUsers(t *testing.T) {
	registry := NewRegistry()
	client := newTestClient("s1")

	registry.Register("user-a", client)
	registry.Register("user-b", client)

	require.Empty(t, registry.ConnectionsFor("user-a"))
	require.Len(t, registry.ConnectionsFor("user-b"), 1)
	require.Equal(t, 1, registry.Len())
}

func TestRegistryPushDeliversToEveryConnection(t *testing.T) {
	registry := NewRegistry()
	tab1 := newTestClient("s1")
	tab2 := newTestClient("s2")
	other := newTestClient("s3")
	registry.Register("user-a", tab1)
	registry.Register("user-a", tab2)
	registry.Register("user-b", other)

	delivered := registry.Push("user-a", []byte(`{"type":"ping"}`))
	require.Equal(t, 2, delivered)
	require.Len(t, tab1.send, 1)
	require.Len(t, tab2.send, 1)
	require.Len(t, other.send, 0)
}

func TestRegistryPushToOfflineUserIsSilent(t *testing.T) {
	registry := NewRegistry()
	require.Equal(t, 0, registry.Push("ghost", []byte("x")))
}

func TestRegistryPushDropsSaturatedClient(t *testing.T) {
	registry := NewRegistry()
	client := NewClient(nil, "s1", 1, nil)
	registry.Register("user-a", client)

	require.Equal(t, 1, registry.Push("user-a", []byte("one")))
	// Buffer is full now; the next push must drop the client from the registry.
	require.Equal(t, 0, registry.Push("user-a", []byte("two")))
	require.Empty(t, registry.ConnectionsFor("user-a"))
	require.False(t, registry.Online("user-a"))
}

func TestRegistryPushAllReachesEveryUser(t *testing.T) {
	registry := NewRegistry()
	a := newTestClient("s1")
	b := newTestClient("s2")
	registry.Register("user-a", a)
	registry.Register("user-b", b)

	require.Equal(t, 2, registry.PushAll([]byte("broadcast")))
	require.Equal(t, []string{"user-a", "user-b"}, registry.Users())
}

func TestRegistryConcurrentRegisterUnregister(t *testing.T) {
	registry := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			client := newTestClient(fmt.Sprintf("s%d", n))
			userID := fmt.Sprintf("user-%d", n%4)
			registry.Register(userID, client)
			registry.ConnectionsFor(userID)
			registry.Unregister(client)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 0, registry.Len())
	require.Equal(t, 0, registry.UserCount())
}
