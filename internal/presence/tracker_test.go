package presence_test

import (
	"fmt"
	"sync"
	"testing"

	"lovechat/backend/internal/presence"

	"github.com/stretchr/testify/assert"
)

func TestTracker_FirstAndLastConnection(t *testing.T) {
	tr := presence.NewTracker(4)

	assert.True(t, tr.UserConnected("ann", "c1"), "first connection goes online")
	assert.False(t, tr.UserConnected("ann", "c2"), "second tab is not a transition")
	assert.Equal(t, []string{"c1", "c2"}, tr.GetConnectionsForUser("ann"))

	assert.False(t, tr.UserDisconnected("ann", "c1"))
	assert.True(t, tr.IsOnline("ann"))
	assert.True(t, tr.UserDisconnected("ann", "c2"), "last connection goes offline")

	assert.False(t, tr.IsOnline("ann"))
	assert.Nil(t, tr.GetConnectionsForUser("ann"))
}

func TestTracker_UnknownDisconnectIsNoop(t *testing.T) {
	tr := presence.NewTracker(1)

	assert.False(t, tr.UserDisconnected("ghost", "c1"))

	tr.UserConnected("ann", "c1")
	assert.False(t, tr.UserDisconnected("ann", "c-unknown"))
	assert.True(t, tr.IsOnline("ann"))

	assert.True(t, tr.UserDisconnected("ann", "c1"))
	assert.False(t, tr.UserDisconnected("ann", "c1"), "duplicate disconnect must not flip state twice")
}

func TestTracker_DuplicateConnectKeepsSingleEntry(t *testing.T) {
	tr := presence.NewTracker(2)

	tr.UserConnected("ann", "c1")
	tr.UserConnected("ann", "c1")

	assert.Equal(t, []string{"c1"}, tr.GetConnectionsForUser("ann"))
	assert.True(t, tr.UserDisconnected("ann", "c1"))
}

func TestTracker_GetOnlineUsers(t *testing.T) {
	tr := presence.NewTracker(8)
	assert.Empty(t, tr.GetOnlineUsers())

	tr.UserConnected("cat", "c3")
	tr.UserConnected("ann", "c1")
	tr.UserConnected("bob", "c2")
	tr.UserConnected("ann", "c4")

	assert.Equal(t, []string{"ann", "bob", "cat"}, tr.GetOnlineUsers())
	assert.ElementsMatch(t, []string{"c1", "c2", "c3", "c4"}, tr.GetAllConnections())
}

func TestTracker_SnapshotIsCopy(t *testing.T) {
	tr := presence.NewTracker(1)
	tr.UserConnected("ann", "c1")

	snapshot := tr.GetConnectionsForUser("ann")
	snapshot[0] = "mutated"

	assert.Equal(t, []string{"c1"}, tr.GetConnectionsForUser("ann"))
}

// TestTracker_ConcurrentConnectDisconnect checks that N connects and N
// disconnects for one user, run concurrently, leave no entry behind.
func TestTracker_ConcurrentConnectDisconnect(t *testing.T) {
	tr := presence.NewTracker(16)
	const n = 200

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("conn-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.UserConnected("ann", id)
			tr.GetOnlineUsers()
			tr.UserDisconnected("ann", id)
		}()
	}
	wg.Wait()

	assert.False(t, tr.IsOnline("ann"))
	assert.Empty(t, tr.GetOnlineUsers())
}

// TestTracker_TransitionsAreExclusive counts online/offline transitions under
// concurrency: with every connection closed, they must pair up.
func TestTracker_TransitionsAreExclusive(t *testing.T) {
	tr := presence.NewTracker(4)
	const n = 100

	var mu sync.Mutex
	online, offline := 0, 0

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("conn-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			first := tr.UserConnected("bob", id)
			last := tr.UserDisconnected("bob", id)
			mu.Lock()
			if first {
				online++
			}
			if last {
				offline++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, online, offline)
	assert.GreaterOrEqual(t, online, 1)
}

func TestNewTracker_ClampsShards(t *testing.T) {
	tr := presence.NewTracker(0)
	assert.True(t, tr.UserConnected("ann", "c1"))
}
