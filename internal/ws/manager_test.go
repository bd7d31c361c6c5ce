package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domainLocker "smart-locker/internal/domain/locker"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialTestClient upgrades one client/server websocket pair against a
// throwaway test server and returns both ends.
func dialTestClient(t *testing.T, m *Manager) (*websocket.Conn, string) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	ids := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		ids <- m.Register(conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	select {
	case id := <-ids:
		return client, id
	case <-time.After(time.Second):
		t.Fatal("server never registered the connection")
		return nil, ""
	}
}

func TestBroadcastState(t *testing.T) {
	m := NewManager()
	client, _ := dialTestClient(t, m)
	require.Equal(t, 1, m.Count())

	alice := "alice"
	keys := "keys"
	m.BroadcastState([]domainLocker.State{
		{LockerID: 1, OccupantUsername: &alice, StoredItem: &keys},
		{LockerID: 2},
	})

	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	_, payload, err := client.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string               `json:"type"`
		Lockers []domainLocker.State `json:"lockers"`
	}
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "locker_state", msg.Type)
	require.Len(t, msg.Lockers, 2)
	require.NotNil(t, msg.Lockers[0].OccupantUsername)
	assert.Equal(t, "alice", *msg.Lockers[0].OccupantUsername)
	assert.Nil(t, msg.Lockers[1].OccupantUsername)
}

func TestUnregister(t *testing.T) {
	m := NewManager()
	_, id := dialTestClient(t, m)

	m.Unregister(id)
	assert.Equal(t, 0, m.Count())

	// Unregistering twice is harmless.
	m.Unregister(id)
	assert.Equal(t, 0, m.Count())
}

func TestBroadcastDropsDeadClients(t *testing.T) {
	m := NewManager()
	client, _ := dialTestClient(t, m)

	// Kill the client side, then broadcast until the write fails and the
	// manager drops the connection.
	require.NoError(t, client.Close())

	require.Eventually(t, func() bool {
		m.BroadcastState([]domainLocker.State{{LockerID: 1}})
		return m.Count() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
