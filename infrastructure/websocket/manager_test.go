package websocket

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/domain/ports"
)

type fakeConn struct {
	mu      sync.Mutex
	sent    []Message
	closed  bool
	failing bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("broken pipe")
	}
	c.sent = append(c.sent, v.(Message))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.sent...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func startManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go m.Run(ctx)
	return m
}

func TestManager_PublishRoutesByRoom(t *testing.T) {
	m := startManager(t)

	all, tasks, users := &fakeConn{}, &fakeConn{}, &fakeConn{}
	m.RegisterClient(all, "")
	m.RegisterClient(tasks, ports.ResourceTasks)
	m.RegisterClient(users, ports.ResourceUsers)

	event := ports.NewEvent(ports.EventTaskUpdated, ports.ResourceTasks, "t1")
	require.NoError(t, m.Publish(context.Background(), event))

	require.Eventually(t, func() bool {
		return len(all.messages()) == 1 && len(tasks.messages()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Empty(t, users.messages())
	assert.Equal(t, "task.updated", tasks.messages()[0].Type)
	assert.Equal(t, 1, m.GetRoomClients(ports.ResourceTasks))
}

func TestManager_DropsFailingClients(t *testing.T) {
	m := startManager(t)

	broken := &fakeConn{failing: true}
	m.RegisterClient(broken, "")
	m.BroadcastToRoom(ports.ResourceUsers, "user.created", nil)

	require.Eventually(t, broken.isClosed, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, m.GetTotalClients())
}

func TestManager_HandleMessage(t *testing.T) {
	m := startManager(t)
	conn := &fakeConn{}
	m.RegisterClient(conn, "")

	m.HandleMessage(conn, []byte(`{"type":"ping"}`))
	m.HandleMessage(conn, []byte(`{"type":"join_room","data":{"roomId":"tasks"}}`))
	m.HandleMessage(conn, []byte(`{"type":"join_room","data":{"roomId":"videos"}}`))
	m.HandleMessage(conn, []byte(`not json`))

	sent := conn.messages()
	require.Len(t, sent, 3)
	assert.Equal(t, "pong", sent[0].Type)
	assert.Equal(t, "room_joined", sent[1].Type)
	assert.Equal(t, "error", sent[2].Type)
	assert.Equal(t, 1, m.GetRoomClients(ports.ResourceTasks))

	assert.True(t, ValidRoom(""))
	assert.False(t, ValidRoom("videos"))
}

func TestManager_ReturnsAfterRunStops(t *testing.T) {
	m := NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(stopped)
	}()

	open := &fakeConn{}
	m.RegisterClient(open, "")
	cancel()
	<-stopped
	assert.True(t, open.isClosed())

	returned := make(chan struct{})
	late := &fakeConn{}
	go func() {
		m.UnregisterClient(open)
		m.RegisterClient(late, ports.ResourceTasks)
		m.UnregisterClient(late)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("client registration blocked after Run returned")
	}
	assert.True(t, late.isClosed())
	assert.Equal(t, 0, m.GetTotalClients())
}
