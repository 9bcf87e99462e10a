package gpsclient

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubscribeReplaysDisconnectedByDefault(t *testing.T) {
	c := New("localhost", "2947", 0, nil)

	var got []Message
	c.Subscribe(func(msg Message) { got = append(got, msg) })

	require.Len(t, got, 1)
	require.Equal(t, Disconnected, got[0].Type)
}

func TestSubscribeReplaysConnectedAfterBroadcast(t *testing.T) {
	c := New("localhost", "2947", 0, nil)
	c.broadcast(Message{Type: Connected})

	var got []Message
	c.Subscribe(func(msg Message) { got = append(got, msg) })

	require.Len(t, got, 1)
	require.Equal(t, Connected, got[0].Type)
}

func TestBroadcastFixDoesNotOverwriteLastState(t *testing.T) {
	c := New("localhost", "2947", 0, nil)
	c.broadcast(Message{Type: Connected})
	c.broadcast(Message{Type: Fix, Fix: &FixData{Mode: 3}})

	var got []Message
	c.Subscribe(func(msg Message) { got = append(got, msg) })

	require.Len(t, got, 1)
	require.Equal(t, Connected, got[0].Type)
}

func TestUnregisterStopsFurtherDelivery(t *testing.T) {
	c := New("localhost", "2947", 0, nil)

	count := 0
	unsub := c.Subscribe(func(msg Message) { count++ })
	require.Equal(t, 1, count)

	unsub()
	c.broadcast(Message{Type: Fix, Fix: &FixData{Mode: 3}})
	require.Equal(t, 1, count)
}

func TestDisconnectBroadcastsDisconnected(t *testing.T) {
	c := New("localhost", "2947", 0, nil)
	c.connected = true

	var got []Message
	c.Subscribe(func(msg Message) { got = append(got, msg) })
	c.Disconnect()

	require.Len(t, got, 2)
	require.Equal(t, Disconnected, got[1].Type)
	require.False(t, c.IsConnected())
}
