package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"shadowcal/internal/model"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		conn: nil,
		send: make(chan []byte, sendBufferSize),
	}
}

func sampleMessage(derived bool) Message {
	tx := model.NewUpdateTx("acct-1", "ev-1", model.ClassEvent,
		map[string]any{"title": "Standup"})
	return FromTransaction(tx, derived)
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub)
	c2 := mockClient(hub)

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub)
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)

	hub.Broadcast(sampleMessage(true))

	// Check both clients received the message
	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "event_update" {
				t.Errorf("expected type event_update, got %s", got.Type)
			}
			if got.ObjectID != "ev-1" {
				t.Errorf("expected object ev-1, got %s", got.ObjectID)
			}
			if !got.Derived {
				t.Error("expected derived flag to survive the round trip")
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}

	hub.Unregister(c1)
	hub.Unregister(c2)
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	hub.Broadcast(sampleMessage(false))
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub)
	hub.Register(c)

	// Fill the send buffer
	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(sampleMessage(false))
	}

	// This should drop the message, not panic or block
	hub.Broadcast(sampleMessage(false))

	// Drain to verify buffer was full
	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestFromTransaction(t *testing.T) {
	tx := model.NewRemoveTx("acct-2", "ev-9", model.ClassEvent)
	msg := FromTransaction(tx, false)

	if msg.Type != "event_remove" {
		t.Errorf("expected type event_remove, got %s", msg.Type)
	}
	if msg.Kind != "remove" {
		t.Errorf("expected kind remove, got %s", msg.Kind)
	}
	if msg.Class != "event" {
		t.Errorf("expected class event, got %s", msg.Class)
	}
	if msg.Actor != "acct-2" {
		t.Errorf("expected actor acct-2, got %s", msg.Actor)
	}
	if msg.Derived {
		t.Error("expected incoming transaction to not be marked derived")
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	// Spawn goroutines that register, broadcast, and unregister concurrently
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub)
			hub.Register(c)
			hub.Broadcast(sampleMessage(true))
			// Drain any messages
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}
