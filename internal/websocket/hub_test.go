package websocket

import (
	"testing"
	"time"
)

func receive(t *testing.T, ch <-chan []byte) ([]byte, bool) {
	t.Helper()
	select {
	case msg, ok := <-ch:
		return msg, ok
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil, false
	}
}

func TestSendToDeliversOnlyToRegisteredClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	a := NewClient(hub, nil)
	b := NewClient(hub, nil)
	if !hub.Join(a) || !hub.Join(b) {
		t.Fatal("Join failed on a running hub")
	}

	if !a.Reply([]byte("pong")) {
		t.Fatal("Reply failed on a running hub")
	}
	if msg, ok := receive(t, a.Send); !ok || string(msg) != "pong" {
		t.Fatalf("a got %q ok=%v want pong", msg, ok)
	}

	hub.BroadcastMessage([]byte("event"))
	if msg, _ := receive(t, b.Send); string(msg) != "event" {
		t.Fatalf("b got %q want event", msg)
	}
	select {
	case msg := <-b.Send:
		t.Fatalf("b received a reply meant for a: %q", msg)
	default:
	}
}

func TestReplyAfterUnregisterIsDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	c := NewClient(hub, nil)
	hub.Join(c)
	hub.Unregister <- c
	if _, ok := receive(t, c.Send); ok {
		t.Fatal("Send should be closed after unregister")
	}

	// Must not panic on the closed Send channel.
	c.Reply([]byte("late"))
	hub.BroadcastMessage([]byte("flush"))
}

func TestReplyAfterStop(t *testing.T) {
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run()
		close(stopped)
	}()

	c := NewClient(hub, nil)
	hub.Join(c)
	hub.Stop()
	<-stopped

	if _, ok := receive(t, c.Send); ok {
		t.Fatal("Send should be closed after Stop")
	}
	for i := 0; i < cap(hub.direct)+1; i++ {
		c.Reply([]byte("x"))
	}
	if hub.Join(NewClient(hub, nil)) {
		t.Fatal("Join succeeded on a stopped hub")
	}
}
