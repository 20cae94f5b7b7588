package ws

import (
	"encoding/json"
	"testing"

	"todo_webapp/internal/domain"
)

func TestHubPublishOnlyToOwner(t *testing.T) {
	h := NewHub()
	a1 := &Client{UserID: 1, Send: make(chan []byte, 4), Hub: h}
	a2 := &Client{UserID: 1, Send: make(chan []byte, 4), Hub: h}
	b := &Client{UserID: 2, Send: make(chan []byte, 4), Hub: h}
	for _, c := range []*Client{a1, a2, b} {
		h.Register(c)
	}
	if h.Connections(1) != 2 {
		t.Fatalf("expected 2 connections for user 1, got %d", h.Connections(1))
	}

	h.Publish(1, domain.TaskEvent{Type: domain.EventTaskCreated, TaskID: 7})

	for _, c := range []*Client{a1, a2} {
		select {
		case msg := <-c.Send:
			var ev domain.TaskEvent
			if err := json.Unmarshal(msg, &ev); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if ev.Type != domain.EventTaskCreated || ev.TaskID != 7 {
				t.Fatalf("unexpected event %+v", ev)
			}
		default:
			t.Fatalf("expected event for owner connection")
		}
	}
	select {
	case msg := <-b.Send:
		t.Fatalf("other user must not receive events, got %s", msg)
	default:
	}
}

func TestHubUnregister(t *testing.T) {
	h := NewHub()
	c := &Client{UserID: 3, Send: make(chan []byte, 1), Hub: h}
	h.Register(c)
	h.Unregister(c)
	h.Unregister(c)

	if h.Connections(3) != 0 {
		t.Fatalf("expected no connections after unregister")
	}
	if _, ok := <-c.Send; ok {
		t.Fatalf("send channel should be closed")
	}
	// publishing to a user without connections is a no-op
	h.Publish(3, domain.TaskEvent{Type: domain.EventTaskDeleted, TaskID: 1})
}

func TestHubPublishDoesNotBlock(t *testing.T) {
	h := NewHub()
	c := &Client{UserID: 1, Send: make(chan []byte, 1), Hub: h}
	h.Register(c)
	h.Publish(1, domain.TaskEvent{Type: domain.EventTaskCreated, TaskID: 1})
	h.Publish(1, domain.TaskEvent{Type: domain.EventTaskCreated, TaskID: 2})
	if len(c.Send) != 1 {
		t.Fatalf("expected full buffer with one message")
	}
}
