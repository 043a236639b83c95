package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(topics ...string) *Client {
	return &Client{
		ID:     "test-client",
		Topics: topics,
		Send:   make(chan []byte, 8),
	}
}

func newTestHub() *Hub {
	return NewHub(zerolog.Nop())
}

func TestRegisterAndBroadcast(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(TopicAppointments)
	hub.Register(client)

	if hub.ClientCount() != 1 {
		t.Fatalf("ClientCount = %d, want 1", hub.ClientCount())
	}
	if hub.TopicCount(TopicAppointments) != 1 {
		t.Fatalf("TopicCount(appointments) = %d, want 1", hub.TopicCount(TopicAppointments))
	}

	hub.Broadcast(TopicAppointments, Event{
		Type:      "appointment.created",
		Topic:     TopicAppointments,
		EntityID:  "appt-1",
		Timestamp: time.Now(),
	})

	select {
	case data := <-client.Send:
		var got Event
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal broadcast: %v", err)
		}
		if got.Type != "appointment.created" || got.EntityID != "appt-1" {
			t.Errorf("event = %+v", got)
		}
	default:
		t.Fatal("client received nothing")
	}
}

func TestBroadcast_OnlyMatchingTopic(t *testing.T) {
	hub := newTestHub()
	apptClient := newTestClient(TopicAppointments)
	doctorClient := newTestClient(TopicDoctors)
	hub.Register(apptClient)
	hub.Register(doctorClient)

	hub.Broadcast(TopicDoctors, Event{Type: "doctor.updated", Topic: TopicDoctors})

	if len(apptClient.Send) != 0 {
		t.Error("appointments subscriber should not receive doctor events")
	}
	if len(doctorClient.Send) != 1 {
		t.Error("doctors subscriber should receive the event")
	}
}

func TestUnregister(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(TopicAppointments)
	hub.Register(client)
	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount = %d, want 0", hub.ClientCount())
	}
	if hub.TopicCount(TopicAppointments) != 0 {
		t.Errorf("TopicCount = %d, want 0", hub.TopicCount(TopicAppointments))
	}

	// Send channel must be closed after unregister.
	if _, open := <-client.Send; open {
		t.Error("Send channel should be closed")
	}

	// Double unregister must be a no-op.
	hub.Unregister(client)
}

func TestSubscribeUnsubscribe(t *testing.T) {
	hub := newTestHub()
	client := newTestClient()
	hub.Register(client)

	hub.ProcessMessage(client, ClientMessage{Action: "subscribe", Topics: []string{TopicDoctors}})
	if hub.TopicCount(TopicDoctors) != 1 {
		t.Fatal("subscribe did not take effect")
	}

	hub.ProcessMessage(client, ClientMessage{Action: "unsubscribe", Topics: []string{TopicDoctors}})
	if hub.TopicCount(TopicDoctors) != 0 {
		t.Fatal("unsubscribe did not take effect")
	}
	if len(client.Topics) != 0 {
		t.Errorf("client.Topics = %v, want empty", client.Topics)
	}
}

func TestBroadcast_SkipsFullBuffer(t *testing.T) {
	hub := newTestHub()
	client := &Client{ID: "slow", Topics: []string{TopicAppointments}, Send: make(chan []byte)}
	hub.Register(client)

	// Unbuffered channel with no reader: broadcast must not block.
	done := make(chan struct{})
	go func() {
		hub.Broadcast(TopicAppointments, Event{Type: "appointment.created", Topic: TopicAppointments})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a slow client")
	}
}

func TestPublish(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(TopicAppointments)
	hub.Register(client)

	err := hub.Publish(context.Background(), Event{
		Type:  "appointment.status_changed",
		Topic: TopicAppointments,
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(client.Send) != 1 {
		t.Error("subscriber should have received the published event")
	}
}
