//go:build integration

package hermes

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"
)

func skipWithoutNATS(t *testing.T) string {
	t.Helper()
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set, skipping integration test")
	}
	return url
}

func TestIntegration_ConversationEvents(t *testing.T) {
	natsURL := skipWithoutNATS(t)
	ctx := context.Background()

	client, err := NewClient(ctx, natsURL, os.Getenv("NATS_TOKEN"), slog.Default())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()

	received := make(chan ConversationEvent, 1)

	err = client.Subscribe("babel.conversation.>", func(subject string, data []byte) {
		var evt ConversationEvent
		json.Unmarshal(data, &evt)
		received <- evt
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	// Give subscription time to propagate
	time.Sleep(100 * time.Millisecond)

	err = client.Publish(SubjectMessageAppended, ConversationEvent{
		EventID:   "evt-1",
		SessionID: "session-integration",
		Role:      "user",
		Count:     1,
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case evt := <-received:
		if evt.SessionID != "session-integration" || evt.Count != 1 {
			t.Errorf("unexpected event %+v", evt)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}
