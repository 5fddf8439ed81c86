package rabbitmq

import (
	"testing"
	"time"
)

func TestUsageRoundTrip(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	body, err := EncodeUsage(UsageMessage{ChatID: "1", Provider: "Ollama", Model: "llama3", PromptChars: 10, DurationMS: 250, At: at})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	m, err := DecodeUsage(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.ChatID != "1" || m.Provider != "Ollama" || m.DurationMS != 250 || !m.At.Equal(at) {
		t.Fatalf("unexpected message: %+v", m)
	}
}

func TestEncodeUsage_StampsTime(t *testing.T) {
	body, err := EncodeUsage(UsageMessage{Provider: "p", Model: "m"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	m, err := DecodeUsage(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.At.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}
}

func TestDecodeUsage_Rejects(t *testing.T) {
	for _, body := range []string{`not json`, `{"provider":"p"}`, `{"model":"m"}`} {
		if _, err := DecodeUsage([]byte(body)); err == nil {
			t.Fatalf("expected error for %s", body)
		}
	}
}

func TestQueues(t *testing.T) {
	main, retry, dlq := Queues("usage")
	if main != "usage" || retry != "usage.retry" || dlq != "usage.dlq" {
		t.Fatalf("unexpected queue names: %s %s %s", main, retry, dlq)
	}
}
