package natsutil

import (
	"testing"

	"github.com/nats-io/nats.go"
)

func TestHeaderCarrier_SetGet(t *testing.T) {
	c := (*natsHeaderCarrier)(&nats.Msg{})
	if got := c.Get("traceparent"); got != "" {
		t.Fatalf("empty carrier must return empty, got %q", got)
	}
	c.Set("traceparent", "00-abc-def-01")
	if got := c.Get("traceparent"); got != "00-abc-def-01" {
		t.Fatalf("get after set: %q", got)
	}
	keys := c.Keys()
	if len(keys) != 1 || keys[0] != "Traceparent" {
		t.Fatalf("keys: %v", keys)
	}
}

func TestHeaderCarrier_NilHeaderKeys(t *testing.T) {
	c := (*natsHeaderCarrier)(&nats.Msg{})
	if keys := c.Keys(); keys != nil {
		t.Fatalf("expected nil keys, got %v", keys)
	}
}
