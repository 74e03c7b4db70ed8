package mq

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestKafkaHeaderCarrier(t *testing.T) {
	msg := kafka.Message{}
	carrier := kafkaHeaderCarrier{msg: &msg}

	carrier.Set("traceparent", "00-abc-def-01")
	carrier.Set("tracestate", "vendor=1")

	if got := carrier.Get("traceparent"); got != "00-abc-def-01" {
		t.Errorf("Get(traceparent) = %q", got)
	}
	if got := carrier.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q, want empty", got)
	}
	keys := carrier.Keys()
	if len(keys) != 2 || keys[0] != "traceparent" || keys[1] != "tracestate" {
		t.Errorf("Keys() = %v", keys)
	}
	if len(msg.Headers) != 2 {
		t.Errorf("headers not attached to message: %v", msg.Headers)
	}
}
