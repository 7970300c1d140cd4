package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIncrementFramesReceived(t *testing.T) {
	before := testutil.ToFloat64(signalingFramesReceived.WithLabelValues(UnknownEvent))

	IncrementFramesReceived("call:incoming", true)
	IncrementFramesReceived("server:made-up-1", false)
	IncrementFramesReceived("server:made-up-2", false)

	if got := testutil.ToFloat64(signalingFramesReceived.WithLabelValues(UnknownEvent)) - before; got != 2 {
		t.Fatalf("unknown frames = %v, want 2", got)
	}

	if got := testutil.ToFloat64(signalingFramesReceived.WithLabelValues("call:incoming")); got < 1 {
		t.Fatalf("call:incoming frames = %v, want >= 1", got)
	}

	for _, event := range []string{"server:made-up-1", "server:made-up-2"} {
		if got := testutil.ToFloat64(signalingFramesReceived.WithLabelValues(event)); got != 0 {
			t.Fatalf("%s got its own series with %v", event, got)
		}
	}
}
