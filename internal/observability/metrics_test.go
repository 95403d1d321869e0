package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog/log"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("rcxctl", "GET", "/health", 200, 12*time.Millisecond)
	RecordFrame(0x21, true, time.Millisecond)
	RecordTransportError("send", -106)

	log.Info().Msg("observability/metrics: registration idempotent and recording paths executed")
}

func TestRecordCommandCounts(t *testing.T) {
	before := testutil.ToFloat64(commandsTotal.WithLabelValues("forward"))
	RecordCommand("forward")
	RecordCommand("forward")
	after := testutil.ToFloat64(commandsTotal.WithLabelValues("forward"))
	if after-before != 2 {
		t.Fatalf("unexpected command count delta: %v", after-before)
	}
}
