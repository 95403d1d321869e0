package encoder

import (
	"errors"
	"testing"

	"github.com/danmuck/rcxctl/internal/command"
	"github.com/danmuck/rcxctl/internal/testutil/testlog"
	"github.com/danmuck/rcxctl/internal/transport"
	"github.com/danmuck/rcxctl/internal/transport/stub"
)

type countingReporter struct {
	codes []command.Code
}

func (r *countingReporter) Unrecognized(code command.Code) {
	r.codes = append(r.codes, code)
}

func newStubEncoder(t *testing.T) (*Encoder, *stub.Driver, *countingReporter) {
	t.Helper()
	d := stub.New()
	ch, err := transport.Open(d)
	if err != nil {
		t.Fatalf("open stub: %v", err)
	}
	rep := &countingReporter{}
	return New(ch, rep), d, rep
}

func motorCall(sel byte) stub.Call {
	return stub.Call{Len: 2, B0: 0x21, B1: sel, B2: 0}
}

func TestEncodeCommandTable(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		code command.Code
		want []stub.Call
	}{
		{command.Stop, []stub.Call{motorCall(0x04), motorCall(0x24)}},
		{command.Forward, []stub.Call{motorCall(0x08), motorCall(0x28)}},
		{command.Backward, []stub.Call{motorCall(0x00), motorCall(0x20)}},
		{command.Left, []stub.Call{motorCall(0x04), motorCall(0x28)}},
		{command.Right, []stub.Call{motorCall(0x08), motorCall(0x24)}},
		{command.Alive, []stub.Call{{Len: 1, B0: 0x10}}},
	}
	for _, tc := range cases {
		enc, d, rep := newStubEncoder(t)
		if err := enc.Encode(tc.code); err != nil {
			t.Fatalf("%s: encode: %v", tc.code, err)
		}
		got := d.Calls()
		if len(got) != len(tc.want) {
			t.Fatalf("%s: unexpected call count %d: %+v", tc.code, len(got), got)
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: call %d got=%+v want=%+v", tc.code, i, got[i], tc.want[i])
			}
		}
		if len(rep.codes) != 0 {
			t.Fatalf("%s: unexpected diagnostic %v", tc.code, rep.codes)
		}
	}
}

func TestEncodeAliveSendsSingleFrame(t *testing.T) {
	testlog.Start(t)
	enc, d, _ := newStubEncoder(t)
	if err := enc.Encode(command.Forward); err != nil {
		t.Fatalf("encode forward: %v", err)
	}
	d.Reset()
	if err := enc.Encode(command.Alive); err != nil {
		t.Fatalf("encode alive: %v", err)
	}
	calls := d.Calls()
	if len(calls) != 1 {
		t.Fatalf("alive must send exactly one frame, got %+v", calls)
	}
	if calls[0] != (stub.Call{Len: 1, B0: 0x10, B1: 0, B2: 0}) {
		t.Fatalf("stale selector leaked into alive frame: %+v", calls[0])
	}
}

func TestEncodeUnrecognizedSendsStopAndReportsOnce(t *testing.T) {
	testlog.Start(t)
	stop := []stub.Call{motorCall(0x04), motorCall(0x24)}
	for v := 0; v < 256; v++ {
		code := command.Code(v)
		if code.Recognized() {
			continue
		}
		enc, d, rep := newStubEncoder(t)
		if err := enc.Encode(code); err != nil {
			t.Fatalf("%s: encode: %v", code, err)
		}
		got := d.Calls()
		if len(got) != 2 || got[0] != stop[0] || got[1] != stop[1] {
			t.Fatalf("%s: expected stop sequence, got %+v", code, got)
		}
		if len(rep.codes) != 1 || rep.codes[0] != code {
			t.Fatalf("%s: expected exactly one diagnostic, got %v", code, rep.codes)
		}
	}
}

func TestEncodeForwardThenStopScenario(t *testing.T) {
	testlog.Start(t)
	enc, d, _ := newStubEncoder(t)
	for _, b := range []byte{0x21, 0x24} {
		if err := enc.Encode(command.Code(b)); err != nil {
			t.Fatalf("encode 0x%02x: %v", b, err)
		}
	}
	want := []stub.Call{motorCall(0x08), motorCall(0x28), motorCall(0x04), motorCall(0x24)}
	got := d.Calls()
	if len(got) != len(want) {
		t.Fatalf("unexpected calls: %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d got=%+v want=%+v", i, got[i], want[i])
		}
	}
}

func TestEncodeTransportFailureIsReturnedNotRetried(t *testing.T) {
	testlog.Start(t)
	enc, d, _ := newStubEncoder(t)
	d.QueueSendStatus(transport.StatusDeviceError)

	err := enc.Encode(command.Forward)
	var terr *transport.Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected *transport.Error, got %v", err)
	}
	if terr.Frame.Selector() != 0x08 {
		t.Fatalf("expected first frame to fail, got %s", terr.Frame)
	}
	if d.SendCount() != 2 {
		t.Fatalf("expected both frames attempted once each, got %d sends", d.SendCount())
	}
}

func TestPlanFrame2DiffersOnlyInSelector(t *testing.T) {
	for _, code := range command.All() {
		plan := Plan(code)
		if code == command.Alive {
			if len(plan) != 1 || plan[0].Len != 1 {
				t.Fatalf("unexpected alive plan: %v", plan)
			}
			continue
		}
		if len(plan) != 2 {
			t.Fatalf("%s: unexpected plan length %d", code, len(plan))
		}
		a, b := plan[0], plan[1]
		if a.Len != 2 || b.Len != 2 || a.Bytes[0] != b.Bytes[0] || a.Bytes[2] != 0 || b.Bytes[2] != 0 {
			t.Fatalf("%s: unexpected frames %s %s", code, a, b)
		}
		if a.Selector()&0x20 != 0 || b.Selector()&0x20 == 0 {
			t.Fatalf("%s: expected left then right motor: %s %s", code, a, b)
		}
	}
}

func TestNewDefaultsToLogReporter(t *testing.T) {
	testlog.Start(t)
	d := stub.New()
	ch, _ := transport.Open(d)
	enc := New(ch, nil)
	if _, ok := enc.reporter.(LogReporter); !ok {
		t.Fatalf("expected LogReporter default, got %T", enc.reporter)
	}
	if err := enc.Encode(command.Code(0x7f)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if d.SendCount() != 2 {
		t.Fatalf("unexpected send count: %d", d.SendCount())
	}
}
