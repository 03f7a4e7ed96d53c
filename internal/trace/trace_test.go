package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"off", "error", "phase", "detail", "debug"} {
		l, err := ParseLevel(strings.ToUpper(name))
		be.Err(t, err, nil)
		be.Equal(t, l.String(), name)
	}
	_, err := ParseLevel("verbose")
	be.Err(t, err)
}

func TestLevelScopes(t *testing.T) {
	be.True(t, LevelPhase.ShouldEmit(ScopePass))
	be.True(t, !LevelPhase.ShouldEmit(ScopeUnit))
	be.True(t, LevelDetail.ShouldEmit(ScopeUnit))
	be.True(t, !LevelDetail.ShouldEmit(ScopeFunc))
	be.True(t, LevelDebug.ShouldEmit(ScopeFunc))
	be.True(t, !LevelError.ShouldEmit(ScopeDriver))
}

func TestStartNestsSpans(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)
	ctx := WithTracer(context.Background(), tr)

	be.Equal(t, SpanFromContext(ctx), uint64(0))
	ctx, pass := Start(ctx, ScopePass, "lower")
	be.Equal(t, SpanFromContext(ctx), pass.ID())
	unitCtx, unit := Start(ctx, ScopeUnit, "unit:app:main")
	be.Equal(t, SpanFromContext(unitCtx), unit.ID())
	fnCtx, fn := Start(unitCtx, ScopeFunc, "main")
	be.Equal(t, fn.ID(), uint64(0))
	be.Equal(t, SpanFromContext(fnCtx), unit.ID())
	unit.WithExtra("funcs", "3").End("")
	pass.End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	be.Equal(t, len(lines), 4)

	var events []jsonEvent
	for _, line := range lines {
		var ev jsonEvent
		be.Err(t, json.Unmarshal([]byte(line), &ev), nil)
		events = append(events, ev)
	}
	be.Equal(t, events[0].Kind, "begin")
	be.Equal(t, events[1].ParentID, events[0].SpanID)
	be.Equal(t, events[2].Extra["funcs"], "3")
	be.Equal(t, events[3].Detail, "ok")
	be.True(t, events[3].Seq > events[0].Seq)
}

func TestRingKeepsLastEvents(t *testing.T) {
	r := NewRingTracer(2, LevelError)
	for _, name := range []string{"a", "b", "c"} {
		r.Emit(&Event{Kind: KindPoint, Scope: ScopeUnit, Name: name})
	}
	r.Emit(&Event{Kind: KindPoint, Scope: ScopeFunc, Name: "skipped"})

	snap := r.Snapshot()
	be.Equal(t, len(snap), 2)
	be.Equal(t, snap[0].Name, "b")
	be.Equal(t, snap[1].Name, "c")

	var buf bytes.Buffer
	be.Err(t, DumpRing(NewMultiTracer(LevelError, Nop, r), &buf), nil)
	be.True(t, strings.Contains(buf.String(), "• c"))
}

func TestNewOff(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	be.Err(t, err, nil)
	be.True(t, !tr.Enabled())
	_, span := Start(WithTracer(context.Background(), tr), ScopeDriver, "build")
	be.Equal(t, span.ID(), uint64(0))
	be.Equal(t, int64(span.End("")), int64(0))
}
