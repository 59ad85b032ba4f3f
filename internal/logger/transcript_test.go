package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/planning-poker/backend/internal/model"
)

func TestTranscriptLoggerWritesHeaderAndEvents(t *testing.T) {
	var buf bytes.Buffer
	l := NewTranscriptLoggerWithWriter(&buf)

	if err := l.WriteHeader("s1"); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}
	if err := l.WriteEvent(model.EventSetEstimate, model.Player{ID: "a", Name: "Ann", Estimate: model.Float(8)}); err != nil {
		t.Fatalf("failed to write event: %v", err)
	}
	if err := l.WriteEvent(model.EventReveal, nil); err != nil {
		t.Fatalf("failed to write event: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}

	var header TranscriptHeader
	if err := json.Unmarshal([]byte(lines[0]), &header); err != nil {
		t.Fatalf("invalid header: %v", err)
	}
	if header.Version != TranscriptVersion || header.SessionID != "s1" || header.Timestamp != l.StartTime().Unix() {
		t.Errorf("unexpected header %+v", header)
	}

	var ev TranscriptEvent
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatalf("invalid event: %v", err)
	}
	if ev.Event != model.EventSetEstimate || ev.TimeOffset < 0 {
		t.Errorf("unexpected event %+v", ev)
	}
	var p model.Player
	if err := json.Unmarshal(ev.Data, &p); err != nil || p.ID != "a" || *p.Estimate != 8 {
		t.Errorf("unexpected payload %s", ev.Data)
	}

	if err := json.Unmarshal([]byte(lines[2]), &ev); err != nil {
		t.Fatalf("invalid event: %v", err)
	}
	if ev.Event != model.EventReveal || ev.Data != nil {
		t.Errorf("expected payload-less reveal, got %+v", ev)
	}
}

func TestTranscriptEventRejectsBadShape(t *testing.T) {
	var ev TranscriptEvent
	if err := json.Unmarshal([]byte(`[1.5, "reveal"]`), &ev); err == nil {
		t.Error("expected error for two-element event")
	}
	if err := json.Unmarshal([]byte(`["x", "reveal", null]`), &ev); err == nil {
		t.Error("expected error for non-numeric offset")
	}
}

func TestTranscriptsRecord(t *testing.T) {
	dir := t.TempDir()
	transcripts, err := NewTranscripts(dir)
	if err != nil {
		t.Fatalf("failed to create transcripts: %v", err)
	}

	transcripts.Record("s1", model.EventPlayerJoined, model.Player{ID: "a", Name: "Ann"})
	transcripts.Record("s1", model.EventClear, nil)
	transcripts.Record("s2", model.EventReveal, nil)

	if err := transcripts.Close(); err != nil {
		t.Fatalf("failed to close transcripts: %v", err)
	}

	path, err := transcripts.Path("s1")
	if err != nil {
		t.Fatalf("unexpected path error: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("transcript not written: %v", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 3 {
		t.Fatalf("expected header and two events, got %d lines", len(lines))
	}
	if !strings.Contains(lines[2], `"clear"`) {
		t.Errorf("unexpected last line %s", lines[2])
	}

	if _, err := os.Stat(dir + "/s2.jsonl"); err != nil {
		t.Errorf("expected separate transcript for s2: %v", err)
	}
}

func TestTranscriptsRejectUnsafeIDs(t *testing.T) {
	transcripts, err := NewTranscripts(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create transcripts: %v", err)
	}
	defer transcripts.Close()

	for _, id := range []string{"../escape", "a/b", "", ".."} {
		if _, err := transcripts.Path(id); !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("expected %q to be rejected, got %v", id, err)
		}
	}

	// Recording to an unsafe id is logged, not fatal.
	transcripts.Record("../escape", model.EventReveal, nil)
}
