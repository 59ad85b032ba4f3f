package logger

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// ErrInvalidSessionID is returned when a session id cannot be used as a file name.
var ErrInvalidSessionID = errors.New("session id cannot be used as a transcript name")

var safeID = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Transcripts keeps one TranscriptLogger per session under a directory.
// It satisfies hub.Recorder.
type Transcripts struct {
	dir string

	mu      sync.Mutex
	loggers map[string]*TranscriptLogger
}

// NewTranscripts creates the directory if needed.
func NewTranscripts(dir string) (*Transcripts, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}
	return &Transcripts{
		dir:     dir,
		loggers: make(map[string]*TranscriptLogger),
	}, nil
}

// Path returns the transcript file for a session.
func (t *Transcripts) Path(sessionID string) (string, error) {
	if !safeID.MatchString(sessionID) || sessionID == "." || sessionID == ".." {
		return "", ErrInvalidSessionID
	}
	return filepath.Join(t.dir, sessionID+".jsonl"), nil
}

// Record appends an event to the session's transcript. Failures are logged
// and otherwise ignored.
func (t *Transcripts) Record(sessionID, event string, data any) {
	l, err := t.logger(sessionID)
	if err != nil {
		log.Printf("Transcript unavailable (session=%s): %v", sessionID, err)
		return
	}
	if err := l.WriteEvent(event, data); err != nil {
		log.Printf("Failed to record %s (session=%s): %v", event, sessionID, err)
	}
}

func (t *Transcripts) logger(sessionID string) (*TranscriptLogger, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if l, ok := t.loggers[sessionID]; ok {
		return l, nil
	}

	path, err := t.Path(sessionID)
	if err != nil {
		return nil, err
	}
	l, err := NewTranscriptLogger(path)
	if err != nil {
		return nil, err
	}
	if err := l.WriteHeader(sessionID); err != nil {
		l.Close()
		return nil, err
	}
	t.loggers[sessionID] = l
	return l, nil
}

// Close closes every open transcript.
func (t *Transcripts) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var firstErr error
	for id, l := range t.loggers {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(t.loggers, id)
	}
	return firstErr
}
