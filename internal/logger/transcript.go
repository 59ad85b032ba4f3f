// Package logger records broadcast sessions as JSON-lines transcripts.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// TranscriptVersion is the format version written in every header.
const TranscriptVersion = 1

// TranscriptHeader is the first line of a transcript.
type TranscriptHeader struct {
	Version   int    `json:"version"`
	SessionID string `json:"sessionId"`
	Timestamp int64  `json:"timestamp"`
}

// TranscriptEvent is a single broadcast event in a transcript.
// Format: [time_offset, event, data]
type TranscriptEvent struct {
	TimeOffset float64
	Event      string
	Data       json.RawMessage
}

// MarshalJSON implements custom JSON marshaling for TranscriptEvent.
func (e TranscriptEvent) MarshalJSON() ([]byte, error) {
	data := e.Data
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	return json.Marshal([]interface{}{e.TimeOffset, e.Event, data})
}

// UnmarshalJSON implements custom JSON unmarshaling for TranscriptEvent.
func (e *TranscriptEvent) UnmarshalJSON(data []byte) error {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) != 3 {
		return fmt.Errorf("invalid event format: expected 3 elements, got %d", len(arr))
	}

	if err := json.Unmarshal(arr[0], &e.TimeOffset); err != nil {
		return fmt.Errorf("invalid time offset: %w", err)
	}
	if err := json.Unmarshal(arr[1], &e.Event); err != nil {
		return fmt.Errorf("invalid event name: %w", err)
	}
	if string(arr[2]) == "null" {
		e.Data = nil
	} else {
		e.Data = arr[2]
	}

	return nil
}

// TranscriptLogger writes one session's events in JSON-lines format.
type TranscriptLogger struct {
	writer    io.Writer
	file      *os.File // only set if we own the file
	startTime time.Time
	mu        sync.Mutex
}

// NewTranscriptLogger creates a new TranscriptLogger that appends to the given file path.
func NewTranscriptLogger(filePath string) (*TranscriptLogger, error) {
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript file: %w", err)
	}

	return &TranscriptLogger{
		writer:    file,
		file:      file,
		startTime: time.Now(),
	}, nil
}

// NewTranscriptLoggerWithWriter creates a new TranscriptLogger that writes to the given writer.
func NewTranscriptLoggerWithWriter(w io.Writer) *TranscriptLogger {
	return &TranscriptLogger{
		writer:    w,
		startTime: time.Now(),
	}
}

// WriteHeader writes the transcript header.
// This should be called once at the beginning of the transcript.
func (l *TranscriptLogger) WriteHeader(sessionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	header := TranscriptHeader{
		Version:   TranscriptVersion,
		SessionID: sessionID,
		Timestamp: l.startTime.Unix(),
	}

	data, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	if _, err := l.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	return nil
}

// WriteEvent writes a broadcast event. A nil payload is written as null.
func (l *TranscriptLogger) WriteEvent(event string, payload any) error {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", event, err)
		}
		raw = data
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	line, err := json.Marshal(TranscriptEvent{
		TimeOffset: time.Since(l.startTime).Seconds(),
		Event:      event,
		Data:       raw,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := l.writer.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// Close closes the transcript file.
func (l *TranscriptLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// StartTime returns the start time of the transcript.
func (l *TranscriptLogger) StartTime() time.Time {
	return l.startTime
}
