package stream

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type sseEvent struct {
	Name string
	Data string
}

// readSSE parses an event stream into a channel until the body ends.
func readSSE(resp *http.Response) <-chan sseEvent {
	out := make(chan sseEvent, 16)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(resp.Body)
		var ev sseEvent
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event:"):
				ev.Name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				ev.Data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			case line == "" && ev.Name != "":
				out <- ev
				ev = sseEvent{}
			}
		}
	}()
	return out
}

func nextSSE(t *testing.T, events <-chan sseEvent) sseEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		if !ok {
			t.Fatal("stream ended")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return sseEvent{}
}

func TestServeSSE(t *testing.T) {
	gin.SetMode(gin.TestMode)

	client := NewClient("s1", "a")
	closed := make(chan struct{})
	client.OnClosed(func() { close(closed) })

	r := gin.New()
	r.GET("/events", func(c *gin.Context) {
		ServeSSE(c, client, time.Minute)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("unexpected content type %q", ct)
	}

	events := readSSE(resp)

	client.Push("set-estimate", map[string]any{"id": "b", "estimate": 8})
	ev := nextSSE(t, events)
	if ev.Name != "set-estimate" {
		t.Errorf("expected set-estimate, got %q", ev.Name)
	}
	if !strings.Contains(ev.Data, `"estimate":8`) {
		t.Errorf("unexpected payload %q", ev.Data)
	}

	client.Push("reveal", nil)
	ev = nextSSE(t, events)
	if ev.Name != "reveal" || ev.Data != "" {
		t.Errorf("expected empty reveal event, got %+v", ev)
	}

	// Dropping the connection must close the client.
	cancel()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("client not closed after disconnect")
	}
}

func TestServeSSEEndsWhenClientCloses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	client := NewClient("s1", "a")

	r := gin.New()
	r.GET("/events", func(c *gin.Context) {
		ServeSSE(c, client, 0)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/events")
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}
	defer resp.Body.Close()

	events := readSSE(resp)
	client.Close()

	select {
	case _, ok := <-events:
		if ok {
			t.Error("expected no events after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end after client close")
	}
}
