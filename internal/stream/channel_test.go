package stream

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func receiveWithTimeout(t *testing.T, c *Client, timeout time.Duration) (Event, bool) {
	t.Helper()
	select {
	case ev := <-c.Events():
		return ev, true
	case <-time.After(timeout):
		return Event{}, false
	}
}

func TestClientPushQueuesEvents(t *testing.T) {
	c := NewClient("s1", "a")
	defer c.Close()

	if !c.Push("reveal", nil) {
		t.Fatal("expected push to be accepted")
	}

	ev, ok := receiveWithTimeout(t, c, 100*time.Millisecond)
	if !ok {
		t.Fatal("expected queued event")
	}
	if ev.Name != "reveal" || ev.Data != nil {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestClientPushAfterCloseFails(t *testing.T) {
	c := NewClient("s1", "a")
	c.Close()

	if c.Push("clear", nil) {
		t.Error("push after close should report failure")
	}
	if !c.IsClosed() {
		t.Error("client should be closed")
	}
}

func TestClientOnClosedFiresOnce(t *testing.T) {
	c := NewClient("s1", "a")

	var calls int32
	c.OnClosed(func() { atomic.AddInt32(&calls, 1) })

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Close()
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected callback once, got %d", got)
	}

	select {
	case <-c.Done():
	default:
		t.Error("done channel should be closed")
	}
}

func TestClientOnClosedAfterCloseFiresImmediately(t *testing.T) {
	c := NewClient("s1", "a")
	c.Close()

	fired := false
	c.OnClosed(func() { fired = true })

	if !fired {
		t.Error("callback registered after close should fire immediately")
	}
}

func TestClientOnClosedReplacesPending(t *testing.T) {
	c := NewClient("s1", "a")

	first, second := false, false
	c.OnClosed(func() { first = true })
	c.OnClosed(func() { second = true })
	c.Close()

	if first || !second {
		t.Errorf("expected only the last callback to fire, first=%v second=%v", first, second)
	}
}

func TestClientFullBufferDropsClient(t *testing.T) {
	c := newClientSize("s1", "a", 1)

	closed := make(chan struct{})
	c.OnClosed(func() { close(closed) })

	if !c.Push("set-estimate", "first") {
		t.Fatal("first push should fit the buffer")
	}
	if c.Push("set-estimate", "second") {
		t.Error("push into a full buffer should fail")
	}

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("slow client should be closed")
	}
}

func TestClientAccessors(t *testing.T) {
	c := NewClient("s1", "a")
	if c.SessionID() != "s1" || c.PlayerID() != "a" {
		t.Errorf("unexpected ids: %s %s", c.SessionID(), c.PlayerID())
	}
}

func TestClientPushNeverBlocksProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("pushes beyond capacity fail fast instead of blocking", prop.ForAll(
		func(capacity, pushes int) bool {
			c := newClientSize("s1", "a", capacity)
			defer c.Close()

			done := make(chan int, 1)
			go func() {
				accepted := 0
				for i := 0; i < pushes; i++ {
					if c.Push("set-estimate", i) {
						accepted++
					}
				}
				done <- accepted
			}()

			select {
			case accepted := <-done:
				want := pushes
				if want > capacity {
					want = capacity
				}
				return accepted == want
			case <-time.After(time.Second):
				return false
			}
		},
		gen.IntRange(1, 16),
		gen.IntRange(0, 64),
	))

	properties.TestingRun(t)
}
