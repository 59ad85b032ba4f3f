package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/planning-poker/backend/internal/model"
)

func TestRegistry_CreateIfAbsent(t *testing.T) {
	registry := NewRegistry(Config{})

	t.Run("creates a new empty session", func(t *testing.T) {
		s, created, err := registry.CreateIfAbsent("s1", "Sprint 1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !created {
			t.Error("expected session to be created")
		}
		if s.ID != "s1" || s.Name != "Sprint 1" {
			t.Errorf("unexpected session %s %s", s.ID, s.Name)
		}
		if view := s.View(); len(view.Players) != 0 {
			t.Errorf("expected no players, got %d", len(view.Players))
		}
	})

	t.Run("second start returns the existing session unchanged", func(t *testing.T) {
		first, _ := registry.Find("s1")
		s, created, err := registry.CreateIfAbsent("s1", "Renamed")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created {
			t.Error("expected existing session")
		}
		if s != first || s.Name != "Sprint 1" {
			t.Errorf("expected the original session, got name %q", s.Name)
		}
		if registry.Count() != 1 {
			t.Errorf("expected 1 session, got %d", registry.Count())
		}
	})
}

func TestRegistry_Find(t *testing.T) {
	registry := NewRegistry(Config{})

	if _, err := registry.Find("missing"); !errors.Is(err, model.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}

	registry.CreateIfAbsent("s1", "Sprint 1")
	s, err := registry.Find("s1")
	if err != nil || s.ID != "s1" {
		t.Errorf("expected s1, got %v %v", s, err)
	}
}

func TestRegistry_MaxSessions(t *testing.T) {
	registry := NewRegistry(Config{MaxSessions: 1})

	if _, _, err := registry.CreateIfAbsent("s1", "One"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := registry.CreateIfAbsent("s2", "Two"); !errors.Is(err, model.ErrSessionLimit) {
		t.Errorf("expected ErrSessionLimit, got %v", err)
	}
	if _, created, err := registry.CreateIfAbsent("s1", "One"); err != nil || created {
		t.Errorf("restarting an existing session should succeed, created=%v err=%v", created, err)
	}
	if registry.MaxSessions() != 1 {
		t.Errorf("expected max sessions 1, got %d", registry.MaxSessions())
	}
}

func TestRegistry_ConcurrentStart(t *testing.T) {
	registry := NewRegistry(Config{})

	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, _ := registry.CreateIfAbsent("s1", "Sprint 1")
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if createdCount != 1 {
		t.Errorf("expected exactly one creation, got %d", createdCount)
	}
}

func TestIdempotentStartProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	ids := gen.SliceOf(gen.IntRange(0, 5).Map(func(i int) string {
		return fmt.Sprintf("session-%d", i)
	}))

	properties.Property("starting ids never creates more sessions than distinct ids", prop.ForAll(
		func(starts []string) bool {
			registry := NewRegistry(Config{})
			distinct := make(map[string]*Session)

			for _, id := range starts {
				s, created, err := registry.CreateIfAbsent(id, "name "+id)
				if err != nil {
					return false
				}
				prev, seen := distinct[id]
				if seen == created {
					return false
				}
				if seen && prev != s {
					return false
				}
				distinct[id] = s
			}

			return registry.Count() == len(distinct)
		},
		ids,
	))

	properties.TestingRun(t)
}
