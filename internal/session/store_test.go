package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("story-%d", n)
	}
}

func TestCreateAndGet(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := NewStore(WithIDGenerator(sequentialIDs()), WithClock(func() time.Time { return fixed }))

	created := store.Create("mystery")
	if created.ID != "story-1" {
		t.Fatalf("Expected id story-1, got %q", created.ID)
	}
	if created.Turn != 0 {
		t.Errorf("Expected turn 0, got %d", created.Turn)
	}
	if !created.CreatedAt.Equal(fixed) {
		t.Errorf("Expected created at %v, got %v", fixed, created.CreatedAt)
	}

	got, err := store.Get(created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Theme != "mystery" || len(got.Inventory) != 0 {
		t.Errorf("Unexpected session %+v", got)
	}
}

func TestCreateSkipsDuplicateIDs(t *testing.T) {
	ids := []string{"same", "same", "other"}
	i := 0
	store := NewStore(WithIDGenerator(func() string {
		id := ids[i]
		i++
		return id
	}))

	first := store.Create("adventure")
	second := store.Create("adventure")
	if first.ID == second.ID {
		t.Fatalf("Expected distinct ids, both were %q", first.ID)
	}
	if store.Len() != 2 {
		t.Errorf("Expected 2 sessions, got %d", store.Len())
	}
}

func TestGetUnknown(t *testing.T) {
	store := NewStore()
	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if err := store.Update("missing", func(*Session) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound from update, got %v", err)
	}
}

func TestGetReturnsSnapshot(t *testing.T) {
	store := NewStore()
	created := store.Create("horror")
	if err := store.Update(created.ID, func(s *Session) error {
		s.Inventory = []string{"คบเพลิง"}
		s.History.Add("opening")
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	snap, _ := store.Get(created.ID)
	snap.Inventory[0] = "changed"
	snap.History.Add("leak")

	again, _ := store.Get(created.ID)
	if again.Inventory[0] != "คบเพลิง" {
		t.Errorf("Expected stored inventory untouched, got %v", again.Inventory)
	}
	if again.History.Len() != 1 {
		t.Errorf("Expected stored history untouched, got %v", again.History.Entries())
	}
}

func TestUpdateErrorIsReturned(t *testing.T) {
	store := NewStore()
	created := store.Create("drama")
	boom := errors.New("boom")
	if err := store.Update(created.ID, func(*Session) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
}

func TestDiscard(t *testing.T) {
	store := NewStore()
	created := store.Create("scifi")
	store.Discard(created.ID)
	if _, err := store.Get(created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected discarded session to be gone, got %v", err)
	}
}

func TestUpdateSerializesSameID(t *testing.T) {
	store := NewStore()
	created := store.Create("adventure")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Update(created.ID, func(s *Session) error {
				turn := s.Turn
				time.Sleep(time.Microsecond)
				s.Turn = turn + 1
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := store.Get(created.ID)
	if got.Turn != 50 {
		t.Fatalf("Expected 50 serialized increments, got %d", got.Turn)
	}
}

func TestUpdateDifferentIDsDoNotBlock(t *testing.T) {
	store := NewStore()
	a := store.Create("adventure")
	b := store.Create("mystery")

	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = store.Update(a.ID, func(*Session) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	done := make(chan error, 1)
	go func() {
		done <- store.Update(b.ID, func(s *Session) error {
			s.Turn = 7
			return nil
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("update b: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("update on a different id blocked")
	}
	close(release)
}
