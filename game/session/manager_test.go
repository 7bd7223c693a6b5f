package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/landlord/game/engine"
)

func newTestGame(t *testing.T, id string) *engine.Game {
	t.Helper()
	eng, err := engine.NewEngine(engine.DefaultRules())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	game, err := eng.NewGame(engine.NewGameParams{
		ID:          id,
		CreatorID:   "u1",
		CreatorName: "Alice",
		MaxPlayers:  4,
	})
	if err != nil {
		t.Fatalf("Failed to create game: %v", err)
	}
	return game
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()

	t.Run("create session", func(t *testing.T) {
		session, err := manager.Create(newTestGame(t, "test-session"))
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-session" {
			t.Errorf("Expected session ID 'test-session', got '%s'", session.ID)
		}
		if session.Game == nil {
			t.Error("Expected game to be set")
		}
		if session.CreatedAt.IsZero() || session.LastAccessedAt.IsZero() {
			t.Error("Expected timestamps to be set")
		}
	})

	t.Run("duplicate session ID", func(t *testing.T) {
		_, err := manager.Create(newTestGame(t, "test-session"))
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		_, err := manager.Create(newTestGame(t, "TEST-SESSION"))
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists for case variant, got %v", err)
		}
	})

	invalid := []string{"../escape", "a/b", `a\b`, "a:b"}
	for _, id := range invalid {
		t.Run("invalid id "+id, func(t *testing.T) {
			_, err := manager.Create(newTestGame(t, id))
			if err != ErrInvalidSessionID {
				t.Errorf("Expected ErrInvalidSessionID, got %v", err)
			}
		})
	}

	t.Run("nil game", func(t *testing.T) {
		if _, err := manager.Create(nil); err != ErrInvalidSessionID {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, _ := manager.Create(newTestGame(t, "get-test"))

	t.Run("get existing session", func(t *testing.T) {
		session, err := manager.Get("get-test")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if session != created {
			t.Error("Expected the stored session")
		}
	})

	t.Run("case-insensitive get", func(t *testing.T) {
		session, err := manager.Get("GET-TEST")
		if err != nil {
			t.Fatalf("Failed to get session with different case: %v", err)
		}
		if session != created {
			t.Errorf("Expected same session regardless of case")
		}
	})

	t.Run("get non-existent session", func(t *testing.T) {
		_, err := manager.Get("non-existent")
		if !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("get invalid id", func(t *testing.T) {
		_, err := manager.Get("../get-test")
		if !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	manager.Create(newTestGame(t, "delete-test"))

	if err := manager.Delete("DELETE-TEST"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := manager.Get("delete-test"); err != ErrSessionNotFound {
		t.Errorf("Expected session to be gone, got %v", err)
	}
	if err := manager.Delete("delete-test"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestManager_DeleteFromMemory(t *testing.T) {
	manager := NewManager()
	manager.Create(newTestGame(t, "mem"))

	if err := manager.DeleteFromMemory("mem"); err != nil {
		t.Fatalf("DeleteFromMemory failed: %v", err)
	}
	if manager.Count() != 0 {
		t.Errorf("Expected 0 sessions, got %d", manager.Count())
	}
	if err := manager.DeleteFromMemory("mem"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	if len(manager.List()) != 0 {
		t.Error("Expected empty list for a new manager")
	}

	for i := 0; i < 3; i++ {
		manager.Create(newTestGame(t, fmt.Sprintf("list-%d", i)))
	}

	sessions := manager.List()
	if len(sessions) != 3 {
		t.Fatalf("Expected 3 sessions, got %d", len(sessions))
	}
	seen := map[string]bool{}
	for _, s := range sessions {
		seen[s.ID] = true
	}
	for i := 0; i < 3; i++ {
		if !seen[fmt.Sprintf("list-%d", i)] {
			t.Errorf("Missing session list-%d", i)
		}
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	manager := NewManager(WithClock(clock.Now))

	manager.Create(newTestGame(t, "old"))
	busy, _ := manager.Create(newTestGame(t, "busy"))
	clock.Advance(2 * time.Hour)
	manager.Create(newTestGame(t, "fresh"))

	// an in-flight action holds the session lock
	busy.Lock()
	removed := manager.CleanupExpiredSessions(time.Hour)
	busy.Unlock()

	if removed != 1 {
		t.Errorf("Expected 1 session removed, got %d", removed)
	}
	if _, err := manager.Get("old"); err != ErrSessionNotFound {
		t.Errorf("Expected old session to be evicted, got %v", err)
	}
	if _, err := manager.Get("busy"); err != nil {
		t.Errorf("Expected busy session to survive, got %v", err)
	}
	if _, err := manager.Get("fresh"); err != nil {
		t.Errorf("Expected fresh session to survive, got %v", err)
	}

	if removed := manager.CleanupExpiredSessions(time.Hour); removed != 1 {
		t.Errorf("Expected busy session removed once idle, got %d", removed)
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	manager := NewManager(WithClock(clock.Now))
	session, _ := manager.Create(newTestGame(t, "touch"))

	clock.Advance(time.Minute)
	session.Lock()
	err := manager.UpdateLastAccessed("touch")
	session.Unlock()
	if err != nil {
		t.Fatalf("UpdateLastAccessed failed: %v", err)
	}
	if !session.LastAccessedAt.Equal(clock.Now()) {
		t.Errorf("Expected last accessed %v, got %v", clock.Now(), session.LastAccessedAt)
	}
	if !session.CreatedAt.Before(session.LastAccessedAt) {
		t.Error("CreatedAt should not move")
	}

	if err := manager.UpdateLastAccessed("missing"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_SaveWithoutPersistence(t *testing.T) {
	manager := NewManager()
	manager.Create(newTestGame(t, "nosave"))

	if err := manager.Save("nosave"); err != nil {
		t.Errorf("Save without persistence should be a no-op, got %v", err)
	}
	if err := manager.SaveAllSessions(); err != nil {
		t.Errorf("SaveAllSessions without persistence should be a no-op, got %v", err)
	}
	if err := manager.LoadPersistedSessions(); err != nil {
		t.Errorf("LoadPersistedSessions without persistence should be a no-op, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	var wg sync.WaitGroup
	errs := make(chan error, 20)

	games := make([]*engine.Game, 20)
	for i := range games {
		games[i] = newTestGame(t, fmt.Sprintf("concurrent-%d", i))
	}

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := games[i].ID
			if _, err := manager.Create(games[i]); err != nil {
				errs <- err
				return
			}
			session, err := manager.Get(id)
			if err != nil {
				errs <- err
				return
			}
			session.Lock()
			err = manager.UpdateLastAccessed(id)
			session.Unlock()
			if err != nil {
				errs <- err
			}
			manager.List()
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Concurrent operation failed: %v", err)
	}
	if manager.Count() != 20 {
		t.Errorf("Expected 20 sessions, got %d", manager.Count())
	}
}
