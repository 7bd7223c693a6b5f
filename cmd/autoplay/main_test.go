package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/landlord/api"
	"github.com/wricardo/landlord/game/config"
	"github.com/wricardo/landlord/game/engine"
	"github.com/wricardo/landlord/game/service"
	"github.com/wricardo/landlord/game/session"
)

// newTestServer runs the real API over an in-memory store
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	rules, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	svc := service.NewGameService(session.NewManager(), rules)
	t.Cleanup(func() { svc.Close(context.Background()) })

	srv := httptest.NewServer(api.NewServer(svc, nil, zap.NewNop().Sugar()))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_APIError(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, "u1", "Alice")

	_, err := c.GetGame(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Code != "not_found" {
		t.Errorf("Unexpected error %+v", apiErr)
	}
}

func TestClient_CreateAndAct(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, "u1", "Alice")
	ctx := context.Background()

	g, err := c.CreateGame(ctx, "", 1)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if g.Status != engine.StatusActive || len(g.Players) != 2 {
		t.Fatalf("Expected a full active table, got %s with %d players", g.Status, len(g.Players))
	}

	g, err = c.Do(ctx, g.ID, Action{Kind: ActionRoll})
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if g.LastDiceRoll == nil {
		t.Error("Expected a dice roll on the returned game")
	}

	_, err = c.Do(ctx, g.ID, Action{Kind: ActionRoll})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "already_acted" {
		t.Errorf("Expected already_acted on a second roll, got %v", err)
	}
}

func TestPlay_AgainstBots(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, "u1", "Alice")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	g, err := c.CreateGame(ctx, "", 2)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	out, err := play(ctx, c, NewStrategy("u1", 200), g.ID, playConfig{
		MaxActions: 150,
		Poll:       5 * time.Millisecond,
	}, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("play: %v", err)
	}

	if out.Actions == 0 {
		t.Fatal("Expected some actions")
	}
	if out.Game.Turn < 3 {
		t.Errorf("Expected the game to advance past the bots, turn %d", out.Game.Turn)
	}
	if err := engine.CheckInvariants(out.Game); err != nil {
		t.Errorf("Invariants broken after play: %v", err)
	}
}

func TestSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected cancellation, got %v", err)
	}
	if err := sleep(context.Background(), 0); err != nil {
		t.Errorf("Zero sleep returned %v", err)
	}
}
