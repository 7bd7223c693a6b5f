// Command autoplay plays one seat of a Landlord game through the REST API,
// against bots or other players. It is handy for soak-testing a server and
// for watching the bots in the browser.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/landlord/game/engine"
)

type playConfig struct {
	MaxActions int
	Poll       time.Duration
	Delay      time.Duration
}

type outcome struct {
	Game    *engine.Game
	Actions int
	Refused int
}

// play drives the seat until the game ends, the seat is lost, MaxActions
// calls have been made or ctx is done
func play(ctx context.Context, c *Client, s *Strategy, gameID string, cfg playConfig, logger *zap.SugaredLogger) (*outcome, error) {
	g, err := c.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	out := &outcome{Game: g}

	for out.Actions < cfg.MaxActions {
		a := s.Next(g)

		switch a.Kind {
		case ActionDone:
			return out, nil
		case ActionWait:
			if err := sleep(ctx, cfg.Poll); err != nil {
				return out, err
			}
			if g, err = c.GetGame(ctx, gameID); err != nil {
				return out, err
			}
			out.Game = g
			continue
		}

		next, err := c.Do(ctx, gameID, a)
		out.Actions++

		var apiErr *APIError
		if errors.As(err, &apiErr) {
			out.Refused++
			s.Refused(a)
			logger.Debugw("Action refused", "action", a.Kind, "tile", a.TileID, "code", apiErr.Code, "error", apiErr.Message)
			if g, err = c.GetGame(ctx, gameID); err != nil {
				return out, err
			}
			out.Game = g
			continue
		}
		if err != nil {
			return out, err
		}

		g = next
		out.Game = g
		logger.Debugw("Action", "action", a.Kind, "tile", a.TileID, "turn", g.Turn)

		if a.Kind == ActionLeave {
			return out, nil
		}
		if err := sleep(ctx, cfg.Delay); err != nil {
			return out, err
		}
	}
	return out, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	userID := flag.String("user", "autoplay", "User ID to play as")
	userName := flag.String("name", "Autoplay", "Display name")
	rules := flag.String("rules", "", "Rules set for a new game (default: server default)")
	bots := flag.Int("bots", 3, "Bots to seat in a new game")
	continueGame := flag.String("continue", "", "Resume playing an existing game by ID")
	maxActions := flag.Int("max-actions", 2000, "Maximum API calls before stopping")
	reserve := flag.Int("reserve", 200, "Cash to keep before buying or building")
	poll := flag.Duration("poll", 250*time.Millisecond, "Polling interval while waiting for other players")
	delay := flag.Duration("delay", 0, "Delay between actions")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	zl, _ := zap.NewProduction()
	if *verbose {
		zl, _ = zap.NewDevelopment()
	}
	logger := zl.Sugar()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Infow("Connecting to game server", "url", *serverURL, "user", *userID)
	client := NewClient(*serverURL, *userID, *userName)

	// The last game id is remembered between runs
	gameFile := ".autoplay"
	gameID := *continueGame
	if gameID == "" {
		if data, err := os.ReadFile(gameFile); err == nil {
			gameID = string(bytes.TrimSpace(data))
		}
	}

	if gameID != "" {
		g, err := client.GetGame(ctx, gameID)
		if err != nil || g.Status == engine.StatusCompleted || g.PlayerByUser(*userID) == nil {
			logger.Infow("Saved game not playable, creating a new one", "game_id", gameID, "error", err)
			gameID = ""
		} else {
			logger.Infow("Resuming game", "game_id", gameID, "turn", g.Turn)
		}
	}

	if gameID == "" {
		g, err := client.CreateGame(ctx, *rules, *bots)
		if err != nil {
			logger.Fatalw("Failed to create game", "error", err)
		}
		gameID = g.ID
		logger.Infow("Game created", "game_id", gameID, "rules", g.RulesName, "players", len(g.Players))

		if err := os.WriteFile(gameFile, []byte(gameID), 0644); err != nil {
			logger.Warnw("Failed to save game ID", "error", err)
		}
	}

	out, err := play(ctx, client, NewStrategy(*userID, *reserve), gameID, playConfig{
		MaxActions: *maxActions,
		Poll:       *poll,
		Delay:      *delay,
	}, logger)
	if err != nil && (out == nil || !errors.Is(err, context.Canceled)) {
		logger.Fatalw("Play failed", "game_id", gameID, "error", err)
	}

	g := out.Game
	me := g.PlayerByUser(*userID)
	fields := []interface{}{"game_id", gameID, "status", g.Status, "turn", g.Turn, "actions", out.Actions, "refused", out.Refused}
	if me != nil {
		fields = append(fields, "cash", me.Cash, "tiles", len(me.OwnedTileIDs), "in_play", me.InPlay())
	}
	logger.Infow("Finished", fields...)
}
