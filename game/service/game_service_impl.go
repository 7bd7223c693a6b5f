package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/landlord/game/engine"
)

// ErrSessionNotFound is the error session managers return for unknown ids
var ErrSessionNotFound = errors.New("session not found")

const (
	defaultLogLimit = 20
	maxLogLimit     = 100
	// a stale session is re-resolved this many times before giving up
	maxSessionRetries = 3
)

// Option configures the game service
type Option func(*gameServiceImpl)

// WithLogger sets the service logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *gameServiceImpl) {
		s.logger = logger
	}
}

// WithRandom sets the random source handed to every engine
func WithRandom(r engine.Random) Option {
	return func(s *gameServiceImpl) {
		s.random = r
	}
}

// WithClock sets the clock handed to every engine
func WithClock(c engine.Clock) Option {
	return func(s *gameServiceImpl) {
		s.clock = c
	}
}

// WithNotifier registers a listener for committed game states
func WithNotifier(n Notifier) Option {
	return func(s *gameServiceImpl) {
		s.notifiers = append(s.notifiers, n)
	}
}

// WithBotDelay pauses before every bot turn so watchers can follow along
func WithBotDelay(d time.Duration) Option {
	return func(s *gameServiceImpl) {
		s.botDelay = d
	}
}

// WithBotWorkers sets how many games can run bot turns at the same time
func WithBotWorkers(n int) Option {
	return func(s *gameServiceImpl) {
		s.botWorkers = n
	}
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions  SessionManager
	rules     RulesManager
	logger    *zap.SugaredLogger
	random    engine.Random
	clock     engine.Clock
	notifiers []Notifier

	botDelay   time.Duration
	botWorkers int
	bots       *BotScheduler

	enginesMu sync.Mutex
	engines   map[*engine.Rules]*engine.Engine
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, rules RulesManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions:   sessions,
		rules:      rules,
		random:     engine.DefaultRandom(),
		clock:      time.Now,
		botWorkers: 4,
		engines:    make(map[*engine.Rules]*engine.Engine),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop().Sugar()
	}
	s.bots = NewBotScheduler(s.botWorkers, s.logger, s.runBots)
	return s
}

// engineFor returns the engine for a rules name, falling back to the
// default rule set when the name no longer resolves
func (s *gameServiceImpl) engineFor(rulesName string) (*engine.Engine, error) {
	rules := s.rules.GetDefault()
	if rulesName != "" && rulesName != s.rules.DefaultName() {
		loaded, err := s.rules.LoadRules(rulesName)
		if err != nil {
			s.logger.Warnw("rules unavailable, using default", "rules", rulesName, "error", err)
		} else {
			rules = loaded
		}
	}

	s.enginesMu.Lock()
	defer s.enginesMu.Unlock()
	if eng, ok := s.engines[rules]; ok {
		return eng, nil
	}
	eng, err := engine.NewEngine(rules, engine.WithRandom(s.random), engine.WithClock(s.clock))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrInternal, err)
	}
	s.engines[rules] = eng
	return eng, nil
}

// lockSession returns the live session for a game with its lock held. A
// session evicted or replaced while we waited for the lock is resolved
// again.
func (s *gameServiceImpl) lockSession(gameID string) (*Session, error) {
	for i := 0; i < maxSessionRetries; i++ {
		sess, err := s.sessions.Get(gameID)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				return nil, fmt.Errorf("%w: game %s", engine.ErrNotFound, gameID)
			}
			return nil, fmt.Errorf("%w: %v", engine.ErrInternal, err)
		}
		sess.Lock()
		current, err := s.sessions.Get(gameID)
		if err == nil && current == sess {
			return sess, nil
		}
		sess.Unlock()
		if err != nil && errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: game %s", engine.ErrNotFound, gameID)
		}
	}
	return nil, fmt.Errorf("%w: game %s kept changing underneath", engine.ErrInternal, gameID)
}

// mutate runs fn against a copy of the stored game and commits the copy
// only when fn succeeds
func (s *gameServiceImpl) mutate(gameID, op string, fn func(eng *engine.Engine, g *engine.Game) error) (*engine.Game, error) {
	sess, err := s.lockSession(gameID)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	eng, err := s.engineFor(sess.Game.RulesName)
	if err != nil {
		return nil, err
	}

	next := sess.Game.Clone()
	if err := fn(eng, next); err != nil {
		s.logger.Debugw("game action rejected", "game", gameID, "op", op, "error", err)
		return nil, err
	}
	s.commit(sess, next)
	s.logger.Infow("game action", "game", gameID, "op", op, "turn", next.Turn, "status", next.Status)
	return next, nil
}

// commit swaps in the new state, persists it and fans it out. Caller
// holds the session lock.
func (s *gameServiceImpl) commit(sess *Session, next *engine.Game) {
	sess.Game = next
	if err := s.sessions.UpdateLastAccessed(sess.ID); err != nil {
		s.logger.Warnw("failed to touch session", "game", sess.ID, "error", err)
	}
	if err := s.sessions.Save(sess.ID); err != nil {
		s.logger.Warnw("failed to persist game", "game", sess.ID, "error", err)
	}
	for _, n := range s.notifiers {
		n.GameUpdated(next)
	}
	if next.BotTurnDue() {
		s.bots.Schedule(next.ID)
	}
}

// runBots plays consecutive bot turns until a human is up, the game ends,
// or the chain limit of the game's rules is reached
func (s *gameServiceImpl) runBots(ctx context.Context, gameID string) {
	for step := 0; ; step++ {
		if s.botDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.botDelay):
			}
		}
		if ctx.Err() != nil {
			return
		}
		if !s.playBotTurn(gameID, step) {
			return
		}
	}
}

// playBotTurn plays one bot turn and reports whether another is due
func (s *gameServiceImpl) playBotTurn(gameID string, step int) bool {
	sess, err := s.lockSession(gameID)
	if err != nil {
		s.logger.Debugw("bot turn skipped", "game", gameID, "error", err)
		return false
	}
	defer sess.Unlock()

	if !sess.Game.BotTurnDue() {
		return false
	}
	eng, err := s.engineFor(sess.Game.RulesName)
	if err != nil {
		s.logger.Errorw("bot turn skipped", "game", gameID, "error", err)
		return false
	}
	if limit := eng.Rules().MaxChainedBotTurns; step >= limit {
		// a bot is still up; queue a fresh chain once this one returns
		s.logger.Warnw("bot chain limit reached, rescheduling", "game", gameID, "limit", limit)
		s.bots.Schedule(gameID)
		return false
	}

	next := sess.Game.Clone()
	bot := next.CurrentPlayer().Name
	err = eng.PlayBotTurn(next)
	if err != nil && !errors.Is(err, engine.ErrInternal) {
		s.logger.Debugw("bot turn not played", "game", gameID, "error", err)
		return false
	}
	if err != nil {
		s.logger.Errorw("bot turn failed, turn advanced", "game", gameID, "bot", bot, "error", err)
	}

	// commit would schedule the game again; the loop continues instead
	sess.Game = next
	if err := s.sessions.UpdateLastAccessed(gameID); err != nil {
		s.logger.Warnw("failed to touch session", "game", gameID, "error", err)
	}
	if err := s.sessions.Save(gameID); err != nil {
		s.logger.Warnw("failed to persist game", "game", gameID, "error", err)
	}
	for _, n := range s.notifiers {
		n.GameUpdated(next)
	}
	s.logger.Infow("bot turn", "game", gameID, "bot", bot, "turn", next.Turn)
	return next.BotTurnDue()
}

// CreateGame creates a new game and stores it
func (s *gameServiceImpl) CreateGame(ctx context.Context, req CreateGameRequest) (*engine.Game, error) {
	rulesName := req.Rules
	if rulesName == "" {
		rulesName = s.rules.DefaultName()
	} else if _, err := s.rules.LoadRules(rulesName); err != nil {
		return nil, s.rulesError(rulesName, err)
	}
	eng, err := s.engineFor(rulesName)
	if err != nil {
		return nil, err
	}

	botCount := 0
	if req.WithBots {
		botCount = req.BotCount
		if botCount == 0 {
			botCount = 1
		}
	}
	g, err := eng.NewGame(engine.NewGameParams{
		Name:        req.Name,
		CreatorID:   req.CreatorID,
		CreatorName: req.CreatorName,
		MaxPlayers:  req.MaxPlayers,
		BotCount:    botCount,
	})
	if err != nil {
		return nil, err
	}
	g.RulesName = rulesName

	sess, err := s.sessions.Create(g)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create session: %v", engine.ErrInternal, err)
	}
	sess.Lock()
	defer sess.Unlock()
	s.commit(sess, g)
	s.logger.Infow("game created", "game", g.ID, "creator", req.CreatorID, "rules", rulesName, "bots", botCount)
	return g, nil
}

// rulesError produces a helpful error listing the available rule sets
func (s *gameServiceImpl) rulesError(name string, err error) error {
	available, listErr := s.rules.ListRules()
	if listErr == nil && len(available) > 0 {
		ids := make([]string, 0, len(available))
		for _, r := range available {
			ids = append(ids, r.RulesID)
		}
		return fmt.Errorf("%w: rules '%s' not found. Available rules: %v", engine.ErrNotFound, name, ids)
	}
	return fmt.Errorf("%w: rules '%s': %v", engine.ErrNotFound, name, err)
}

// GetGame returns the current state of a game
func (s *gameServiceImpl) GetGame(ctx context.Context, gameID string) (*engine.Game, error) {
	sess, err := s.lockSession(gameID)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()
	if err := s.sessions.UpdateLastAccessed(gameID); err != nil {
		s.logger.Warnw("failed to touch session", "game", gameID, "error", err)
	}
	return sess.Game, nil
}

// ListGames returns summaries of all games, most recently used first
func (s *gameServiceImpl) ListGames(ctx context.Context) ([]*GameInfo, error) {
	sessions := s.sessions.List()
	result := make([]*GameInfo, 0, len(sessions))
	for _, sess := range sessions {
		sess.Lock()
		result = append(result, summarize(sess))
		sess.Unlock()
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastAccessedAt.After(result[j].LastAccessedAt)
	})
	return result, nil
}

// DeleteGame removes a game and its persisted copy
func (s *gameServiceImpl) DeleteGame(ctx context.Context, gameID string) error {
	sess, err := s.lockSession(gameID)
	if err != nil {
		return err
	}
	defer sess.Unlock()
	if err := s.sessions.Delete(gameID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return fmt.Errorf("%w: game %s", engine.ErrNotFound, gameID)
		}
		return fmt.Errorf("%w: %v", engine.ErrInternal, err)
	}
	s.logger.Infow("game deleted", "game", gameID)
	return nil
}

// JoinGame seats a human player
func (s *gameServiceImpl) JoinGame(ctx context.Context, gameID, userID, name string) (*engine.Game, error) {
	return s.mutate(gameID, "join", func(eng *engine.Engine, g *engine.Game) error {
		return eng.Join(g, userID, name)
	})
}

// LeaveGame removes or abandons the user's seat
func (s *gameServiceImpl) LeaveGame(ctx context.Context, gameID, userID string) (*engine.Game, error) {
	return s.mutate(gameID, "leave", func(eng *engine.Engine, g *engine.Game) error {
		return eng.Leave(g, userID)
	})
}

// StartGame starts a waiting game
func (s *gameServiceImpl) StartGame(ctx context.Context, gameID, userID string) (*engine.Game, error) {
	return s.mutate(gameID, "start", func(eng *engine.Engine, g *engine.Game) error {
		return eng.Start(g, userID)
	})
}

// RollDice rolls for the current player
func (s *gameServiceImpl) RollDice(ctx context.Context, gameID, userID string) (*RollResult, error) {
	var dice [2]int
	g, err := s.mutate(gameID, "roll", func(eng *engine.Engine, g *engine.Game) error {
		var err error
		dice, err = eng.RollDice(g, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &RollResult{Game: g, Dice: dice}, nil
}

// BuyCurrentTile buys the tile the current player stands on
func (s *gameServiceImpl) BuyCurrentTile(ctx context.Context, gameID, userID string) (*engine.Game, error) {
	return s.mutate(gameID, "buy", func(eng *engine.Engine, g *engine.Game) error {
		return eng.BuyCurrentTile(g, userID)
	})
}

// EndTurn passes the turn
func (s *gameServiceImpl) EndTurn(ctx context.Context, gameID, userID string) (*engine.Game, error) {
	return s.mutate(gameID, "end_turn", func(eng *engine.Engine, g *engine.Game) error {
		return eng.EndTurn(g, userID)
	})
}

// PayPendingRent settles the user's outstanding rent
func (s *gameServiceImpl) PayPendingRent(ctx context.Context, gameID, userID string) (*engine.Game, error) {
	return s.mutate(gameID, "pay_rent", func(eng *engine.Engine, g *engine.Game) error {
		return eng.PayPendingRent(g, userID)
	})
}

// Mortgage mortgages one of the user's tiles
func (s *gameServiceImpl) Mortgage(ctx context.Context, gameID, userID string, tileID int) (*engine.Game, error) {
	return s.mutate(gameID, "mortgage", func(eng *engine.Engine, g *engine.Game) error {
		return eng.Mortgage(g, userID, tileID)
	})
}

// Unmortgage lifts a mortgage
func (s *gameServiceImpl) Unmortgage(ctx context.Context, gameID, userID string, tileID int) (*engine.Game, error) {
	return s.mutate(gameID, "unmortgage", func(eng *engine.Engine, g *engine.Game) error {
		return eng.Unmortgage(g, userID, tileID)
	})
}

// BuildHouse adds a house or hotel
func (s *gameServiceImpl) BuildHouse(ctx context.Context, gameID, userID string, tileID int) (*engine.Game, error) {
	return s.mutate(gameID, "build", func(eng *engine.Engine, g *engine.Game) error {
		return eng.BuildHouse(g, userID, tileID)
	})
}

// ProposeTrade records a trade; bots answer it immediately
func (s *gameServiceImpl) ProposeTrade(ctx context.Context, gameID, userID string, proposal engine.TradeProposal) (*TradeResult, error) {
	var tradeID string
	g, err := s.mutate(gameID, "propose_trade", func(eng *engine.Engine, g *engine.Game) error {
		t, err := eng.ProposeTrade(g, userID, proposal)
		if err != nil {
			return err
		}
		tradeID = t.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	// the trade pointer must come from the committed game
	return &TradeResult{Game: g, Trade: g.TradeByID(tradeID)}, nil
}

// AcceptTrade executes a pending trade
func (s *gameServiceImpl) AcceptTrade(ctx context.Context, gameID, userID, tradeID string) (*engine.Game, error) {
	return s.mutate(gameID, "accept_trade", func(eng *engine.Engine, g *engine.Game) error {
		return eng.AcceptTrade(g, userID, tradeID)
	})
}

// RejectTrade rejects or withdraws a pending trade
func (s *gameServiceImpl) RejectTrade(ctx context.Context, gameID, userID, tradeID string) (*engine.Game, error) {
	return s.mutate(gameID, "reject_trade", func(eng *engine.Engine, g *engine.Game) error {
		return eng.RejectTrade(g, userID, tradeID)
	})
}

// AppendChatMessage adds a chat line to the game log
func (s *gameServiceImpl) AppendChatMessage(ctx context.Context, gameID, userID, text string) (*engine.Game, error) {
	return s.mutate(gameID, "chat", func(eng *engine.Engine, g *engine.Game) error {
		return eng.AppendChat(g, userID, text)
	})
}

// GetLog returns a page of the game log
func (s *gameServiceImpl) GetLog(ctx context.Context, gameID string, opts LogOptions) (*LogResponse, error) {
	g, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	entries := g.Log
	if opts.Type != "" {
		entries = make([]engine.LogEntry, 0, len(g.Log))
		for _, e := range g.Log {
			if e.Type == opts.Type {
				entries = append(entries, e)
			}
		}
	}
	total := len(entries)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultLogLimit
	}
	if opts.Limit > maxLogLimit {
		opts.Limit = maxLogLimit
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	page := []engine.LogEntry{}
	if opts.Order == "desc" {
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			page = append(page, entries[i])
		}
	} else if start < total {
		page = append(page, entries[start:end]...)
	}

	return &LogResponse{
		Entries:     page,
		Total:       total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListRules returns the available rule sets
func (s *gameServiceImpl) ListRules(ctx context.Context) ([]*RulesInfo, error) {
	return s.rules.ListRules()
}

// LoadRules loads a rule set by name
func (s *gameServiceImpl) LoadRules(ctx context.Context, name string) (*engine.Rules, error) {
	rules, err := s.rules.LoadRules(name)
	if err != nil {
		return nil, s.rulesError(name, err)
	}
	return rules, nil
}

// SaveRules validates and stores a rule set
func (s *gameServiceImpl) SaveRules(ctx context.Context, name string, rules *engine.Rules) error {
	if err := engine.ValidateRules(rules); err != nil {
		return fmt.Errorf("%w: %v", engine.ErrRuleViolation, err)
	}
	return s.rules.SaveRules(name, rules)
}

// Board returns the static tile catalog
func (s *gameServiceImpl) Board(ctx context.Context) []engine.Tile {
	return engine.NewBoard()
}

// WaitForBots blocks until scheduled bot chains have run
func (s *gameServiceImpl) WaitForBots() {
	s.bots.Wait()
}

// Close stops the bot workers
func (s *gameServiceImpl) Close(ctx context.Context) error {
	return s.bots.Close(ctx)
}
