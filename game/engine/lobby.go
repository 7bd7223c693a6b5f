package engine

import (
	"fmt"

	"github.com/google/uuid"
)

var playerColors = []string{"red", "blue", "green", "yellow", "purple", "orange"}

// NewGameParams describes a game to create
type NewGameParams struct {
	ID          string
	Name        string
	CreatorID   string
	CreatorName string
	MaxPlayers  int
	BotCount    int
}

// NewGame creates a Waiting game seating the creator and any bots. The
// game starts immediately if the bots fill the table.
func (e *Engine) NewGame(params NewGameParams) (*Game, error) {
	if params.CreatorID == "" || params.CreatorID == BotUserID {
		return nil, fmt.Errorf("%w: a human creator is required", ErrRuleViolation)
	}

	maxPlayers := params.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = e.rules.MaxPlayers
	}
	if maxPlayers < e.rules.MinPlayers || maxPlayers > e.rules.MaxPlayers {
		return nil, fmt.Errorf("%w: max players must be between %d and %d", ErrRuleViolation, e.rules.MinPlayers, e.rules.MaxPlayers)
	}
	if params.BotCount < 0 || params.BotCount > e.rules.MaxBots || params.BotCount >= maxPlayers {
		return nil, fmt.Errorf("%w: bot count must be between 0 and %d", ErrRuleViolation, min(e.rules.MaxBots, maxPlayers-1))
	}

	id := params.ID
	if id == "" {
		id = uuid.NewString()
	}
	name := params.Name
	if name == "" {
		name = fmt.Sprintf("%s's game", displayName(params.CreatorName, params.CreatorID))
	}

	now := e.clock()
	g := &Game{
		ID:         id,
		Name:       name,
		Status:     StatusWaiting,
		CreatorID:  params.CreatorID,
		RulesName:  e.rules.Name,
		MaxPlayers: maxPlayers,
		Properties: NewBoard(),
		Players:    []Player{},
		Trades:     []Trade{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	e.seat(g, params.CreatorID, displayName(params.CreatorName, params.CreatorID), false)
	e.logf(g, "%s created the game", g.Players[0].Name)
	for i := 0; i < params.BotCount; i++ {
		e.seat(g, BotUserID, e.rules.botName(i), true)
	}

	if len(g.Players) == g.MaxPlayers {
		e.start(g)
	}
	return g, nil
}

// Join seats a human in a Waiting game and starts it once the table is full
func (e *Engine) Join(g *Game, userID, name string) error {
	if userID == "" || userID == BotUserID {
		return fmt.Errorf("%w: invalid user id", ErrRuleViolation)
	}
	if g.Status != StatusWaiting {
		return fmt.Errorf("%w: game is %s", ErrInvalidState, g.Status)
	}
	if g.PlayerByUser(userID) != nil {
		return fmt.Errorf("%w: user %s already joined", ErrRuleViolation, userID)
	}
	if len(g.Players) >= g.MaxPlayers {
		return fmt.Errorf("%w: game is full", ErrInvalidState)
	}

	p := e.seat(g, userID, displayName(name, userID), false)
	e.logf(g, "%s joined the game", p.Name)

	if len(g.Players) == g.MaxPlayers {
		e.start(g)
	}
	return nil
}

// Start begins a Waiting game; only the creator may start it
func (e *Engine) Start(g *Game, userID string) error {
	if g.Status != StatusWaiting {
		return fmt.Errorf("%w: game is %s", ErrInvalidState, g.Status)
	}
	if _, err := requirePlayer(g, userID); err != nil {
		return err
	}
	if g.CreatorID != userID {
		return fmt.Errorf("%w: only the creator can start the game", ErrRuleViolation)
	}
	if len(g.Players) < e.rules.MinPlayers {
		return fmt.Errorf("%w: at least %d players are needed", ErrRuleViolation, e.rules.MinPlayers)
	}
	e.start(g)
	return nil
}

func (e *Engine) start(g *Game) {
	g.Status = StatusActive
	g.CurrentPlayerIndex = 0
	g.Turn = 1
	e.logf(g, "The game has started with %d players. %s goes first", len(g.Players), g.Players[0].Name)
}

// Leave removes a human from the game. In a Waiting game the seat is
// removed; in an Active game it is marked as left, its tiles return to the
// bank and its open trades and debts are cancelled.
func (e *Engine) Leave(g *Game, userID string) error {
	p, err := requirePlayer(g, userID)
	if err != nil {
		return err
	}

	switch g.Status {
	case StatusWaiting:
		e.removeSeat(g, p)
	case StatusActive:
		e.abandonSeat(g, p)
	default:
		return fmt.Errorf("%w: game is %s", ErrInvalidState, g.Status)
	}

	e.checkCompletion(g)
	return nil
}

func (e *Engine) removeSeat(g *Game, p *Player) {
	name, userID := p.Name, p.UserID
	for i := range g.Players {
		if g.Players[i].ID == p.ID {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			break
		}
	}
	e.logf(g, "%s left the game", name)

	if g.CreatorID == userID {
		for i := range g.Players {
			if !g.Players[i].IsBot {
				g.CreatorID = g.Players[i].UserID
				e.logf(g, "%s is now the host", g.Players[i].Name)
				break
			}
		}
	}
}

func (e *Engine) abandonSeat(g *Game, p *Player) {
	p.Left = true
	for _, id := range append([]int(nil), p.OwnedTileIDs...) {
		transferTile(g, id, p, nil)
	}

	now := e.clock()
	for i := range g.Trades {
		t := &g.Trades[i]
		if t.Status == TradePending && (t.FromPlayer == p.ID || t.ToPlayer == p.ID) {
			t.Status = TradeRejected
			t.Reason = "player left"
			t.CompletedAt = &now
		}
	}

	if pp := g.PendingPayment; pp != nil && (pp.FromPlayer == p.ID || pp.ToPlayer == p.ID) {
		g.PendingPayment = nil
	}
	e.logf(g, "%s left the game and their properties returned to the bank", p.Name)

	if cur := g.CurrentPlayer(); cur != nil && cur.ID == p.ID {
		e.advanceTurn(g)
	}
}

// checkCompletion ends a game that can no longer be played
func (e *Engine) checkCompletion(g *Game) {
	if g.Status == StatusCompleted {
		return
	}

	inPlay, humans := 0, 0
	for i := range g.Players {
		p := &g.Players[i]
		if !p.InPlay() {
			continue
		}
		inPlay++
		if !p.IsBot {
			humans++
		}
	}

	switch {
	case humans == 0:
		g.Status = StatusCompleted
		g.LastDiceRoll = nil
		g.PendingPayment = nil
		e.logf(g, "The game is over: no human players remain")
	case g.Status == StatusActive && inPlay < 2:
		g.Status = StatusCompleted
		g.LastDiceRoll = nil
		g.PendingPayment = nil
		e.logf(g, "The game is over: fewer than two players remain")
	}
}

func (e *Engine) seat(g *Game, userID, name string, bot bool) *Player {
	g.Players = append(g.Players, Player{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         name,
		IsBot:        bot,
		Cash:         e.rules.StartingCash,
		OwnedTileIDs: []int{},
		Color:        nextColor(g),
	})
	return &g.Players[len(g.Players)-1]
}

func nextColor(g *Game) string {
	used := make(map[string]bool, len(g.Players))
	for i := range g.Players {
		used[g.Players[i].Color] = true
	}
	for _, c := range playerColors {
		if !used[c] {
			return c
		}
	}
	return playerColors[len(g.Players)%len(playerColors)]
}

func displayName(name, userID string) string {
	if name != "" {
		return name
	}
	return userID
}
