package engine

import "time"

// GameStatus is the lifecycle state of a game
type GameStatus string

const (
	StatusWaiting   GameStatus = "waiting"
	StatusActive    GameStatus = "active"
	StatusCompleted GameStatus = "completed"
)

// TileKind identifies what happens when a token lands on a tile
type TileKind string

const (
	KindStart          TileKind = "start"
	KindProperty       TileKind = "property"
	KindRailroad       TileKind = "railroad"
	KindUtility        TileKind = "utility"
	KindTax            TileKind = "tax"
	KindChance         TileKind = "chance"
	KindCommunityChest TileKind = "community_chest"
	KindJail           TileKind = "jail"
	KindGoToJail       TileKind = "go_to_jail"
	KindFreeParking    TileKind = "free_parking"
)

// ColorGroup groups properties for monopoly and construction rules
type ColorGroup string

const (
	GroupNone      ColorGroup = ""
	GroupBrown     ColorGroup = "brown"
	GroupLightBlue ColorGroup = "light_blue"
	GroupPink      ColorGroup = "pink"
	GroupOrange    ColorGroup = "orange"
	GroupRed       ColorGroup = "red"
	GroupYellow    ColorGroup = "yellow"
	GroupGreen     ColorGroup = "green"
	GroupDarkBlue  ColorGroup = "dark_blue"
)

// TradeStatus is the state of a trade proposal
type TradeStatus string

const (
	TradePending  TradeStatus = "pending"
	TradeAccepted TradeStatus = "accepted"
	TradeRejected TradeStatus = "rejected"
)

// LogType distinguishes engine narrative from player chat
type LogType string

const (
	LogEvent LogType = "event"
	LogChat  LogType = "chat"
)

const (
	BoardSize  = 40
	MaxHouses  = 5 // five houses is a hotel
	JailTileID = 10

	// BotUserID is the account reference shared by every bot seat.
	BotUserID = "bot"

	MaxPlayersCap  = 6
	MaxChatLength  = 500
	maxLandingHops = 3
)

// DiceRoll is the most recent roll of the current turn
type DiceRoll struct {
	Die1     int  `json:"die1"`
	Die2     int  `json:"die2"`
	Sum      int  `json:"sum"`
	IsDouble bool `json:"is_double"`
}

// PendingPayment is an unsettled rent obligation
type PendingPayment struct {
	FromPlayer string `json:"from_player"`
	ToPlayer   string `json:"to_player"`
	Amount     int    `json:"amount"`
	TileID     int    `json:"tile_id"`
}

// Player is a seat at the table. ID is stable for the life of the game;
// UserID is the account behind the seat (BotUserID for bots).
type Player struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	IsBot        bool   `json:"is_bot"`
	Position     int    `json:"position"`
	Cash         int    `json:"cash"`
	OwnedTileIDs []int  `json:"owned_tile_ids"`
	Color        string `json:"color"`
	InJail       bool   `json:"in_jail"`
	Bankrupt     bool   `json:"bankrupt"`
	Left         bool   `json:"left,omitempty"`
}

// InPlay reports whether the seat still takes turns
func (p *Player) InPlay() bool {
	return !p.Left && !p.Bankrupt
}

// Tile is one board position together with its ownership state
type Tile struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Kind      TileKind   `json:"kind"`
	Group     ColorGroup `json:"color_group,omitempty"`
	Price     int        `json:"price,omitempty"`
	RentTable [6]int     `json:"rent_table"`
	Owner     string     `json:"owner,omitempty"`
	Houses    int        `json:"houses"`
	Mortgaged bool       `json:"mortgaged"`
}

// Purchasable reports whether the tile can ever be owned
func (t *Tile) Purchasable() bool {
	return t.Kind == KindProperty || t.Kind == KindRailroad || t.Kind == KindUtility
}

// Trade is a proposal to exchange tiles and cash between two seats
type Trade struct {
	ID             string      `json:"id"`
	FromPlayer     string      `json:"from_player"`
	ToPlayer       string      `json:"to_player"`
	OfferedTiles   []int       `json:"offered_tiles"`
	RequestedTiles []int       `json:"requested_tiles"`
	OfferedCash    int         `json:"offered_cash"`
	RequestedCash  int         `json:"requested_cash"`
	Status         TradeStatus `json:"status"`
	Reason         string      `json:"reason,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
}

// TradeProposal is the caller-supplied part of a trade
type TradeProposal struct {
	ToPlayer       string `json:"to_player"`
	OfferedTiles   []int  `json:"offered_tiles"`
	RequestedTiles []int  `json:"requested_tiles"`
	OfferedCash    int    `json:"offered_cash"`
	RequestedCash  int    `json:"requested_cash"`
}

// LogEntry is one line of the game narrative
type LogEntry struct {
	Time     time.Time `json:"time"`
	Type     LogType   `json:"type"`
	PlayerID string    `json:"player_id,omitempty"`
	Message  string    `json:"message"`
}

// Game is the aggregate root mutated by the engine
type Game struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Status             GameStatus      `json:"status"`
	CreatorID          string          `json:"creator_id"`
	RulesName          string          `json:"rules_name"`
	CurrentPlayerIndex int             `json:"current_player_index"`
	MaxPlayers         int             `json:"max_players"`
	Turn               int             `json:"turn"`
	Players            []Player        `json:"players"`
	Properties         []Tile          `json:"properties"`
	LastDiceRoll       *DiceRoll       `json:"last_dice_roll,omitempty"`
	PendingPayment     *PendingPayment `json:"pending_payment,omitempty"`
	Trades             []Trade         `json:"trades"`
	Log                []LogEntry      `json:"log"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// CurrentPlayer returns the seat whose turn it is, or nil before the game starts
func (g *Game) CurrentPlayer() *Player {
	if g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= len(g.Players) {
		return nil
	}
	return &g.Players[g.CurrentPlayerIndex]
}

// PlayerByID finds a seat by its stable id
func (g *Game) PlayerByID(id string) *Player {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i]
		}
	}
	return nil
}

// PlayerByUser finds the human seat held by an account
func (g *Game) PlayerByUser(userID string) *Player {
	for i := range g.Players {
		p := &g.Players[i]
		if !p.IsBot && p.UserID == userID {
			return p
		}
	}
	return nil
}

// TradeByID finds a trade record
func (g *Game) TradeByID(id string) *Trade {
	for i := range g.Trades {
		if g.Trades[i].ID == id {
			return &g.Trades[i]
		}
	}
	return nil
}

// Tile returns the tile at a board position, or nil when out of range
func (g *Game) Tile(id int) *Tile {
	if id < 0 || id >= len(g.Properties) {
		return nil
	}
	return &g.Properties[id]
}

// BotTurnDue reports whether the engine should play the next turn itself
func (g *Game) BotTurnDue() bool {
	if g.Status != StatusActive {
		return false
	}
	p := g.CurrentPlayer()
	return p != nil && p.IsBot && p.InPlay()
}

// Clone returns a deep copy of the game
func (g *Game) Clone() *Game {
	c := *g

	c.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		p.OwnedTileIDs = append([]int(nil), p.OwnedTileIDs...)
		c.Players[i] = p
	}

	c.Properties = append([]Tile(nil), g.Properties...)

	c.Trades = make([]Trade, len(g.Trades))
	for i, t := range g.Trades {
		t.OfferedTiles = append([]int(nil), t.OfferedTiles...)
		t.RequestedTiles = append([]int(nil), t.RequestedTiles...)
		if t.CompletedAt != nil {
			at := *t.CompletedAt
			t.CompletedAt = &at
		}
		c.Trades[i] = t
	}

	c.Log = append([]LogEntry(nil), g.Log...)

	if g.LastDiceRoll != nil {
		roll := *g.LastDiceRoll
		c.LastDiceRoll = &roll
	}
	if g.PendingPayment != nil {
		pp := *g.PendingPayment
		c.PendingPayment = &pp
	}

	return &c
}
