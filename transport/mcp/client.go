package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/landlord/game/engine"
	"github.com/wricardo/landlord/game/service"
)

// Client is a thin MCP server that plays one seat by proxying to the REST
// API. Every call is made as userID.
type Client struct {
	baseURL    string
	userID     string
	userName   string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL, userID, userName string) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		userID:   userID,
		userName: userName,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Landlord",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Landlord - MCP Interface

A multiplayer property-trading board game. This server proxies every tool to
the REST API and acts as a single player.

Typical turn: game_state -> roll_dice -> buy_tile or pay_rent if needed ->
optionally build_house / mortgage / propose_trade -> end_turn.

Call game_instructions for the full rules.`),
	)

	c.registerTools()
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

func schema(props map[string]interface{}, required ...string) mcp.ToolInputSchema {
	if props == nil {
		props = map[string]interface{}{}
	}
	return mcp.ToolInputSchema{Type: "object", Properties: props, Required: required}
}

var gameIDProp = prop("string", "Game ID")

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Games
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_game",
		Description: "Create a new game and take the first seat",
		InputSchema: schema(map[string]interface{}{
			"name":        prop("string", "Display name of the game (optional)"),
			"max_players": prop("integer", "Seats at the table, 2-6 (optional)"),
			"bot_count":   prop("integer", "Number of bots to seat; the game starts when the table is full (optional)"),
			"rules":       prop("string", "Rules set id from list_rules (optional)"),
		}),
	}, c.handleCreateGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List games, most recently active first",
		InputSchema: schema(map[string]interface{}{
			"status": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"waiting", "active", "completed"},
				"description": "Only games in this status (optional)",
			},
		}),
	}, c.handleListGames)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Show players, whose turn it is, pending payments and trades",
		InputSchema: schema(map[string]interface{}{"game_id": gameIDProp}, "game_id"),
	}, c.handleGameState)

	for _, t := range []struct {
		name, description, path string
	}{
		{"join_game", "Take a seat in a waiting game", "join"},
		{"start_game", "Start a waiting game (creator only)", "start"},
		{"leave_game", "Leave the game; owned tiles return to the bank", "leave"},
		{"roll_dice", "Roll the dice and move (once per turn)", "roll"},
		{"buy_tile", "Buy the unowned tile you are standing on", "buy"},
		{"pay_rent", "Pay the rent you owe", "pay-rent"},
		{"end_turn", "End your turn", "end-turn"},
	} {
		c.mcpServer.AddTool(mcp.Tool{
			Name:        t.name,
			Description: t.description,
			InputSchema: schema(map[string]interface{}{"game_id": gameIDProp}, "game_id"),
		}, c.handleGameAction(t.path))
	}

	// Properties
	for _, t := range []struct {
		name, description, path string
	}{
		{"mortgage", "Mortgage an undeveloped tile you own for half its price", "mortgage"},
		{"unmortgage", "Lift a mortgage (principal plus interest)", "unmortgage"},
		{"build_house", "Build one house on a property of a colour group you fully own", "build"},
	} {
		c.mcpServer.AddTool(mcp.Tool{
			Name:        t.name,
			Description: t.description,
			InputSchema: schema(map[string]interface{}{
				"game_id": gameIDProp,
				"tile_id": prop("integer", "Board position 0-39"),
			}, "game_id", "tile_id"),
		}, c.handleTileAction(t.path))
	}

	// Trades
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "propose_trade",
		Description: "Offer tiles and cash to another player in exchange for theirs",
		InputSchema: schema(map[string]interface{}{
			"game_id":         gameIDProp,
			"to_player":       prop("string", "Player ID of the counterparty"),
			"offered_tiles":   map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "integer"}, "description": "Tile IDs you give"},
			"requested_tiles": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "integer"}, "description": "Tile IDs you ask for"},
			"offered_cash":    prop("integer", "Cash you give"),
			"requested_cash":  prop("integer", "Cash you ask for"),
			"intent":          prop("string", "Why this trade helps you (not sent to the other player)"),
		}, "game_id", "to_player"),
	}, c.handleProposeTrade)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "respond_trade",
		Description: "Accept or reject a trade offered to you",
		InputSchema: schema(map[string]interface{}{
			"game_id":  gameIDProp,
			"trade_id": prop("string", "Trade ID"),
			"accept":   prop("boolean", "true to accept, false to reject"),
		}, "game_id", "trade_id", "accept"),
	}, c.handleRespondTrade)

	// Log
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "chat",
		Description: "Say something to the table",
		InputSchema: schema(map[string]interface{}{
			"game_id": gameIDProp,
			"text":    prop("string", "Message, up to 500 characters"),
		}, "game_id", "text"),
	}, c.handleChat)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_log",
		Description: "Read the game narrative, newest first",
		InputSchema: schema(map[string]interface{}{
			"game_id": gameIDProp,
			"page":    prop("integer", "Page number"),
			"limit":   prop("integer", "Items per page"),
		}, "game_id"),
	}, c.handleGameLog)

	// Reference
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rules",
		Description: "List available rules sets",
		InputSchema: schema(nil),
	}, c.handleListRules)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board",
		Description: "List the 40 board tiles with prices and rents",
		InputSchema: schema(nil),
	}, c.handleBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the game rules",
		InputSchema: schema(nil),
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-User-ID", c.userID)
	if c.userName != "" {
		req.Header.Set("X-User-Name", c.userName)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			if code := errResp["code"]; code != "" {
				return fmt.Errorf("%s (%s)", msg, code)
			}
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// intArg reads a JSON number; ok is false when the key is absent or not a
// whole number
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func intSliceArg(args map[string]interface{}, key string) ([]int, error) {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil, nil
	}
	out := make([]int, 0, len(raw))
	for i := range raw {
		n, ok := intArg(map[string]interface{}{"v": raw[i]}, "v")
		if !ok {
			return nil, fmt.Errorf("%s must be a list of tile ids", key)
		}
		out = append(out, n)
	}
	return out, nil
}

func gamePath(gameID, suffix string) string {
	p := "/api/games/" + url.PathEscape(gameID)
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

// Tool handlers

func (c *Client) handleCreateGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := service.CreateGameRequest{
		Name:  stringArg(args, "name"),
		Rules: stringArg(args, "rules"),
	}
	if n, ok := intArg(args, "max_players"); ok {
		body.MaxPlayers = n
	}
	if n, ok := intArg(args, "bot_count"); ok && n > 0 {
		body.WithBots = true
		body.BotCount = n
	}

	var game engine.Game
	if err := c.apiCall(ctx, "POST", "/api/games", body, &game); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created game %s\n\n%s", game.ID, c.formatGame(&game))), nil
}

func (c *Client) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	path := "/api/games"
	if status := stringArg(args, "status"); status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	var response struct {
		Count int                `json:"count"`
		Games []service.GameInfo `json:"games"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameList(response.Games)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID := stringArg(arguments(request), "game_id")

	var game engine.Game
	if err := c.apiCall(ctx, "GET", gamePath(gameID, ""), nil, &game); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(c.formatGame(&game)), nil
}

// handleGameAction posts to a no-argument game action
func (c *Client) handleGameAction(path string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		gameID := stringArg(arguments(request), "game_id")

		if path == "roll" {
			var result service.RollResult
			if err := c.apiCall(ctx, "POST", gamePath(gameID, path), nil, &result); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			text := fmt.Sprintf("Rolled %d + %d = %d\n\n%s", result.Dice[0], result.Dice[1], result.Dice[0]+result.Dice[1], c.formatGame(result.Game))
			return mcp.NewToolResultText(text), nil
		}

		var game engine.Game
		if err := c.apiCall(ctx, "POST", gamePath(gameID, path), nil, &game); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(c.formatGame(&game)), nil
	}
}

func (c *Client) handleTileAction(path string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := arguments(request)
		gameID := stringArg(args, "game_id")
		tileID, ok := intArg(args, "tile_id")
		if !ok || tileID < 0 || tileID >= engine.BoardSize {
			return mcp.NewToolResultError("tile_id must be a board position between 0 and 39"), nil
		}

		var game engine.Game
		if err := c.apiCall(ctx, "POST", gamePath(gameID, fmt.Sprintf("tiles/%d/%s", tileID, path)), nil, &game); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(c.formatGame(&game)), nil
	}
}

func (c *Client) handleProposeTrade(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID := stringArg(args, "game_id")

	proposal := engine.TradeProposal{ToPlayer: stringArg(args, "to_player")}
	var err error
	if proposal.OfferedTiles, err = intSliceArg(args, "offered_tiles"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if proposal.RequestedTiles, err = intSliceArg(args, "requested_tiles"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	proposal.OfferedCash, _ = intArg(args, "offered_cash")
	proposal.RequestedCash, _ = intArg(args, "requested_cash")

	var result service.TradeResult
	if err := c.apiCall(ctx, "POST", gamePath(gameID, "trades"), proposal, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Trade %s is %s", result.Trade.ID, result.Trade.Status)
	if result.Trade.Reason != "" {
		text += " (" + result.Trade.Reason + ")"
	}
	return mcp.NewToolResultText(text + "\n\n" + c.formatGame(result.Game)), nil
}

func (c *Client) handleRespondTrade(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID := stringArg(args, "game_id")
	tradeID := stringArg(args, "trade_id")
	accept, _ := args["accept"].(bool)

	action := "reject"
	if accept {
		action = "accept"
	}

	var game engine.Game
	if err := c.apiCall(ctx, "POST", gamePath(gameID, "trades/"+url.PathEscape(tradeID)+"/"+action), nil, &game); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(c.formatGame(&game)), nil
}

func (c *Client) handleChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var game engine.Game
	body := map[string]string{"text": stringArg(args, "text")}
	if err := c.apiCall(ctx, "POST", gamePath(stringArg(args, "game_id"), "chat"), body, &game); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Message sent"), nil
}

func (c *Client) handleGameLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	query := url.Values{}
	if page, ok := intArg(args, "page"); ok && page > 0 {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok && limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	path := gamePath(stringArg(args, "game_id"), "log")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var log service.LogResponse
	if err := c.apiCall(ctx, "GET", path, nil, &log); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatLog(&log)), nil
}

func (c *Client) handleListRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var rules []service.RulesInfo
	if err := c.apiCall(ctx, "GET", "/api/rules", nil, &rules); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Rules sets (%d):\n", len(rules))
	for _, r := range rules {
		fmt.Fprintf(&b, "- %s: %s (cash %d, start bonus %d, up to %d players)\n",
			r.RulesID, r.Name, r.StartingCash, r.PassStartBonus, r.MaxPlayers)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var tiles []engine.Tile
	if err := c.apiCall(ctx, "GET", "/api/board", nil, &tiles); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatBoard(tiles)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `LANDLORD RULES

Board: 40 tiles in a loop. Passing or landing on Start pays the start bonus.

Turn:
1. roll_dice once per turn. You move by the sum of two dice.
2. Landing on an unowned property, railroad or utility: buy_tile if you want it.
3. Landing on someone else's tile: rent is charged. If you cannot pay it in
   full it becomes a pending payment; raise cash (mortgage) and pay_rent.
   You cannot end your turn while you owe rent.
4. Chance and Community Chest draw a card. Tax tiles charge a fixed amount.
5. end_turn passes play to the next player. Bots then play automatically.

Rent:
- Properties: base rent, doubled when you own the whole colour group and it
  is undeveloped, otherwise the rent for the number of houses.
- Railroads: 25, 50, 100, 200 for 1-4 railroads owned.
- Utilities: 4x the dice (10x with both utilities).
- Mortgaged tiles charge no rent.

Building: own every tile of a colour group, none mortgaged. Build evenly: a
tile may not get more than one house ahead of the others in its group. Five
houses is a hotel.

Mortgage: receive half the price. Lifting it costs the principal plus
interest. Developed tiles cannot be mortgaged or traded.

Trades: offer tiles and cash; the other player accepts or rejects. Bots
decide immediately.`

// Formatting

func (c *Client) formatGame(g *engine.Game) string {
	if g == nil {
		return ""
	}
	var b strings.Builder

	fmt.Fprintf(&b, "Game %s \"%s\" [%s] turn %d, rules %s\n", g.ID, g.Name, g.Status, g.Turn, g.RulesName)

	current := g.CurrentPlayer()
	if g.Status == engine.StatusActive && current != nil {
		who := current.Name
		if current.UserID == c.userID {
			who += " (you)"
		}
		fmt.Fprintf(&b, "Current player: %s\n", who)
	}
	if g.LastDiceRoll != nil {
		fmt.Fprintf(&b, "Last roll: %d + %d\n", g.LastDiceRoll.Die1, g.LastDiceRoll.Die2)
	}

	b.WriteString("\nPlayers:\n")
	for i := range g.Players {
		p := &g.Players[i]
		marker := " "
		if current != nil && p.ID == current.ID {
			marker = ">"
		}
		tile := ""
		if p.Position >= 0 && p.Position < len(g.Properties) {
			tile = g.Properties[p.Position].Name
		}
		flags := ""
		switch {
		case p.Left:
			flags = " [left]"
		case p.Bankrupt:
			flags = " [bankrupt]"
		case p.InJail:
			flags = " [jail]"
		}
		if p.UserID == c.userID {
			flags += " [you]"
		}
		fmt.Fprintf(&b, "%s %s (%s) cash %d at %d %s, %d tiles%s\n",
			marker, p.Name, p.ID, p.Cash, p.Position, tile, len(p.OwnedTileIDs), flags)
	}

	if me := g.PlayerByUser(c.userID); me != nil && len(me.OwnedTileIDs) > 0 {
		b.WriteString("\nYour tiles:\n")
		for _, id := range me.OwnedTileIDs {
			if id < 0 || id >= len(g.Properties) {
				continue
			}
			t := &g.Properties[id]
			state := ""
			if t.Mortgaged {
				state = " mortgaged"
			} else if t.Houses > 0 {
				state = fmt.Sprintf(" %d houses", t.Houses)
			}
			fmt.Fprintf(&b, "- %d %s (%s)%s\n", t.ID, t.Name, t.Group, state)
		}
	}

	if pp := g.PendingPayment; pp != nil {
		fmt.Fprintf(&b, "\nPending rent: %s owes %s %d for tile %d\n",
			playerName(g, pp.FromPlayer), playerName(g, pp.ToPlayer), pp.Amount, pp.TileID)
	}

	var pending []engine.Trade
	for _, t := range g.Trades {
		if t.Status == engine.TradePending {
			pending = append(pending, t)
		}
	}
	if len(pending) > 0 {
		b.WriteString("\nPending trades:\n")
		for _, t := range pending {
			fmt.Fprintf(&b, "- %s: %s -> %s offers tiles %v + %d for tiles %v + %d\n",
				t.ID, playerName(g, t.FromPlayer), playerName(g, t.ToPlayer),
				t.OfferedTiles, t.OfferedCash, t.RequestedTiles, t.RequestedCash)
		}
	}

	if n := len(g.Log); n > 0 {
		b.WriteString("\nRecent events:\n")
		for _, e := range g.Log[max(0, n-5):] {
			fmt.Fprintf(&b, "- %s\n", e.Message)
		}
	}

	return b.String()
}

func playerName(g *engine.Game, playerID string) string {
	if p := g.PlayerByID(playerID); p != nil {
		return p.Name
	}
	return playerID
}

func formatGameList(games []service.GameInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Games (%d):\n", len(games))
	for _, g := range games {
		fmt.Fprintf(&b, "- %s \"%s\" [%s] %d/%d players, turn %d, rules %s\n",
			g.ID, g.Name, g.Status, g.Players, g.MaxPlayers, g.Turn, g.RulesName)
	}
	return b.String()
}

func formatLog(log *service.LogResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Log page %d/%d (%d entries)\n", log.Page, log.TotalPages, log.Total)
	for _, e := range log.Entries {
		fmt.Fprintf(&b, "[%s] %s %s\n", e.Time.Format("15:04:05"), e.Type, e.Message)
	}
	if log.HasNext {
		b.WriteString("(more on the next page)\n")
	}
	return b.String()
}

func formatBoard(tiles []engine.Tile) string {
	var b strings.Builder
	for _, t := range tiles {
		switch t.Kind {
		case engine.KindProperty:
			fmt.Fprintf(&b, "%2d %-24s %-10s price %d rent %v\n", t.ID, t.Name, t.Group, t.Price, t.RentTable)
		case engine.KindRailroad, engine.KindUtility:
			fmt.Fprintf(&b, "%2d %-24s %-10s price %d\n", t.ID, t.Name, t.Kind, t.Price)
		default:
			fmt.Fprintf(&b, "%2d %-24s %s\n", t.ID, t.Name, t.Kind)
		}
	}
	return b.String()
}
