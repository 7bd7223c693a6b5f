package engine

import "fmt"

// Card is one chance or community chest card. Effect mutates the drawing
// player (and possibly the other seats) and returns a narrative line.
type Card struct {
	Text   string
	Effect func(e *Engine, g *Game, p *Player) string
}

// ChanceDeck returns the chance cards
func ChanceDeck() []Card {
	return chanceDeck
}

// CommunityChestDeck returns the community chest cards
func CommunityChestDeck() []Card {
	return communityChestDeck
}

var chanceDeck = []Card{
	{Text: "Advance to Start", Effect: advanceCard(0)},
	{Text: "Advance to Gallery Avenue", Effect: advanceCard(24)},
	{Text: "Advance to Market Square", Effect: advanceCard(11)},
	{Text: "Take a trip to North Station", Effect: advanceCard(5)},
	{Text: "Bank pays you a dividend of 50", Effect: cashCard(50)},
	{Text: "Go back three spaces", Effect: backCard(3)},
	{Text: "Go directly to Jail", Effect: jailCard},
	{Text: "Make general repairs on all your property: 25 per house, 100 per hotel", Effect: repairsCard(25, 100)},
	{Text: "Speeding fine of 15", Effect: cashCard(-15)},
	{Text: "Your building loan matures, collect 150", Effect: cashCard(150)},
	{Text: "You have been elected chairman of the board, pay each player 50", Effect: payEachCard(50)},
}

var communityChestDeck = []Card{
	{Text: "Advance to Start", Effect: advanceCard(0)},
	{Text: "Bank error in your favor, collect 200", Effect: cashCard(200)},
	{Text: "Doctor's fee, pay 50", Effect: cashCard(-50)},
	{Text: "From sale of stock you get 50", Effect: cashCard(50)},
	{Text: "Go directly to Jail", Effect: jailCard},
	{Text: "Holiday fund matures, receive 100", Effect: cashCard(100)},
	{Text: "Income tax refund, collect 20", Effect: cashCard(20)},
	{Text: "It is your birthday, collect 10 from every player", Effect: collectEachCard(10)},
	{Text: "Life insurance matures, collect 100", Effect: cashCard(100)},
	{Text: "Hospital fees, pay 100", Effect: cashCard(-100)},
	{Text: "You are assessed for street repairs: 40 per house, 115 per hotel", Effect: repairsCard(40, 115)},
}

func cashCard(amount int) func(*Engine, *Game, *Player) string {
	return func(_ *Engine, _ *Game, p *Player) string {
		p.Cash += amount
		if amount < 0 {
			return fmt.Sprintf("%s paid %d", p.Name, -amount)
		}
		return fmt.Sprintf("%s collected %d", p.Name, amount)
	}
}

func advanceCard(target int) func(*Engine, *Game, *Player) string {
	return func(e *Engine, g *Game, p *Player) string {
		e.advanceTo(g, p, target)
		return fmt.Sprintf("%s advanced to %s", p.Name, g.Properties[target].Name)
	}
}

func backCard(steps int) func(*Engine, *Game, *Player) string {
	return func(_ *Engine, g *Game, p *Player) string {
		moveBack(p, steps)
		return fmt.Sprintf("%s moved back to %s", p.Name, g.Properties[p.Position].Name)
	}
}

func jailCard(e *Engine, g *Game, p *Player) string {
	e.sendToJail(g, p)
	return fmt.Sprintf("%s is in Jail", p.Name)
}

func repairsCard(perHouse, perHotel int) func(*Engine, *Game, *Player) string {
	return func(_ *Engine, g *Game, p *Player) string {
		houses, hotels := 0, 0
		for _, id := range p.OwnedTileIDs {
			switch h := g.Properties[id].Houses; {
			case h == MaxHouses:
				hotels++
			case h > 0:
				houses += h
			}
		}
		cost := houses*perHouse + hotels*perHotel
		p.Cash -= cost
		return fmt.Sprintf("%s paid %d for %d houses and %d hotels", p.Name, cost, houses, hotels)
	}
}

func payEachCard(amount int) func(*Engine, *Game, *Player) string {
	return func(_ *Engine, g *Game, p *Player) string {
		total := 0
		for i := range g.Players {
			other := &g.Players[i]
			if other.ID == p.ID || !other.InPlay() {
				continue
			}
			other.Cash += amount
			total += amount
		}
		p.Cash -= total
		return fmt.Sprintf("%s paid %d to the other players", p.Name, total)
	}
}

func collectEachCard(amount int) func(*Engine, *Game, *Player) string {
	return func(_ *Engine, g *Game, p *Player) string {
		total := 0
		for i := range g.Players {
			other := &g.Players[i]
			if other.ID == p.ID || !other.InPlay() {
				continue
			}
			other.Cash -= amount
			total += amount
		}
		p.Cash += total
		return fmt.Sprintf("%s collected %d from the other players", p.Name, total)
	}
}
