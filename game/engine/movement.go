package engine

// moveForward advances a token and pays the start bonus once per wrap
func (e *Engine) moveForward(g *Game, p *Player, steps int) {
	from := p.Position
	p.Position = (from + steps) % BoardSize
	if from+steps >= BoardSize {
		p.Cash += e.rules.PassStartBonus
		e.logf(g, "%s passed Start and collected %d", p.Name, e.rules.PassStartBonus)
	}
}

// advanceTo moves a token forward to target, wrapping past Start if needed
func (e *Engine) advanceTo(g *Game, p *Player, target int) {
	steps := (target - p.Position + BoardSize) % BoardSize
	if steps == 0 {
		return
	}
	e.moveForward(g, p, steps)
}

// moveBack moves a token backwards without any start bonus
func moveBack(p *Player, steps int) {
	p.Position = ((p.Position-steps)%BoardSize + BoardSize) % BoardSize
}

func (e *Engine) sendToJail(g *Game, p *Player) {
	p.Position = JailTileID
	p.InJail = true
	e.logf(g, "%s was sent to Jail", p.Name)
}
