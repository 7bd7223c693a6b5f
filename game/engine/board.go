package engine

// tileDef is the static part of a tile definition
type tileDef struct {
	name  string
	kind  TileKind
	group ColorGroup
	price int
	rent  [6]int
}

var boardCatalog = [BoardSize]tileDef{
	{name: "Start", kind: KindStart},
	{name: "Cobble Lane", kind: KindProperty, group: GroupBrown, price: 60, rent: [6]int{2, 10, 30, 90, 160, 250}},
	{name: "Tannery Row", kind: KindProperty, group: GroupBrown, price: 60, rent: [6]int{4, 20, 60, 180, 320, 450}},
	{name: "Community Chest", kind: KindCommunityChest},
	{name: "Income Tax", kind: KindTax},
	{name: "North Station", kind: KindRailroad, price: 200},
	{name: "Willow Street", kind: KindProperty, group: GroupLightBlue, price: 100, rent: [6]int{6, 30, 90, 270, 400, 550}},
	{name: "Chance", kind: KindChance},
	{name: "Orchard Avenue", kind: KindProperty, group: GroupLightBlue, price: 100, rent: [6]int{6, 30, 90, 270, 400, 550}},
	{name: "Canal Street", kind: KindProperty, group: GroupLightBlue, price: 120, rent: [6]int{8, 40, 100, 300, 450, 600}},
	{name: "Jail", kind: KindJail},
	{name: "Market Square", kind: KindProperty, group: GroupPink, price: 140, rent: [6]int{10, 50, 150, 450, 625, 750}},
	{name: "Power Plant", kind: KindUtility, price: 150},
	{name: "Guild Hall Road", kind: KindProperty, group: GroupPink, price: 140, rent: [6]int{10, 50, 150, 450, 625, 750}},
	{name: "Cathedral Walk", kind: KindProperty, group: GroupPink, price: 160, rent: [6]int{12, 60, 180, 500, 700, 900}},
	{name: "East Station", kind: KindRailroad, price: 200},
	{name: "Harbor Road", kind: KindProperty, group: GroupOrange, price: 180, rent: [6]int{14, 70, 200, 550, 750, 950}},
	{name: "Community Chest", kind: KindCommunityChest},
	{name: "Lighthouse Lane", kind: KindProperty, group: GroupOrange, price: 180, rent: [6]int{14, 70, 200, 550, 750, 950}},
	{name: "Quay Street", kind: KindProperty, group: GroupOrange, price: 200, rent: [6]int{16, 80, 220, 600, 800, 1000}},
	{name: "Free Parking", kind: KindFreeParking},
	{name: "Theatre Square", kind: KindProperty, group: GroupRed, price: 220, rent: [6]int{18, 90, 250, 700, 875, 1050}},
	{name: "Chance", kind: KindChance},
	{name: "Opera Row", kind: KindProperty, group: GroupRed, price: 220, rent: [6]int{18, 90, 250, 700, 875, 1050}},
	{name: "Gallery Avenue", kind: KindProperty, group: GroupRed, price: 240, rent: [6]int{20, 100, 300, 750, 925, 1100}},
	{name: "South Station", kind: KindRailroad, price: 200},
	{name: "Exchange Street", kind: KindProperty, group: GroupYellow, price: 260, rent: [6]int{22, 110, 330, 800, 975, 1150}},
	{name: "Merchant Way", kind: KindProperty, group: GroupYellow, price: 260, rent: [6]int{22, 110, 330, 800, 975, 1150}},
	{name: "Waterworks", kind: KindUtility, price: 150},
	{name: "Bankside", kind: KindProperty, group: GroupYellow, price: 280, rent: [6]int{24, 120, 360, 850, 1025, 1200}},
	{name: "Go To Jail", kind: KindGoToJail},
	{name: "Parkview Terrace", kind: KindProperty, group: GroupGreen, price: 300, rent: [6]int{26, 130, 390, 900, 1100, 1275}},
	{name: "Embassy Row", kind: KindProperty, group: GroupGreen, price: 300, rent: [6]int{26, 130, 390, 900, 1100, 1275}},
	{name: "Community Chest", kind: KindCommunityChest},
	{name: "Regent Circle", kind: KindProperty, group: GroupGreen, price: 320, rent: [6]int{28, 150, 450, 1000, 1200, 1400}},
	{name: "West Station", kind: KindRailroad, price: 200},
	{name: "Chance", kind: KindChance},
	{name: "Crown Heights", kind: KindProperty, group: GroupDarkBlue, price: 350, rent: [6]int{35, 175, 500, 1100, 1300, 1500}},
	{name: "Luxury Tax", kind: KindTax},
	{name: "Palace Gardens", kind: KindProperty, group: GroupDarkBlue, price: 400, rent: [6]int{50, 200, 600, 1400, 1700, 2000}},
}

// Fixed tax amounts keyed by tile id
var taxAmounts = map[int]int{
	4:  200,
	38: 100,
}

// House cost per color group: four tiers, two groups per tier
var houseCosts = map[ColorGroup]int{
	GroupBrown:     50,
	GroupLightBlue: 50,
	GroupPink:      100,
	GroupOrange:    100,
	GroupRed:       150,
	GroupYellow:    150,
	GroupGreen:     200,
	GroupDarkBlue:  200,
}

var railroadRents = [4]int{25, 50, 100, 200}

const (
	utilitySingleMultiplier = 4
	utilityPairMultiplier   = 10
	utilityFallbackRoll     = 7
)

// NewBoard returns the 40 tiles of a fresh board, all unowned
func NewBoard() []Tile {
	tiles := make([]Tile, BoardSize)
	for i, def := range boardCatalog {
		tiles[i] = Tile{
			ID:        i,
			Name:      def.name,
			Kind:      def.kind,
			Group:     def.group,
			Price:     def.price,
			RentTable: def.rent,
		}
	}
	return tiles
}

// HouseCost returns the cost of one house in the group, or 0 for non-buildable groups
func HouseCost(group ColorGroup) int {
	return houseCosts[group]
}

// TaxAmount returns the fixed tax charged on a tile
func TaxAmount(tileID int) int {
	return taxAmounts[tileID]
}

// GroupTileIDs lists the board positions belonging to a color group
func GroupTileIDs(group ColorGroup) []int {
	if group == GroupNone {
		return nil
	}
	var ids []int
	for i, def := range boardCatalog {
		if def.group == group {
			ids = append(ids, i)
		}
	}
	return ids
}

// Groups returns every color group in board order
func Groups() []ColorGroup {
	return []ColorGroup{
		GroupBrown, GroupLightBlue, GroupPink, GroupOrange,
		GroupRed, GroupYellow, GroupGreen, GroupDarkBlue,
	}
}

// OwnsGroup reports whether playerID holds every tile of the group
func OwnsGroup(g *Game, playerID string, group ColorGroup) bool {
	ids := GroupTileIDs(group)
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if g.Properties[id].Owner != playerID {
			return false
		}
	}
	return true
}

func countOwnedOfKind(g *Game, playerID string, kind TileKind) int {
	n := 0
	for i := range g.Properties {
		t := &g.Properties[i]
		if t.Kind == kind && t.Owner == playerID {
			n++
		}
	}
	return n
}
