// Command boardinfo prints the board catalog and colour-group economics:
// what each group costs to assemble and develop, and what it earns back.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/landlord/game/engine"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "boardinfo",
		Usage: "inspect the Landlord board",
		Commands: []*cli.Command{
			{
				Name:  "tiles",
				Usage: "list the 40 tiles",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "kind", Usage: "only tiles of this kind (property, railroad, utility, tax, ...)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return printTiles(cmd.Root().Writer, engine.TileKind(cmd.String("kind")))
				},
			},
			{
				Name:  "groups",
				Usage: "summarize colour groups: cost to own, cost to develop, rent at each level",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return printGroups(cmd.Root().Writer)
				},
			},
			{
				Name:      "rent",
				Usage:     "show the rent table of one tile",
				ArgsUsage: "<tile-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("rent: expected one tile id")
					}
					id, err := strconv.Atoi(cmd.Args().First())
					if err != nil || id < 0 || id >= engine.BoardSize {
						return fmt.Errorf("rent: tile id must be between 0 and %d", engine.BoardSize-1)
					}
					return printRent(cmd.Root().Writer, id)
				},
			},
		},
	}
}

func printTiles(w io.Writer, kind engine.TileKind) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tKIND\tGROUP\tPRICE")
	for _, t := range engine.NewBoard() {
		if kind != "" && t.Kind != kind {
			continue
		}
		price := "-"
		if t.Price > 0 {
			price = strconv.Itoa(t.Price)
		}
		group := string(t.Group)
		if group == "" {
			group = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Kind, group, price)
	}
	return tw.Flush()
}

// groupSummary is the economics of one colour group
type groupSummary struct {
	Group      engine.ColorGroup
	Tiles      int
	Price      int // buying every tile
	HouseCost  int
	Develop    int // building hotels everywhere
	SetRent    int // per-visit rent across the group, undeveloped monopoly
	HotelRent  int // per-visit rent across the group, all hotels
	Mortgage   int
	HotelRatio float64 // hotel rent per unit invested
}

func summarizeGroup(board []engine.Tile, group engine.ColorGroup) groupSummary {
	s := groupSummary{Group: group, HouseCost: engine.HouseCost(group)}
	for _, id := range engine.GroupTileIDs(group) {
		t := &board[id]
		s.Tiles++
		s.Price += t.Price
		s.Develop += s.HouseCost * engine.MaxHouses
		s.SetRent += t.RentTable[0] * 2
		s.HotelRent += t.RentTable[engine.MaxHouses]
		s.Mortgage += engine.MortgageValue(t)
	}
	if invested := s.Price + s.Develop; invested > 0 {
		s.HotelRatio = float64(s.HotelRent) / float64(invested)
	}
	return s
}

func printGroups(w io.Writer) error {
	board := engine.NewBoard()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tTILES\tPRICE\tHOUSE\tDEVELOP\tSET RENT\tHOTEL RENT\tMORTGAGE\tRENT/INVESTED")
	for _, group := range engine.Groups() {
		s := summarizeGroup(board, group)
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\n",
			s.Group, s.Tiles, s.Price, s.HouseCost, s.Develop, s.SetRent, s.HotelRent, s.Mortgage, s.HotelRatio)
	}
	return tw.Flush()
}

func printRent(w io.Writer, id int) error {
	t := engine.NewBoard()[id]
	fmt.Fprintf(w, "%d %s (%s)\n", t.ID, t.Name, t.Kind)

	switch t.Kind {
	case engine.KindProperty:
		fmt.Fprintf(w, "price %d, house %d, mortgage %d\n", t.Price, engine.HouseCost(t.Group), engine.MortgageValue(&t))
		fmt.Fprintf(w, "  base        %d\n", t.RentTable[0])
		fmt.Fprintf(w, "  full group  %d\n", t.RentTable[0]*2)
		for h := 1; h < engine.MaxHouses; h++ {
			fmt.Fprintf(w, "  %d house(s)  %d\n", h, t.RentTable[h])
		}
		fmt.Fprintf(w, "  hotel       %d\n", t.RentTable[engine.MaxHouses])
	case engine.KindRailroad:
		fmt.Fprintf(w, "price %d; rent by railroads owned: 25, 50, 100, 200\n", t.Price)
	case engine.KindUtility:
		fmt.Fprintf(w, "price %d; rent 4x dice, 10x dice with both utilities\n", t.Price)
	case engine.KindTax:
		fmt.Fprintf(w, "tax %d\n", engine.TaxAmount(t.ID))
	default:
		fmt.Fprintln(w, "no rent")
	}
	return nil
}
