// Package config provides rule set management and process settings.
//
// The config package handles:
//   - Loading rule sets from JSON files
//   - Rule set validation
//   - Default rule set management
//   - Rule set discovery and listing
//   - Reading process settings from the environment
//
// Rule Sets:
//
// Rule sets are stored as JSON files in the configs directory. A file only
// needs the fields it changes; everything else keeps the classic value.
// The board, rent tables and card decks are fixed and not configurable.
// Each rule set defines:
//   - Starting cash and the bonus for passing Start
//   - Seat limits and how many bots may join
//   - Bot buy and trade acceptance probabilities
//   - Interest charged when lifting a mortgage
//   - Bot display names
//
// The classic rules are built in, so "classic" always resolves even when
// classic.json is absent.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	quick, err := manager.LoadRules("quick")
//	rules, err := manager.ListRules()
//
// Settings:
//
// Settings are read with caarlos0/env after an optional .env file has been
// loaded. Command-line flags in main override them.
//
//	settings, err := config.LoadSettings()
//	fmt.Println(settings.Addr())
package config
