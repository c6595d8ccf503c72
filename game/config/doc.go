// Package config provides ruleset management for the warp game server.
//
// The config package handles:
//   - Loading rulesets from JSON files through an afero.Fs
//   - Validation with engine.ValidateGameConfig
//   - Default ruleset selection
//   - Discovery, listing and saving
//
// Ruleset Format:
//
// A ruleset is an engine.GameConfig stored as <id>.json in the configs
// directory. It sets the board size, the start zone height, the warp economy,
// each player's palette, terrain obstructions, units placed before the first
// turn and extra abilities granted to unit types:
//
//	{
//	  "name": "kings",
//	  "description": "Each side starts with a king",
//	  "board_length": 10,
//	  "board_height": 10,
//	  "start_zone_height": 3,
//	  "warp_per_turn": 3,
//	  "palette": {"pawn": 4, "knight": 2},
//	  "obstructions": [{"x": 4, "y": 4}],
//	  "starting_units": [{"type": "king", "color": "white", "x": 4, "y": 0}],
//	  "abilities": {"king": ["wall"]}
//	}
//
// Usage:
//
//	manager, err := config.NewManager(afero.NewOsFs(), "configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg, err := manager.LoadConfig("kings")
//	id, def := manager.GetDefault()
//
// Files that fail validation are skipped by ListConfigs and reported as
// ErrInvalidConfig by LoadConfig. When the directory holds no usable file the
// built-in engine.DefaultGameConfig is the default.
package config
