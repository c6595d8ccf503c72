// Package engine provides the core rules of the warp tactics game.
//
// Two colors take turns moving and deploying units on a rectangular board.
// Every unit carries a movement graph (see package graph) centred on its
// square; squares held by other pieces block the matching graph nodes, and a
// move is legal when the destination's neighbourhood can be reached from the
// unit's square.
//
// Core Types:
//
// Game implements the Engine interface and owns the board, both players and
// all units. GameConfig is a ruleset loaded from JSON, Roster the table of
// unit templates and AbilityRegistry the named abilities units may use.
//
// Usage:
//
//	g, err := engine.NewGame(engine.DefaultGameConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ok, err := g.Deploy(engine.Warpling, engine.White, 4, 0, true)
//	ok, err = g.Move(1, 4, 1)
//	g.NextTurn()
//	state := g.Snapshot()
//
// Errors:
//
// A move, deploy or ability that breaks the rules returns false with a nil
// error and leaves the game untouched. Referring to something that does not
// exist (a unit ID, a unit type, an ability) returns one of the sentinel
// errors wrapped with context.
//
// A Game is not safe for concurrent use.
package engine
