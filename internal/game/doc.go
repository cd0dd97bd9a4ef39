// Package game implements the round rules for stone, paper, scissors.
//
// Resolve decides a single round from the user's point of view:
//
//	game.Resolve(game.Stone, game.Scissors) // UserWin
//	game.Resolve(game.Paper, game.Scissors) // ComputerWin
//	game.Resolve(game.Paper, game.Paper)    // Tie
//
// Stone beats scissors, scissors beats paper and paper beats stone. No other
// winning relation exists.
//
// # Computer choices
//
// The computer's move comes from a Chooser. RandomChooser draws uniformly from
// the three choices; pass it a seeded generator for reproducible play:
//
//	rng := randutil.New(42)
//	c := game.NewRandomChooser(rng)
//
// ScriptedChooser replays a fixed sequence and is what tests use to pin the
// computer's moves.
package game
