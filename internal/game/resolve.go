package game

// beats maps each choice to the one it defeats
var beats = map[Choice]Choice{
	Stone:    Scissors,
	Paper:    Stone,
	Scissors: Paper,
}

// Beats reports whether a defeats b
func Beats(a, b Choice) bool {
	loser, ok := beats[a]
	return ok && loser == b
}

// Resolve decides a round from the user's point of view. It is total over
// every pair of choices: equal choices tie, including two timed-out sides.
func Resolve(user, computer Choice) Outcome {
	switch {
	case user == computer:
		return Tie
	case Beats(user, computer):
		return UserWin
	default:
		return ComputerWin
	}
}
