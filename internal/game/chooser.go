package game

import (
	rand "math/rand/v2"
	"sync"
)

// Chooser produces the computer's choice for a round
type Chooser interface {
	Choose() Choice
}

// ChooserFunc adapts a function to the Chooser interface
type ChooserFunc func() Choice

func (f ChooserFunc) Choose() Choice { return f() }

// RandomChooser picks uniformly among stone, paper and scissors. Each call is
// independent of the previous ones.
type RandomChooser struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomChooser creates a chooser drawing from rng. Use randutil.New for a
// reproducible sequence.
func NewRandomChooser(rng *rand.Rand) *RandomChooser {
	return &RandomChooser{rng: rng}
}

func (r *RandomChooser) Choose() Choice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Choices[r.rng.IntN(len(Choices))]
}

// ScriptedChooser replays a fixed sequence of choices, cycling when exhausted
type ScriptedChooser struct {
	mu      sync.Mutex
	choices []Choice
	index   int
}

// NewScriptedChooser creates a chooser that returns choices in order
func NewScriptedChooser(choices ...Choice) *ScriptedChooser {
	return &ScriptedChooser{choices: choices}
}

func (s *ScriptedChooser) Choose() Choice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.choices) == 0 {
		return Stone
	}
	c := s.choices[s.index%len(s.choices)]
	s.index++
	return c
}
