package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	t.Parallel()

	a, b := New(99), New(99)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}

func TestSeed(t *testing.T) {
	t.Parallel()

	fixed := int64(12345)
	seed, ok := Seed(&fixed)
	assert.True(t, ok)
	assert.Equal(t, fixed, seed)

	_, ok = Seed(nil)
	assert.False(t, ok)
}

func TestDerive(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Derive(1, 3), Derive(1, 3))
	assert.NotEqual(t, Derive(1, 3), Derive(1, 4))
	assert.NotEqual(t, Derive(1, 3), Derive(2, 3))
}
