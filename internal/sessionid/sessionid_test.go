package sessionid

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	id := New()
	assert.Len(t, id, Length)
	assert.NoError(t, Validate(id))
}

func TestGenerateUnique(t *testing.T) {
	t.Parallel()

	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := New()
		assert.False(t, ids[id], "duplicate ID generated: %s", id)
		ids[id] = true
	}
}

func TestGenerateTimeSorted(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	g := NewGenerator(clock, nil)

	var ids []string
	for i := 0; i < 10; i++ {
		id, err := g.Generate()
		require.NoError(t, err)
		ids = append(ids, id)
		clock.Advance(time.Millisecond)
	}
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}
}

func TestGenerateDeterministic(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	clock.Set(time.UnixMilli(1_700_000_000_000))

	random := bytes.Repeat([]byte{0xab}, 10)
	a, err := NewGenerator(clock, bytes.NewReader(random)).Generate()
	require.NoError(t, err)
	b, err := NewGenerator(clock, bytes.NewReader(random)).Generate()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestGenerateRandomFailure(t *testing.T) {
	t.Parallel()

	_, err := NewGenerator(nil, failingReader{}).Generate()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", New(), false},
		{"too short", "0123", true},
		{"too long", New() + "0", true},
		{"bad character", "0123456789abcdefghjkmnpqru", true},
		{"upper case", "0123456789ABCDEFGHJKMNPQRS", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
