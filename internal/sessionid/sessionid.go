// Package sessionid generates time-sortable identifiers for game sessions.
//
// An ID is a UUIDv7 (48-bit millisecond timestamp, version and variant bits,
// random tail) written as 26 lower-case base32 characters.
package sessionid

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"io"
	"strings"

	"github.com/coder/quartz"
)

// Crockford's base32 alphabet; ascending ASCII order keeps IDs sortable
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the length of every ID
const Length = 26

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// Generator creates IDs from a clock and a source of random bytes
type Generator struct {
	clock  quartz.Clock
	random io.Reader
}

// NewGenerator creates a generator. A nil clock uses the wall clock and a nil
// random source uses crypto/rand.
func NewGenerator(clock quartz.Clock, random io.Reader) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if random == nil {
		random = rand.Reader
	}
	return &Generator{clock: clock, random: random}
}

// New returns an ID from the wall clock and crypto/rand
func New() string {
	id, err := NewGenerator(nil, nil).Generate()
	if err != nil {
		panic("failed to generate session id: " + err.Error())
	}
	return id
}

// Generate creates a new ID
func (g *Generator) Generate() (string, error) {
	var uuid [16]byte

	ms := g.clock.Now().UnixMilli()
	for i := 0; i < 6; i++ {
		uuid[i] = byte(ms >> (40 - 8*i))
	}
	if _, err := io.ReadFull(g.random, uuid[6:]); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	uuid[6] = (uuid[6] & 0x0f) | 0x70 // version 7
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // variant 10

	return encoding.EncodeToString(uuid[:]), nil
}

// Validate checks that id has the right length and alphabet
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("session id must be exactly %d characters, got %d", Length, len(id))
	}
	for i, c := range id {
		if !strings.ContainsRune(alphabet, c) {
			return fmt.Errorf("invalid character %c at position %d", c, i)
		}
	}
	if _, err := encoding.DecodeString(id); err != nil {
		return fmt.Errorf("invalid session id: %w", err)
	}
	return nil
}
