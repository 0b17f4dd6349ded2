package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Generator produces opaque identifiers for persisted records.
type Generator interface {
	NewID() (string, error)
}

type RandomGenerator struct {
	size int
}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{size: 16}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, g.size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
