// Package shortcode generates random short codes for URL mappings.
package shortcode

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// DefaultAlphabet is the 62-symbol alphanumeric alphabet used when none is configured.
	DefaultAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// DefaultLength is the code length used when none is configured.
	DefaultLength = 6
)

// Generator produces random short codes of a fixed length drawn from a fixed
// alphabet. Codes come from a cryptographically secure source, so they are
// not predictable or enumerable. The generator never consults storage;
// uniqueness is the caller's concern.
type Generator struct {
	alphabet string
	length   int
}

// NewGenerator returns a Generator for the given alphabet and length.
// Empty or non-positive arguments fall back to the defaults.
func NewGenerator(alphabet string, length int) *Generator {
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	if length <= 0 {
		length = DefaultLength
	}

	return &Generator{
		alphabet: alphabet,
		length:   length,
	}
}

// Generate returns a new random candidate code.
func (g *Generator) Generate() (string, error) {
	const op = "shortcode.Generator.Generate"

	code, err := gonanoid.Generate(g.alphabet, g.length)
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate short code: %w", op, err)
	}

	return code, nil
}

// Length returns the configured code length.
func (g *Generator) Length() int {
	return g.length
}

// Alphabet returns the configured alphabet.
func (g *Generator) Alphabet() string {
	return g.alphabet
}
