// Package passgen generates random passwords.
//
// Every character is drawn independently: one of three classes (letters,
// digits, punctuation) is picked with equal probability, then a symbol is
// picked uniformly from that class.
package passgen

import (
	crand "crypto/rand"
	"math/rand/v2"
	"strings"
)

// Length is the number of characters in a generated password.
const Length = 16

// Character classes. Punctuation is the 32-symbol ASCII set.
const (
	Letters     = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Digits      = "0123456789"
	Punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// Class identifies which character class a symbol belongs to.
type Class int

const (
	ClassNone Class = iota
	ClassLetter
	ClassDigit
	ClassPunctuation
)

func (c Class) String() string {
	switch c {
	case ClassLetter:
		return "letter"
	case ClassDigit:
		return "digit"
	case ClassPunctuation:
		return "punctuation"
	default:
		return "none"
	}
}

var classes = [...]string{Letters, Digits, Punctuation}

// Generator produces passwords from a random source.
type Generator struct {
	rng *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithSource sets the random source. Tests use a fixed-seed PCG source.
func WithSource(src rand.Source) Option {
	return func(g *Generator) {
		g.rng = rand.New(src)
	}
}

// New creates a Generator. Without options it draws from a ChaCha8 stream
// seeded from the operating system's CSPRNG.
func New(opts ...Option) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		var seed [32]byte
		crand.Read(seed[:])
		g.rng = rand.New(rand.NewChaCha8(seed))
	}
	return g
}

// Generate returns a new password of Length characters.
func (g *Generator) Generate() string {
	var b strings.Builder
	b.Grow(Length)
	for range Length {
		set := classes[g.rng.IntN(len(classes))]
		b.WriteByte(set[g.rng.IntN(len(set))])
	}
	return b.String()
}

// Classify reports the class of r, or ClassNone if r is outside all three.
func Classify(r rune) Class {
	switch {
	case strings.ContainsRune(Letters, r):
		return ClassLetter
	case strings.ContainsRune(Digits, r):
		return ClassDigit
	case strings.ContainsRune(Punctuation, r):
		return ClassPunctuation
	default:
		return ClassNone
	}
}

// Breakdown counts the characters of password in each class.
func Breakdown(password string) map[Class]int {
	counts := make(map[Class]int, 4)
	for _, r := range password {
		counts[Classify(r)]++
	}
	return counts
}
