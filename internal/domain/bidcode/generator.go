// Package bidcode issues the human readable auction codes
// (BID-<YYYYMM>-<8 base36 chars>[-SUFFIX]).
package bidcode

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"freight-bid-service/internal/domain/shared"
)

const (
	codePrefix   = "BID"
	bucketLayout = "200601"
	randomLength = 8
	alphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// MaxRetries is how many fresh candidates are tried after the first one collides
	MaxRetries = 5
)

// RandSource provides random numbers for the code's random portion
type RandSource interface {
	// Intn returns a random integer in [0, n). Panics if n <= 0.
	Intn(n int) int
}

type cryptoRandSource struct{}

func (cryptoRandSource) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("cryptoRandSource.Intn: n must be positive, got %d", n))
	}
	nBig, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(nBig.Int64())
}

// ExistsFunc reports whether a code is already taken
type ExistsFunc func(ctx context.Context, code string) (bool, error)

type Generator struct {
	rand RandSource
	now  func() time.Time
}

type Option func(*Generator)

// WithRandSource replaces the crypto/rand source
func WithRandSource(src RandSource) Option {
	return func(g *Generator) {
		g.rand = src
	}
}

// WithClock replaces time.Now for the time bucket
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		rand: cryptoRandSource{},
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a fresh candidate without checking uniqueness
func (g *Generator) Generate() string {
	var sb strings.Builder
	sb.Grow(randomLength)
	for i := 0; i < randomLength; i++ {
		sb.WriteByte(alphabet[g.rand.Intn(len(alphabet))])
	}
	return fmt.Sprintf("%s-%s-%s", codePrefix, g.now().Format(bucketLayout), sb.String())
}

// Resolve finds a code that is not taken yet. The preferred base, when
// given, is tried first; later attempts use fresh random codes. The suffix
// is kept on every candidate. Resolve only reads; the caller stores the
// record that claims the code.
func (g *Generator) Resolve(ctx context.Context, exists ExistsFunc, preferred, suffix string) (string, error) {
	suffix = NormalizeSuffix(suffix)

	base := strings.ToUpper(strings.TrimSpace(preferred))
	if base == "" {
		base = g.Generate()
	}

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			base = g.Generate()
		}
		candidate := withSuffix(base, suffix)

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking code %s: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: no free auction code after %d attempts", shared.ErrGenerationExhausted, MaxRetries+1)
}

// NormalizeSuffix trims and upper-cases a user supplied suffix. Inner
// whitespace becomes a dash.
func NormalizeSuffix(suffix string) string {
	return strings.ToUpper(strings.Join(strings.Fields(suffix), "-"))
}

func withSuffix(base, suffix string) string {
	if suffix == "" {
		return base
	}
	return base + "-" + suffix
}
