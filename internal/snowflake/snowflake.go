// Package snowflake produces sortable 64-bit identifiers carrying their creation time.
//
// Layout, most significant bit first:
//
//	[ milliseconds since Epoch : 42 ][ random : 12 ][ reserved : 10 ]
//
// Identifiers are exchanged as decimal strings. Two identifiers minted in the
// same millisecond collide with probability 1/4096; there is no collision
// detection or retry.
package snowflake

import (
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"
)

const (
	timestampShift = 22
	randomShift    = 10
	randomBits     = 12
	// RandomSpace is the number of distinct random values per millisecond.
	RandomSpace = 1 << randomBits
)

// Epoch is the custom epoch timestamps are measured from.
var Epoch = time.Date(2005, time.May, 20, 0, 0, 0, 0, time.UTC)

// ErrInvalidID is returned when an identifier is not a decimal 64-bit integer.
var ErrInvalidID = errors.New("invalid snowflake id")

// ID is the decimal string form of a snowflake.
type ID string

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool {
	return id == ""
}

// Int64 returns the integer the identifier encodes.
func (id ID) Int64() (int64, error) {
	value, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || value < 0 {
		return 0, ErrInvalidID
	}
	return value, nil
}

// Less orders identifiers by the integer they encode, which follows creation order.
// Malformed identifiers sort first.
func (id ID) Less(other ID) bool {
	a, errA := id.Int64()
	b, errB := other.Int64()
	switch {
	case errA != nil && errB != nil:
		return id < other
	case errA != nil:
		return true
	case errB != nil:
		return false
	}
	return a < b
}

// Generator mints identifiers. The zero value is not usable; use New or Default.
type Generator struct {
	mu   sync.Mutex
	now  func() time.Time
	rand *rand.Rand
}

// Option customises a Generator.
type Option func(*Generator)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithSeed makes the random component deterministic.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rand = rand.New(rand.NewSource(seed))
	}
}

// New builds a generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		now:  time.Now,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var defaultGenerator = New()

// Generate mints an identifier with the package-level generator.
func Generate() ID {
	return defaultGenerator.Generate()
}

// Generate mints a new identifier.
func (g *Generator) Generate() ID {
	g.mu.Lock()
	now := g.now()
	random := g.rand.Int63n(RandomSpace)
	g.mu.Unlock()

	return Compose(now, random)
}

// Compose builds the identifier for the given instant and random component.
// Only the low 12 bits of random are kept, so any value, negative ones
// included, leaves the timestamp bits intact.
func Compose(at time.Time, random int64) ID {
	elapsed := at.UnixMilli() - Epoch.UnixMilli()
	if elapsed < 0 {
		elapsed = 0
	}
	value := elapsed<<timestampShift | (random&(RandomSpace-1))<<randomShift
	return ID(strconv.FormatInt(value, 10))
}

// Timestamp recovers the creation instant encoded in the identifier, in UTC,
// truncated to the millisecond.
func Timestamp(id ID) (time.Time, error) {
	value, err := id.Int64()
	if err != nil {
		return time.Time{}, err
	}
	millis := value>>timestampShift + Epoch.UnixMilli()
	return time.UnixMilli(millis).UTC(), nil
}

// RandomComponent returns the 12-bit disambiguator of the identifier.
func RandomComponent(id ID) (int64, error) {
	value, err := id.Int64()
	if err != nil {
		return 0, err
	}
	return (value >> randomShift) & (RandomSpace - 1), nil
}
