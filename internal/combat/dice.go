package combat

import (
	crand "crypto/rand"
	"encoding/binary"
	"math"
	"math/rand"
)

// Roller is the randomness source of one resolution call. Implementations are
// not safe for concurrent use; every call builds its own.
type Roller interface {
	// D20 returns a die value in [1, 20].
	D20() int
	// Float64 returns a value in [0, 1).
	Float64() float64
}

type seededRoller struct {
	rng *rand.Rand
}

// NewSeededRoller returns a roller that is deterministic for a given seed.
func NewSeededRoller(seed int64) Roller {
	return &seededRoller{rng: rand.New(rand.NewSource(seed))}
}

// NewRandomRoller returns a roller seeded from crypto/rand.
func NewRandomRoller() Roller {
	return NewSeededRoller(newSeed())
}

func (r *seededRoller) D20() int         { return r.rng.Intn(20) + 1 }
func (r *seededRoller) Float64() float64 { return r.rng.Float64() }

type fixedRoller struct {
	value float64
}

// NewFixedRoller returns a roller that answers every draw with value. Die
// rolls map value onto the d20 as 1 + floor(value × 20).
func NewFixedRoller(value float64) Roller {
	return fixedRoller{value: value}
}

func (r fixedRoller) D20() int {
	return clampRoll(1 + int(math.Floor(r.value*20)))
}

func (r fixedRoller) Float64() float64 { return r.value }

type sequenceRoller struct {
	rolls    []int
	next     int
	fallback Roller
}

// NewSequenceRoller replays rolls in order. Once the sequence is exhausted,
// and for every Float64 draw, it defers to fallback.
func NewSequenceRoller(rolls []int, fallback Roller) Roller {
	copied := make([]int, len(rolls))
	copy(copied, rolls)
	return &sequenceRoller{rolls: copied, fallback: fallback}
}

func (r *sequenceRoller) D20() int {
	if r.next < len(r.rolls) {
		roll := r.rolls[r.next]
		r.next++
		return clampRoll(roll)
	}
	return r.fallback.D20()
}

func (r *sequenceRoller) Float64() float64 { return r.fallback.Float64() }

func clampRoll(roll int) int {
	return max(1, min(20, roll))
}

func newSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("combat: crypto/rand unavailable: " + err.Error())
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}
