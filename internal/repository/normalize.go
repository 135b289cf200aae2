package repository

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/locvowork/performpulse/internal/domain"
)

// DefaultFeedback is attached to records that arrive without feedback text.
const DefaultFeedback = "This employee demonstrates strong potential and consistently meets expectations. " +
	"Key strengths include problem-solving and teamwork. Areas for development involve taking more " +
	"initiative in leadership roles. Overall a valuable member of the team."

const (
	MinRating = 1.0
	MaxRating = 5.0
)

// RatingMode controls how missing performance ratings are synthesized.
type RatingMode string

const (
	// RatingStable derives the rating from the employee id, so every fetch agrees.
	RatingStable RatingMode = "stable"
	// RatingVolatile draws a fresh rating on every fetch.
	RatingVolatile RatingMode = "volatile"
)

// ParseRatingMode maps a config value to a RatingMode, defaulting to stable.
func ParseRatingMode(s string) RatingMode {
	if RatingMode(strings.ToLower(strings.TrimSpace(s))) == RatingVolatile {
		return RatingVolatile
	}
	return RatingStable
}

// Normalizer fills in the rating and feedback of directory records.
type Normalizer struct {
	mode RatingMode

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewNormalizer(mode RatingMode) *Normalizer {
	return &Normalizer{
		mode: mode,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Normalize keeps an in-range upstream rating and non-blank feedback, and
// synthesizes whatever is missing.
func (n *Normalizer) Normalize(e domain.Employee) domain.Employee {
	if e.PerformanceRating < MinRating || e.PerformanceRating > MaxRating {
		e.PerformanceRating = n.rating(e.ID)
	}
	if strings.TrimSpace(e.Feedback) == "" {
		e.Feedback = DefaultFeedback
	}
	return e
}

func (n *Normalizer) rating(id int) float64 {
	var u float64
	if n.mode == RatingVolatile {
		n.mu.Lock()
		u = n.rnd.Float64()
		n.mu.Unlock()
	} else {
		u = rand.New(rand.NewSource(int64(id))).Float64()
	}
	return RoundRating(MinRating + u*(MaxRating-MinRating))
}

// RoundRating rounds half away from zero to one decimal place.
func RoundRating(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}
