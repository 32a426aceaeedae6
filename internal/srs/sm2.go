// Package srs implements the SM-2 derived scheduling policy used for
// flashcard reviews.
package srs

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/example/studyhub/pkg/models"
)

// Bounds of the learner-facing confidence scale.
const (
	MinConfidence = 1
	MaxConfidence = 5
)

const (
	initialEaseFactor = 2.5
	minEaseFactor     = 1.3

	// Quality at or above this counts as successful recall. Quality is
	// confidence-1, so only ratings of 4 and 5 succeed.
	successQuality = 3

	firstInterval  = 1
	secondInterval = 6
)

// ErrInvalidConfidence is returned for ratings outside [1,5].
var ErrInvalidConfidence = errors.New("srs: confidence must be between 1 and 5")

// NewReviewState returns the state a freshly created card starts with.
// The card is due immediately.
func NewReviewState(now time.Time) models.ReviewState {
	return models.ReviewState{
		EaseFactor:   initialEaseFactor,
		IntervalDays: 0,
		Repetitions:  0,
		NextReviewAt: now,
	}
}

// Schedule computes the scheduling state a card moves to after the learner
// rates a review. The input state is never modified; callers persist the
// returned state. All time arithmetic uses the supplied now, so identical
// inputs always produce identical output.
//
// A rating below 4 resets the repetition streak and schedules the card
// again tomorrow, leaving the ease factor untouched. A rating of 4 or 5
// extends the streak: the ease factor moves by the SM-2 delta (floored at
// 1.3, no ceiling) and the interval runs 1 day, then 6, then
// round(previous interval x new ease).
func Schedule(state models.ReviewState, confidence int, now time.Time) (models.ReviewState, error) {
	if confidence < MinConfidence || confidence > MaxConfidence {
		return models.ReviewState{}, ErrInvalidConfidence
	}

	quality := confidence - 1
	next := state

	if quality < successQuality {
		next.Repetitions = 0
		next.IntervalDays = firstInterval
	} else {
		next.Repetitions = state.Repetitions + 1
		next.EaseFactor = adjustEase(state.EaseFactor, quality)
		switch next.Repetitions {
		case 1:
			next.IntervalDays = firstInterval
		case 2:
			next.IntervalDays = secondInterval
		default:
			next.IntervalDays = int(math.Round(float64(state.IntervalDays) * next.EaseFactor))
		}
	}

	next.NextReviewAt = now.Add(time.Duration(next.IntervalDays) * 24 * time.Hour)
	reviewedAt := now
	next.LastReviewedAt = &reviewedAt
	next.LastConfidence = &confidence
	return next, nil
}

func adjustEase(ease float64, quality int) float64 {
	q := float64(quality)
	ease += 0.1 - (5-q)*(0.08+(5-q)*0.02)
	return math.Max(ease, minEaseFactor)
}

// SortDue orders cards for a study session: most overdue first, lower ease
// breaking ties so harder cards surface sooner.
func SortDue(cards []models.Flashcard) {
	sort.SliceStable(cards, func(i, j int) bool {
		if !cards[i].NextReviewAt.Equal(cards[j].NextReviewAt) {
			return cards[i].NextReviewAt.Before(cards[j].NextReviewAt)
		}
		return cards[i].EaseFactor < cards[j].EaseFactor
	})
}

// IsMastered reports whether a card counts as learned: a sustained streak
// of confident reviews with a matured interval.
func IsMastered(state models.ReviewState) bool {
	return state.Repetitions >= 5 &&
		state.LastConfidence != nil && *state.LastConfidence >= 4 &&
		state.IntervalDays >= 30
}
