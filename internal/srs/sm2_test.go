package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/studyhub/pkg/models"
)

var t0 = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestNewReviewState(t *testing.T) {
	state := NewReviewState(t0)

	assert.Equal(t, 2.5, state.EaseFactor)
	assert.Equal(t, 0, state.IntervalDays)
	assert.Equal(t, 0, state.Repetitions)
	assert.True(t, state.NextReviewAt.Equal(t0))
	assert.Nil(t, state.LastReviewedAt)
	assert.Nil(t, state.LastConfidence)
}

func TestScheduleRejectsInvalidConfidence(t *testing.T) {
	state := NewReviewState(t0)

	for _, confidence := range []int{-3, 0, 6, 100} {
		next, err := Schedule(state, confidence, t0)
		require.ErrorIs(t, err, ErrInvalidConfidence, "confidence %d", confidence)
		assert.Equal(t, models.ReviewState{}, next)
	}
}

func TestScheduleFailureResetsStreak(t *testing.T) {
	state := models.ReviewState{
		EaseFactor:   2.1,
		IntervalDays: 20,
		Repetitions:  4,
		NextReviewAt: t0,
	}

	// Anything below 4 counts as a failed recall.
	for _, confidence := range []int{1, 2, 3} {
		next, err := Schedule(state, confidence, t0)
		require.NoError(t, err)

		assert.Equal(t, 0, next.Repetitions, "confidence %d", confidence)
		assert.Equal(t, 1, next.IntervalDays, "confidence %d", confidence)
		assert.Equal(t, 2.1, next.EaseFactor, "ease must not change on failure")
		assert.True(t, next.NextReviewAt.Equal(t0.Add(24*time.Hour)))
	}
}

func TestScheduleFirstTwoSuccessesUseFixedIntervals(t *testing.T) {
	for _, confidence := range []int{4, 5} {
		state := NewReviewState(t0)

		first, err := Schedule(state, confidence, t0)
		require.NoError(t, err)
		assert.Equal(t, 1, first.Repetitions)
		assert.Equal(t, 1, first.IntervalDays)

		second, err := Schedule(first, confidence, t0.Add(24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 2, second.Repetitions)
		assert.Equal(t, 6, second.IntervalDays)
	}
}

func TestScheduleThirdSuccessScalesByEase(t *testing.T) {
	state := models.ReviewState{
		EaseFactor:   2.5,
		IntervalDays: 6,
		Repetitions:  2,
		NextReviewAt: t0,
	}

	// Confidence 5 is quality 4: the ease delta 0.1 - 1*(0.08+0.02) is zero,
	// so the ease holds at 2.5 and the interval becomes round(6*2.5).
	next, err := Schedule(state, 5, t0)
	require.NoError(t, err)
	assert.Equal(t, 3, next.Repetitions)
	assert.InDelta(t, 2.5, next.EaseFactor, 1e-9)
	assert.Equal(t, 15, next.IntervalDays)
	assert.True(t, next.NextReviewAt.Equal(t0.Add(15*24*time.Hour)))

	// Confidence 4 is quality 3: the ease drops by 0.14 even though the
	// review succeeded.
	next, err = Schedule(state, 4, t0)
	require.NoError(t, err)
	assert.Equal(t, 3, next.Repetitions)
	assert.InDelta(t, 2.36, next.EaseFactor, 1e-9)
	assert.Equal(t, 14, next.IntervalDays) // round(6*2.36)
}

func TestScheduleEaseNeverDropsBelowFloor(t *testing.T) {
	for _, startEase := range []float64{1.3, 1.35, 2.5} {
		state := models.ReviewState{EaseFactor: startEase, NextReviewAt: t0}
		now := t0
		for i := 0; i < 30; i++ {
			confidence := 4 // worst passing grade, largest downward ease delta
			if i%7 == 0 {
				confidence = 2
			}
			next, err := Schedule(state, confidence, now)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, next.EaseFactor, 1.3)
			state = next
			now = now.Add(24 * time.Hour)
		}
	}
}

func TestScheduleStampsReviewMetadata(t *testing.T) {
	now := t0.Add(37 * time.Minute)
	next, err := Schedule(NewReviewState(t0), 5, now)
	require.NoError(t, err)

	require.NotNil(t, next.LastReviewedAt)
	assert.True(t, next.LastReviewedAt.Equal(now))
	require.NotNil(t, next.LastConfidence)
	assert.Equal(t, 5, *next.LastConfidence)
}

func TestScheduleDoesNotMutateInput(t *testing.T) {
	reviewed := t0.Add(-48 * time.Hour)
	confidence := 4
	state := models.ReviewState{
		EaseFactor:     2.2,
		IntervalDays:   10,
		Repetitions:    3,
		NextReviewAt:   t0,
		LastReviewedAt: &reviewed,
		LastConfidence: &confidence,
	}

	_, err := Schedule(state, 5, t0)
	require.NoError(t, err)

	assert.Equal(t, 2.2, state.EaseFactor)
	assert.Equal(t, 10, state.IntervalDays)
	assert.Equal(t, 3, state.Repetitions)
	assert.True(t, state.LastReviewedAt.Equal(reviewed))
	assert.Equal(t, 4, *state.LastConfidence)
}

func TestScheduleIsDeterministic(t *testing.T) {
	state := models.ReviewState{EaseFactor: 1.9, IntervalDays: 12, Repetitions: 5, NextReviewAt: t0}

	a, err := Schedule(state, 4, t0)
	require.NoError(t, err)
	b, err := Schedule(state, 4, t0)
	require.NoError(t, err)

	assert.Equal(t, a.EaseFactor, b.EaseFactor)
	assert.Equal(t, a.IntervalDays, b.IntervalDays)
	assert.Equal(t, a.Repetitions, b.Repetitions)
	assert.True(t, a.NextReviewAt.Equal(b.NextReviewAt))
}

func TestSortDue(t *testing.T) {
	cards := []models.Flashcard{
		{ID: 1, ReviewState: models.ReviewState{NextReviewAt: t0.Add(48 * time.Hour), EaseFactor: 2.5}},
		{ID: 2, ReviewState: models.ReviewState{NextReviewAt: t0, EaseFactor: 2.5}},
		{ID: 3, ReviewState: models.ReviewState{NextReviewAt: t0, EaseFactor: 1.4}},
		{ID: 4, ReviewState: models.ReviewState{NextReviewAt: t0.Add(-24 * time.Hour), EaseFactor: 2.0}},
	}

	SortDue(cards)

	var order []int64
	for _, c := range cards {
		order = append(order, c.ID)
	}
	// Most overdue first; equal due times ordered by ease ascending.
	assert.Equal(t, []int64{4, 3, 2, 1}, order)
}

func TestIsMastered(t *testing.T) {
	high := 5
	low := 3

	tests := []struct {
		name  string
		state models.ReviewState
		want  bool
	}{
		{"fresh card", NewReviewState(t0), false},
		{"long streak, confident, matured", models.ReviewState{Repetitions: 5, IntervalDays: 30, LastConfidence: &high}, true},
		{"short streak", models.ReviewState{Repetitions: 4, IntervalDays: 40, LastConfidence: &high}, false},
		{"low last confidence", models.ReviewState{Repetitions: 6, IntervalDays: 40, LastConfidence: &low}, false},
		{"young interval", models.ReviewState{Repetitions: 6, IntervalDays: 20, LastConfidence: &high}, false},
		{"never reviewed", models.ReviewState{Repetitions: 6, IntervalDays: 40}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsMastered(tc.state))
		})
	}
}
