// Package proficiency scores quiz submissions and maintains the blended
// per-topic mastery estimate.
package proficiency

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/example/studyhub/pkg/models"
)

// Weight a question contributes to the weighted attempt score, by declared
// difficulty. Anything unrecognized weighs as medium.
const (
	easyWeight   = 0.5
	mediumWeight = 1.0
	hardWeight   = 1.5
)

// PassThreshold is the minimum percent score counted as a pass.
const PassThreshold = 70.0

// Blend weights. History dominates so a single attempt cannot swing the
// estimate.
const (
	historyWeight = 0.7
	attemptWeight = 0.3
)

var (
	// ErrInvalidQuestion flags a question whose correct-answer index does
	// not address one of its options.
	ErrInvalidQuestion = errors.New("proficiency: question has out-of-range correct answer")
	// ErrOutOfRange flags a blended value outside [0,1]. Only inputs outside
	// the domain can produce one.
	ErrOutOfRange = errors.New("proficiency: value out of range")
)

// Result is the outcome of scoring one submission.
type Result struct {
	Correct            map[string]bool // question id -> answered correctly
	CorrectCount       int
	WrongCount         int
	TotalQuestions     int
	PercentScore       float64 // 0-100, unweighted
	AttemptProficiency float64 // 0-1, difficulty weighted
	Passed             bool
}

// Score grades a submission against the quiz questions. Answers are looked
// up by question id and an absent answer counts as wrong; only a question
// that cannot be graded at all fails the call. An empty quiz grades to all
// zeros rather than dividing by zero.
func Score(questions []models.Question, answers map[string]int) (Result, error) {
	for _, q := range questions {
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return Result{}, fmt.Errorf("%w: question %q", ErrInvalidQuestion, q.ID)
		}
	}

	res := Result{
		Correct:        make(map[string]bool, len(questions)),
		TotalQuestions: len(questions),
	}

	var weightTotal, weightCorrect float64
	for _, q := range questions {
		w := difficultyWeight(q.Difficulty)
		weightTotal += w

		answer, answered := answers[q.ID]
		correct := answered && answer == q.CorrectAnswer
		res.Correct[q.ID] = correct
		if correct {
			res.CorrectCount++
			weightCorrect += w
		} else {
			res.WrongCount++
		}
	}

	if res.TotalQuestions > 0 {
		res.PercentScore = 100 * float64(res.CorrectCount) / float64(res.TotalQuestions)
	}
	if weightTotal > 0 {
		res.AttemptProficiency = weightCorrect / weightTotal
	}
	res.Passed = res.PercentScore >= PassThreshold
	return res, nil
}

func difficultyWeight(difficulty string) float64 {
	switch strings.ToLower(difficulty) {
	case "easy":
		return easyWeight
	case "hard":
		return hardWeight
	default:
		return mediumWeight
	}
}

// Blend folds a new attempt into the existing proficiency for a topic. The
// first observation becomes the baseline; after that the estimate moves as
// an exponential moving average weighted toward history. The result is
// rounded to 4 decimal places to match storage precision and checked
// against [0,1] rather than clamped.
func Blend(existing *float64, attempt float64) (float64, error) {
	value := attempt
	if existing != nil {
		value = *existing*historyWeight + attempt*attemptWeight
	}
	value = math.Round(value*10000) / 10000
	if value < 0 || value > 1 {
		return 0, fmt.Errorf("%w: %v", ErrOutOfRange, value)
	}
	return value, nil
}
