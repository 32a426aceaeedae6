// Package practice builds offline multiple-choice quizzes from a user's
// own flashcards, no AI call required.
package practice

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/studyhub/internal/database"
	"github.com/example/studyhub/internal/srs"
	"github.com/example/studyhub/pkg/models"
)

// DefaultQuestionCount is used when the caller does not ask for a
// specific number of questions.
const DefaultQuestionCount = 10

// distractorCount is how many wrong options each question aims for.
const distractorCount = 3

// ErrNotEnoughCards is returned when the deck cannot supply at least two
// usable cards, the minimum for a meaningful multiple choice question.
var ErrNotEnoughCards = errors.New("practice: need at least two flashcards with distinct answers")

// Module assembles practice quizzes from stored flashcards.
type Module struct {
	flashcardRepo *database.FlashcardRepository
}

// NewModule creates a new practice module.
func NewModule() *Module {
	return &Module{
		flashcardRepo: database.NewFlashcardRepository(),
	}
}

// CreateQuiz loads the user's cards, optionally restricted to a topic,
// and turns them into multiple choice questions.
func (m *Module) CreateQuiz(userID int64, topic string, count int) (models.QuestionList, error) {
	cards, err := m.flashcardRepo.ListByUser(userID, database.ListFilter{Topic: topic})
	if err != nil {
		return nil, err
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	return BuildQuestions(cards, count, rnd)
}

// BuildQuestions converts flashcards into multiple choice questions. The
// front becomes the prompt, the back the correct answer, and backs of
// other cards serve as distractors. Mastered cards are left out so
// practice stays focused on material still being learned.
func BuildQuestions(cards []models.Flashcard, count int, rnd *rand.Rand) (models.QuestionList, error) {
	if count <= 0 {
		count = DefaultQuestionCount
	}

	usable := usableCards(cards)
	if len(usable) < 2 || distinctBacks(usable) < 2 {
		return nil, ErrNotEnoughCards
	}

	// Shuffle a copy so the caller's slice order is untouched.
	pool := make([]models.Flashcard, len(usable))
	copy(pool, usable)
	rnd.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	selected := pool
	if len(selected) > count {
		selected = selected[:count]
	}

	questions := make(models.QuestionList, 0, len(selected))
	for _, card := range selected {
		options := distractors(card, pool, distractorCount)

		// Add the correct option and shuffle while tracking its index.
		options = append(options, card.Back)
		correctIndex := len(options) - 1
		rnd.Shuffle(len(options), func(i, j int) {
			if i == correctIndex {
				correctIndex = j
			} else if j == correctIndex {
				correctIndex = i
			}
			options[i], options[j] = options[j], options[i]
		})

		question := models.Question{
			ID:            uuid.NewString(),
			Text:          card.Front,
			Options:       options,
			CorrectAnswer: correctIndex,
			Difficulty:    card.Difficulty,
		}
		if card.Explanation != "" {
			question.Explanation = &models.QuestionExplanation{Correct: card.Explanation}
		}

		questions = append(questions, question)
	}

	return questions, nil
}

// usableCards filters out cards that cannot serve as questions: blank
// sides, and cards already mastered.
func usableCards(cards []models.Flashcard) []models.Flashcard {
	usable := make([]models.Flashcard, 0, len(cards))
	for _, card := range cards {
		if strings.TrimSpace(card.Front) == "" || strings.TrimSpace(card.Back) == "" {
			continue
		}
		if srs.IsMastered(card.ReviewState) {
			continue
		}
		usable = append(usable, card)
	}
	return usable
}

// distinctBacks counts unique answer sides. With fewer than two, no card
// can get even a single wrong option.
func distinctBacks(cards []models.Flashcard) int {
	backs := make(map[string]bool, len(cards))
	for _, card := range cards {
		backs[card.Back] = true
	}
	return len(backs)
}

// distractors picks up to count wrong answers for a card, preferring
// backs from the same topic before falling back to the rest of the pool.
// Duplicates of the correct answer or of each other are skipped.
func distractors(card models.Flashcard, pool []models.Flashcard, count int) []string {
	options := make([]string, 0, count)
	seen := map[string]bool{card.Back: true}

	add := func(c models.Flashcard) {
		if c.ID == card.ID || len(options) >= count || seen[c.Back] {
			return
		}
		seen[c.Back] = true
		options = append(options, c.Back)
	}

	for _, c := range pool {
		if c.Topic == card.Topic {
			add(c)
		}
	}
	for _, c := range pool {
		if c.Topic != card.Topic {
			add(c)
		}
	}

	return options
}
