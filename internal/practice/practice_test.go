package practice

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/studyhub/pkg/models"
)

func card(id int64, topic, front, back string) models.Flashcard {
	return models.Flashcard{
		ID:         id,
		UserID:     1,
		Topic:      topic,
		Front:      front,
		Back:       back,
		Difficulty: "medium",
	}
}

func intPtr(v int) *int { return &v }

func TestBuildQuestionsFromDeck(t *testing.T) {
	cards := []models.Flashcard{
		card(1, "biology", "Powerhouse of the cell", "Mitochondria"),
		card(2, "biology", "Basic unit of life", "Cell"),
		card(3, "biology", "Carries genetic code", "DNA"),
		card(4, "biology", "Site of photosynthesis", "Chloroplast"),
	}
	backs := map[string]bool{"Mitochondria": true, "Cell": true, "DNA": true, "Chloroplast": true}

	questions, err := BuildQuestions(cards, 10, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, questions, 4)

	seenIDs := make(map[string]bool)
	for _, q := range questions {
		assert.NotEmpty(t, q.ID)
		assert.False(t, seenIDs[q.ID], "duplicate question id %q", q.ID)
		seenIDs[q.ID] = true

		assert.Equal(t, "medium", q.Difficulty)
		require.GreaterOrEqual(t, len(q.Options), 2)
		assert.LessOrEqual(t, len(q.Options), distractorCount+1)
		require.GreaterOrEqual(t, q.CorrectAnswer, 0)
		require.Less(t, q.CorrectAnswer, len(q.Options))

		for _, opt := range q.Options {
			assert.True(t, backs[opt], "option %q is not a card back", opt)
		}
	}
}

func TestBuildQuestionsCorrectAnswerMatchesCard(t *testing.T) {
	cards := []models.Flashcard{
		card(1, "chemistry", "Symbol for gold", "Au"),
		card(2, "chemistry", "Symbol for iron", "Fe"),
		card(3, "chemistry", "Symbol for sodium", "Na"),
	}
	backByFront := map[string]string{
		"Symbol for gold":   "Au",
		"Symbol for iron":   "Fe",
		"Symbol for sodium": "Na",
	}

	questions, err := BuildQuestions(cards, 10, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	for _, q := range questions {
		want := backByFront[q.Text]
		require.NotEmpty(t, want, "question prompt %q is not a card front", q.Text)
		assert.Equal(t, want, q.Options[q.CorrectAnswer])

		count := 0
		for _, opt := range q.Options {
			if opt == want {
				count++
			}
		}
		assert.Equal(t, 1, count, "correct answer should appear exactly once")
	}
}

func TestBuildQuestionsLimitsCount(t *testing.T) {
	cards := make([]models.Flashcard, 0, 6)
	fronts := []string{"one", "two", "three", "four", "five", "six"}
	for i, f := range fronts {
		cards = append(cards, card(int64(i+1), "numbers", f, f+"-back"))
	}

	questions, err := BuildQuestions(cards, 3, rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	assert.Len(t, questions, 3)
}

func TestBuildQuestionsDefaultCount(t *testing.T) {
	cards := make([]models.Flashcard, 0, 15)
	for i := 0; i < 15; i++ {
		front := "front-" + string(rune('a'+i))
		cards = append(cards, card(int64(i+1), "letters", front, front+"-back"))
	}

	questions, err := BuildQuestions(cards, 0, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.Len(t, questions, DefaultQuestionCount)
}

func TestBuildQuestionsNeedsTwoDistinctAnswers(t *testing.T) {
	rnd := rand.New(rand.NewSource(4))

	_, err := BuildQuestions(nil, 5, rnd)
	assert.ErrorIs(t, err, ErrNotEnoughCards)

	_, err = BuildQuestions([]models.Flashcard{card(1, "t", "f", "b")}, 5, rnd)
	assert.ErrorIs(t, err, ErrNotEnoughCards)

	same := []models.Flashcard{
		card(1, "t", "first front", "shared back"),
		card(2, "t", "second front", "shared back"),
	}
	_, err = BuildQuestions(same, 5, rnd)
	assert.ErrorIs(t, err, ErrNotEnoughCards)
}

func TestBuildQuestionsSkipsBlankCards(t *testing.T) {
	cards := []models.Flashcard{
		card(1, "t", "   ", "Orphan back"),
		card(2, "t", "Orphan front", "  "),
		card(3, "t", "Valid front", "Valid back"),
		card(4, "t", "Another front", "Another back"),
	}

	questions, err := BuildQuestions(cards, 10, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	require.Len(t, questions, 2)

	for _, q := range questions {
		assert.NotContains(t, []string{"   ", "Orphan front"}, q.Text)
		assert.NotContains(t, q.Options, "Orphan back")
		assert.NotContains(t, q.Options, "  ")
	}
}

func TestBuildQuestionsExcludesMasteredCards(t *testing.T) {
	mastered := card(1, "t", "Mastered front", "Mastered back")
	mastered.Repetitions = 6
	mastered.IntervalDays = 45
	mastered.LastConfidence = intPtr(5)

	cards := []models.Flashcard{
		mastered,
		card(2, "t", "Fresh front", "Fresh back"),
		card(3, "t", "Newer front", "Newer back"),
	}

	questions, err := BuildQuestions(cards, 10, rand.New(rand.NewSource(6)))
	require.NoError(t, err)
	require.Len(t, questions, 2)

	for _, q := range questions {
		assert.NotEqual(t, "Mastered front", q.Text)
		assert.NotContains(t, q.Options, "Mastered back")
	}
}

func TestBuildQuestionsPrefersSameTopicDistractors(t *testing.T) {
	cards := []models.Flashcard{
		card(1, "algebra", "Solve x+1=2", "x=1"),
		card(2, "algebra", "Solve 2x=4", "x=2"),
		card(3, "algebra", "Solve x-3=0", "x=3"),
		card(4, "algebra", "Solve x/2=2", "x=4"),
		card(5, "history", "Year WW2 ended", "1945"),
		card(6, "history", "Year of moon landing", "1969"),
	}
	algebraBacks := map[string]bool{"x=1": true, "x=2": true, "x=3": true, "x=4": true}

	questions, err := BuildQuestions(cards, 10, rand.New(rand.NewSource(8)))
	require.NoError(t, err)

	for _, q := range questions {
		if !algebraBacks[q.Options[q.CorrectAnswer]] {
			continue
		}
		// Three other algebra cards exist, so every option stays in topic.
		for _, opt := range q.Options {
			assert.True(t, algebraBacks[opt], "algebra question leaked option %q", opt)
		}
	}
}

func TestBuildQuestionsDoesNotReorderInput(t *testing.T) {
	cards := []models.Flashcard{
		card(1, "t", "a", "a-back"),
		card(2, "t", "b", "b-back"),
		card(3, "t", "c", "c-back"),
	}

	_, err := BuildQuestions(cards, 10, rand.New(rand.NewSource(9)))
	require.NoError(t, err)

	assert.Equal(t, int64(1), cards[0].ID)
	assert.Equal(t, int64(2), cards[1].ID)
	assert.Equal(t, int64(3), cards[2].ID)
}

func TestBuildQuestionsCarriesExplanation(t *testing.T) {
	withNote := card(1, "t", "Front with note", "Back with note")
	withNote.Explanation = "Because the definition says so."

	cards := []models.Flashcard{withNote, card(2, "t", "Plain front", "Plain back")}

	questions, err := BuildQuestions(cards, 10, rand.New(rand.NewSource(10)))
	require.NoError(t, err)

	for _, q := range questions {
		if q.Text == "Front with note" {
			require.NotNil(t, q.Explanation)
			assert.Equal(t, "Because the definition says so.", q.Explanation.Correct)
		} else {
			assert.Nil(t, q.Explanation)
		}
	}
}
