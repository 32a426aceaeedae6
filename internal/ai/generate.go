package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/studyhub/pkg/models"
)

// Card is one generated flashcard before persistence.
type Card struct {
	Front       string `json:"front"`
	Back        string `json:"back"`
	Difficulty  string `json:"difficulty"`
	Explanation string `json:"explanation"`
}

// LessonContent is the parsed output of lesson generation.
type LessonContent struct {
	Title              string               `json:"title"`
	NarrationScript    string               `json:"narration_script"`
	Duration           float64              `json:"duration"`
	TailoredToInterest string               `json:"tailored_to_interest"`
	BoardActions       []models.BoardAction `json:"board_actions"`
}

const flashcardSystemPrompt = `You are an expert tutor creating study flashcards.
Respond with a JSON array only, no prose. Each element must be an object with
keys "front", "back", "difficulty" (easy, medium or hard) and "explanation".`

const quizSystemPrompt = `You are an expert tutor writing multiple-choice quizzes.
Respond with JSON only, no prose: an object {"questions": [...]} where each
question has "id", "question", "options" (exactly 4 strings), "correctAnswer"
(index 0-3), "difficulty" (easy, medium or hard) and "explanation" with keys
"correct" and "incorrect" (a map from option index to text).`

const lessonSystemPrompt = `You are a friendly teacher preparing a spoken lesson.
Respond with JSON only, no prose: an object with keys "title",
"narration_script" (plain spoken text, no markdown), "duration" (seconds,
number), "tailored_to_interest" and "board_actions" (array of
{"type": "write_text", "content": "..."}).`

// GenerateFlashcards produces count cards for the topic, mixing roughly 40%
// easy, 40% medium and 20% hard.
func (g *Generator) GenerateFlashcards(ctx context.Context, topic string, count int) ([]Card, error) {
	if count <= 0 {
		count = 10
	}

	user := fmt.Sprintf(
		"Create exactly %d flashcards about %q. Make about 40%% easy, 40%% medium and 20%% hard. "+
			"Fronts are questions or terms, backs are concise answers, explanations add one helpful detail.",
		count, topic,
	)

	raw, err := g.chat(ctx, flashcardSystemPrompt, user)
	if err != nil {
		return nil, err
	}

	var cards []Card
	if err := decodeJSON(raw, &cards); err != nil {
		return nil, err
	}

	out := cards[:0]
	for _, c := range cards {
		if strings.TrimSpace(c.Front) == "" || strings.TrimSpace(c.Back) == "" {
			continue
		}
		c.Difficulty = normalizeDifficulty(c.Difficulty)
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no usable cards", ErrBadPayload)
	}

	g.logger.Info("generated flashcards", zap.String("topic", topic), zap.Int("count", len(out)))
	return out, nil
}

// GenerateQuiz produces an 8-question quiz: 3 easy, 3 medium, 2 hard. When
// lessonScript is set the questions are drawn from that material.
func (g *Generator) GenerateQuiz(ctx context.Context, topic, description, lessonScript string) ([]models.Question, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a quiz of exactly 8 questions about %q: 3 easy, 3 medium, 2 hard.", topic)
	if description != "" {
		fmt.Fprintf(&b, " Focus: %s.", description)
	}
	if lessonScript != "" {
		fmt.Fprintf(&b, "\nBase every question on this lesson:\n%s", lessonScript)
	}

	raw, err := g.chat(ctx, quizSystemPrompt, b.String())
	if err != nil {
		return nil, err
	}

	questions, err := parseQuestions(raw)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		questions[i].Difficulty = normalizeDifficulty(questions[i].Difficulty)
	}
	ensureQuestionIDs(questions)
	if err := validateQuestions(questions); err != nil {
		return nil, err
	}

	g.logger.Info("generated quiz", zap.String("topic", topic), zap.Int("count", len(questions)))
	return questions, nil
}

// GenerateLesson produces a narrated lesson tailored to the learner.
func (g *Generator) GenerateLesson(ctx context.Context, topic, gradeLevel, hobby string) (*LessonContent, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Teach a short lesson about %q.", topic)
	if gradeLevel != "" {
		fmt.Fprintf(&b, " The learner is at %s level.", gradeLevel)
	}
	if hobby != "" {
		fmt.Fprintf(&b, " Where it helps, use examples drawn from their interest in %s.", hobby)
	}
	b.WriteString(" Keep the narration under 3 minutes of speech.")

	raw, err := g.chat(ctx, lessonSystemPrompt, b.String())
	if err != nil {
		return nil, err
	}

	var lesson LessonContent
	if err := decodeJSON(raw, &lesson); err != nil {
		return nil, err
	}
	if strings.TrimSpace(lesson.NarrationScript) == "" {
		return nil, fmt.Errorf("%w: empty narration script", ErrBadPayload)
	}
	if strings.TrimSpace(lesson.Title) == "" {
		lesson.Title = topic
	}
	if lesson.Duration <= 0 {
		lesson.Duration = 120
	}
	if lesson.TailoredToInterest == "" {
		lesson.TailoredToInterest = hobby
	}

	g.logger.Info("generated lesson", zap.String("topic", topic))
	return &lesson, nil
}

// parseQuestions accepts either a bare array or {"questions": [...]}.
func parseQuestions(raw string) ([]models.Question, error) {
	var questions []models.Question
	if err := decodeJSON(raw, &questions); err == nil {
		return questions, nil
	}

	var payload struct {
		Questions []models.Question `json:"questions"`
	}
	if err := decodeJSON(raw, &payload); err != nil {
		return nil, err
	}
	return payload.Questions, nil
}
