package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/studyhub/internal/database"
	"github.com/example/studyhub/internal/srs"
	"github.com/example/studyhub/pkg/models"
)

type reminderCall struct {
	userID int64
	count  int
}

type fakeNotifier struct {
	calls []reminderCall
}

func (f *fakeNotifier) SendReminder(user *models.User, dueCount int) error {
	f.calls = append(f.calls, reminderCall{userID: user.ID, count: dueCount})
	return nil
}

func TestWithinWindow(t *testing.T) {
	cases := []struct {
		name             string
		hour, start, end int
		want             bool
	}{
		{"inside", 12, 9, 21, true},
		{"at start", 9, 9, 21, true},
		{"at end", 21, 9, 21, true},
		{"before start", 8, 9, 21, false},
		{"after end", 22, 9, 21, false},
		{"wraps midnight inside late", 23, 22, 6, true},
		{"wraps midnight inside early", 3, 22, 6, true},
		{"wraps midnight outside", 12, 22, 6, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, withinWindow(tc.hour, tc.start, tc.end))
		})
	}
}

func setupTestDB(t *testing.T) {
	t.Helper()
	require.NoError(t, database.Connect("sqlite", ":memory:", ""))
	t.Cleanup(func() { database.Close() })
}

func createUser(t *testing.T, username string, hour int, chatID int64) *models.User {
	t.Helper()
	user := &models.User{
		Email:           username + "@example.com",
		Username:        username,
		Name:            username,
		PasswordHash:    "x",
		ReminderEnabled: true,
		ReminderHour:    hour,
		TelegramChatID:  chatID,
	}
	require.NoError(t, database.NewUserRepository().Create(user))
	return user
}

func createDueCards(t *testing.T, userID int64, n int, due time.Time) {
	t.Helper()
	repo := database.NewFlashcardRepository()
	for i := 0; i < n; i++ {
		card := &models.Flashcard{
			UserID:      userID,
			Topic:       "biology",
			Front:       "front " + string(rune('a'+i)),
			Back:        "back " + string(rune('a'+i)),
			Difficulty:  "medium",
			ReviewState: srs.NewReviewState(due),
		}
		require.NoError(t, repo.Create(card))
	}
}

func TestRunReminderPassMatchesUserHour(t *testing.T) {
	setupTestDB(t)

	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	atTen := createUser(t, "atten", 10, 111)
	createDueCards(t, atTen.ID, 2, now.Add(-time.Hour))

	noCards := createUser(t, "nocards", 10, 222)

	atFifteen := createUser(t, "atfifteen", 15, 333)
	createDueCards(t, atFifteen.ID, 1, now.Add(-time.Hour))

	notifier := &fakeNotifier{}
	s := New(notifier, 9, 21, nil)

	s.runReminderPass(now)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, atTen.ID, notifier.calls[0].userID)
	assert.Equal(t, 2, notifier.calls[0].count)
	_ = noCards
}

func TestRunReminderPassRespectsWindow(t *testing.T) {
	setupTestDB(t)

	early := time.Date(2025, 6, 15, 7, 0, 0, 0, time.UTC)

	user := createUser(t, "earlybird", 7, 444)
	createDueCards(t, user.ID, 3, early.Add(-time.Hour))

	notifier := &fakeNotifier{}
	s := New(notifier, 9, 21, nil)

	s.runReminderPass(early)

	assert.Empty(t, notifier.calls, "no reminders outside the window")
}

func TestRunReminderPassSkipsFutureCards(t *testing.T) {
	setupTestDB(t)

	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	user := createUser(t, "ahead", 10, 555)
	createDueCards(t, user.ID, 2, now.Add(48*time.Hour))

	notifier := &fakeNotifier{}
	s := New(notifier, 9, 21, nil)

	s.runReminderPass(now)

	assert.Empty(t, notifier.calls, "cards not yet due trigger nothing")
}

func TestRunManualCheckIgnoresWindowAndHour(t *testing.T) {
	setupTestDB(t)

	user := createUser(t, "manual", 3, 666)
	createDueCards(t, user.ID, 4, time.Now().UTC().Add(-time.Hour))

	notifier := &fakeNotifier{}
	s := New(notifier, 9, 21, nil)

	require.NoError(t, s.RunManualCheck(user.ID))

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, user.ID, notifier.calls[0].userID)
	assert.Equal(t, 4, notifier.calls[0].count)
}

func TestRunManualCheckQuietWithoutDueCards(t *testing.T) {
	setupTestDB(t)

	user := createUser(t, "caughtup", 10, 777)

	notifier := &fakeNotifier{}
	s := New(notifier, 9, 21, nil)

	require.NoError(t, s.RunManualCheck(user.ID))
	assert.Empty(t, notifier.calls)
}
