package audio

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateScriptShortTextUnchanged(t *testing.T) {
	text := "Photosynthesis turns light into sugar. Plants do it every day."
	assert.Equal(t, text, TruncateScript(text))
}

func TestTruncateScriptCutsAtSentenceEnd(t *testing.T) {
	sentence := "The mitochondria is the powerhouse of the cell. "
	long := strings.Repeat(sentence, 60)
	require.Greater(t, len(long), maxScriptChars)

	got := TruncateScript(long)

	assert.LessOrEqual(t, len(got), maxScriptChars)
	assert.True(t, strings.HasSuffix(got, "."), "expected cut at a sentence end, got %q", got[len(got)-10:])
}

func TestTruncateScriptHardCutWithoutSentenceEnd(t *testing.T) {
	long := strings.Repeat("a", maxScriptChars+500)

	got := TruncateScript(long)

	assert.Len(t, got, maxScriptChars)
}

func TestSynthesizeSendsTokenAndVoice(t *testing.T) {
	var gotAuth, gotModel, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotModel = r.URL.Query().Get("model")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	d := NewDeepgram("secret-key", "aura-luna-en")
	d.endpoint = srv.URL

	audio, err := d.Synthesize(context.Background(), "Hello, class.")
	require.NoError(t, err)

	assert.Equal(t, []byte("mp3-bytes"), audio)
	assert.Equal(t, "Token secret-key", gotAuth)
	assert.Equal(t, "aura-luna-en", gotModel)
	assert.Contains(t, gotBody, "Hello, class.")
}

func TestSynthesizeDisabledWithoutKey(t *testing.T) {
	d := NewDeepgram("", "")

	_, err := d.Synthesize(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestSynthesizeRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad voice", http.StatusBadRequest)
	}))
	defer srv.Close()

	d := NewDeepgram("secret-key", "")
	d.endpoint = srv.URL

	_, err := d.Synthesize(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestSynthesizeRejectsEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	d := NewDeepgram("secret-key", "")
	d.endpoint = srv.URL

	_, err := d.Synthesize(context.Background(), "anything")
	assert.Error(t, err)
}
