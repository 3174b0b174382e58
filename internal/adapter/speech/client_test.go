package speech

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSpeechServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/audio/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "pt", r.FormValue("language"))

		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "audio.ogg", hdr.Filename)
		assert.Equal(t, "oggdata", string(data))

		_, _ = io.WriteString(w, `{"text":"  quero dois cafés "}`)
	})
	mux.HandleFunc("/audio/speech", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if body["input"] == "falha" {
			http.Error(w, `{"error":{"message":"quota"}}`, http.StatusTooManyRequests)
			return
		}
		assert.Equal(t, "tts-1", body["model"])
		assert.Equal(t, "mp3", body["response_format"])
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = io.WriteString(w, "mp3:"+body["voice"])
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestTranscribe(t *testing.T) {
	srv := newSpeechServer(t)
	c := NewClient(Config{APIKey: "key", APIBase: srv.URL}, nil)

	text, err := c.Transcribe(context.Background(), []byte("oggdata"), "audio/ogg; codecs=opus")
	require.NoError(t, err)
	assert.Equal(t, "quero dois cafés", text)
}

func TestTranscribeEmptyAudio(t *testing.T) {
	c := NewClient(Config{APIKey: "key"}, nil)
	_, err := c.Transcribe(context.Background(), nil, "audio/ogg")
	assert.Error(t, err)
}

func TestSynthesizeWritesFile(t *testing.T) {
	srv := newSpeechServer(t)
	dir := filepath.Join(t.TempDir(), "audio")
	c := NewClient(Config{APIKey: "key", APIBase: srv.URL, AudioDir: dir, Voice: "nova"}, nil)

	path, err := c.Synthesize(context.Background(), "Temos café.", "")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, ".mp3", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mp3:nova", string(data))

	path, err = c.Synthesize(context.Background(), "Outra voz.", "alloy")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mp3:alloy", string(data))
}

func TestSynthesizeAPIError(t *testing.T) {
	srv := newSpeechServer(t)
	c := NewClient(Config{APIKey: "key", APIBase: srv.URL, AudioDir: t.TempDir()}, nil)

	_, err := c.Synthesize(context.Background(), "falha", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestNotConfigured(t *testing.T) {
	c := NewClient(Config{}, nil)
	assert.False(t, c.Enabled())

	_, err := c.Transcribe(context.Background(), []byte("x"), "audio/ogg")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = c.Synthesize(context.Background(), "oi", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".ogg", extension("audio/ogg; codecs=opus"))
	assert.Equal(t, ".mp3", extension("audio/mpeg"))
	assert.Equal(t, ".m4a", extension("audio/mp4"))
	assert.Equal(t, ".ogg", extension(""))
}
