package whatsapp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/hugohenrick/atendente-pedidos/internal/dialogue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type graphServer struct {
	*httptest.Server
	mu       sync.Mutex
	messages []map[string]interface{}
	uploads  int
	status   int
}

func newGraphServer(t *testing.T) *graphServer {
	g := &graphServer{status: http.StatusOK}
	mux := http.NewServeMux()

	mux.HandleFunc("/PHONE/messages", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		g.mu.Lock()
		g.messages = append(g.messages, body)
		status := g.status
		g.mu.Unlock()

		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `{"error":{"message":"Recipient not allowed","type":"OAuthException","code":131030}}`)
			return
		}
		_, _ = io.WriteString(w, `{"messaging_product":"whatsapp","messages":[{"id":"wamid.1"}]}`)
	})

	mux.HandleFunc("/PHONE/media", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whatsapp", r.FormValue("messaging_product"))
		assert.Equal(t, "audio/mpeg", r.FormValue("type"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "reply.mp3", hdr.Filename)
		assert.Equal(t, "mp3data", string(data))

		g.mu.Lock()
		g.uploads++
		g.mu.Unlock()
		_, _ = io.WriteString(w, `{"id":"media-9"}`)
	})

	g.Server = httptest.NewServer(mux)

	mux.HandleFunc("/media-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"url":"`+g.URL+`/download/media-1","mime_type":"audio/ogg; codecs=opus"}`)
	})
	mux.HandleFunc("/download/media-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, "oggdata")
	})

	t.Cleanup(g.Close)
	return g
}

func (g *graphServer) last() map[string]interface{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.messages[len(g.messages)-1]
}

func newTestClient(g *graphServer) *Client {
	return NewClient(Config{APIBase: g.URL + "/", Token: "token", PhoneNumberID: "PHONE"}, nil)
}

func TestSendText(t *testing.T) {
	g := newGraphServer(t)
	c := newTestClient(g)

	require.NoError(t, c.SendText(context.Background(), "5511", "Olá"))

	msg := g.last()
	assert.Equal(t, "whatsapp", msg["messaging_product"])
	assert.Equal(t, "5511", msg["to"])
	assert.Equal(t, "text", msg["type"])
	assert.Equal(t, "Olá", msg["text"].(map[string]interface{})["body"])
}

func TestSendButtonsTruncates(t *testing.T) {
	g := newGraphServer(t)
	c := newTestClient(g)

	buttons := []dialogue.Button{
		{ID: "a", Title: "Um título muito comprido demais"},
		{ID: "b", Title: "B"},
		{ID: "c", Title: "C"},
		{ID: "d", Title: "D"},
	}
	require.NoError(t, c.SendButtons(context.Background(), "5511", "Escolha", buttons, "Cabeçalho", "Rodapé"))

	in := g.last()["interactive"].(map[string]interface{})
	assert.Equal(t, "button", in["type"])
	assert.Equal(t, "Cabeçalho", in["header"].(map[string]interface{})["text"])
	assert.Equal(t, "Rodapé", in["footer"].(map[string]interface{})["text"])

	got := in["action"].(map[string]interface{})["buttons"].([]interface{})
	require.Len(t, got, MaxButtons)
	first := got[0].(map[string]interface{})["reply"].(map[string]interface{})
	assert.Equal(t, "a", first["id"])
	assert.Equal(t, MaxButtonTitle, utf8.RuneCountInString(first["title"].(string)))
}

func TestSendButtonsWithoutButtonsSendsText(t *testing.T) {
	g := newGraphServer(t)
	c := newTestClient(g)

	require.NoError(t, c.SendButtons(context.Background(), "5511", "Só texto", nil, "", ""))
	assert.Equal(t, "text", g.last()["type"])
}

func TestSendListLimitsRows(t *testing.T) {
	g := newGraphServer(t)
	c := newTestClient(g)

	var rows []dialogue.Row
	for i := 0; i < 8; i++ {
		rows = append(rows, dialogue.Row{ID: strings.Repeat("x", i+1), Title: "Pão de queijo recheado com catupiry", Description: "R$ 6,00"})
	}
	sections := []dialogue.Section{
		{Title: "Produtos", Rows: rows},
		{Title: "Vazia"},
		{Title: "Outras opções", Rows: []dialogue.Row{{ID: "view_menu", Title: "Voltar"}, {ID: "view_cart", Title: "Carrinho"}, {ID: "help", Title: "Ajuda"}}},
	}
	require.NoError(t, c.SendList(context.Background(), "5511", "Escolha", "Ver produtos", sections, "", ""))

	in := g.last()["interactive"].(map[string]interface{})
	assert.Equal(t, "list", in["type"])
	assert.Nil(t, in["header"])

	act := in["action"].(map[string]interface{})
	assert.Equal(t, "Ver produtos", act["button"])

	got := act["sections"].([]interface{})
	require.Len(t, got, 2)

	total := 0
	for _, s := range got {
		for _, r := range s.(map[string]interface{})["rows"].([]interface{}) {
			total++
			title := r.(map[string]interface{})["title"].(string)
			assert.LessOrEqual(t, utf8.RuneCountInString(title), MaxRowTitle)
		}
	}
	assert.Equal(t, MaxListRows, total)
}

func TestSendAudioUploadsThenSends(t *testing.T) {
	g := newGraphServer(t)
	c := newTestClient(g)

	path := filepath.Join(t.TempDir(), "reply.mp3")
	require.NoError(t, os.WriteFile(path, []byte("mp3data"), 0o644))

	require.NoError(t, c.SendAudio(context.Background(), "5511", path))
	assert.Equal(t, 1, g.uploads)

	msg := g.last()
	assert.Equal(t, "audio", msg["type"])
	assert.Equal(t, "media-9", msg["audio"].(map[string]interface{})["id"])
}

func TestSendAudioMissingFile(t *testing.T) {
	g := newGraphServer(t)
	c := newTestClient(g)

	err := c.SendAudio(context.Background(), "5511", filepath.Join(t.TempDir(), "nada.mp3"))
	require.Error(t, err)
	assert.Equal(t, 0, g.uploads)
}

func TestDownloadMedia(t *testing.T) {
	g := newGraphServer(t)
	c := newTestClient(g)

	data, mime, err := c.DownloadMedia(context.Background(), "media-1")
	require.NoError(t, err)
	assert.Equal(t, "oggdata", string(data))
	assert.Equal(t, "audio/ogg; codecs=opus", mime)
}

func TestAPIErrorIsDecoded(t *testing.T) {
	g := newGraphServer(t)
	g.status = http.StatusBadRequest
	c := newTestClient(g)

	err := c.SendText(context.Background(), "5511", "Olá")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, 131030, apiErr.Code)
	assert.Contains(t, err.Error(), "Recipient not allowed")
}

func TestClientImplementsMessenger(t *testing.T) {
	var _ dialogue.Messenger = (*Client)(nil)
}
