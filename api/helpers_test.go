package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpupo63/melba-site-backend/config"
	"github.com/rpupo63/melba-site-backend/database"
	"github.com/rpupo63/melba-site-backend/services"
	"github.com/rpupo63/melba-site-backend/sessions"
	"github.com/rpupo63/melba-site-backend/storage"
)

// pngBytes is enough of a PNG for content sniffing.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []services.Notification
}

func (n *recordingNotifier) Dispatch(note services.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, note)
}

func (n *recordingNotifier) Wait(ctx context.Context) error { return nil }

func (n *recordingNotifier) notifications() []services.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]services.Notification(nil), n.sent...)
}

type testEnv struct {
	t         *testing.T
	db        database.Database
	notifier  *recordingNotifier
	sessions  *sessions.MemoryStore
	uploadDir string
	handler   http.Handler
}

type envOption func(*Dependencies)

func withNotifier(n Notifier) envOption {
	return func(d *Dependencies) { d.Notifier = n }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	dir := t.TempDir()
	uploads, err := storage.NewDiskStore(dir, storage.DefaultURLPrefix)
	require.NoError(t, err)

	creds, err := sessions.NewCredentials("admin", "correct horse", "")
	require.NoError(t, err)

	env := &testEnv{
		t:         t,
		db:        database.NewMemory(),
		notifier:  &recordingNotifier{},
		sessions:  sessions.NewMemoryStore(sessions.DefaultTTL),
		uploadDir: dir,
	}
	deps := Dependencies{
		Database:    env.db,
		Notifier:    env.notifier,
		Sessions:    env.sessions,
		Credentials: creds,
		Uploads:     uploads,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	settings := config.Settings{Mail: config.MailSettings{Acknowledge: true}}
	env.handler = newRouter(deps, withSettings(settings))
	return env
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) postJSON(path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(e.t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return e.serve(req)
}

func (e *testEnv) postForm(path string, form url.Values, acceptJSON bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if acceptJSON {
		req.Header.Set("Accept", "application/json")
	}
	return e.serve(req)
}

// admin sends an authenticated request. body may be nil.
func (e *testEnv) admin(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	e.t.Helper()
	token, err := e.sessions.Create(context.Background())
	require.NoError(e.t, err)

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.AddCookie(&http.Cookie{Name: sessions.CookieName, Value: token})
	return e.serve(req)
}

func (e *testEnv) adminJSON(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(e.t, err)
	return e.admin(method, path, bytes.NewReader(raw), "application/json")
}

// adminMultipart sends fields plus an optional image file.
func (e *testEnv) adminMultipart(method, path string, fields map[string]string, image []byte) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(e.t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "upload.png")
		require.NoError(e.t, err)
		_, err = fw.Write(image)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, mw.Close())
	return e.admin(method, path, &buf, mw.FormDataContentType())
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}
