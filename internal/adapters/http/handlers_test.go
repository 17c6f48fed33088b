package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huddlekit/huddle/internal/app"
	"github.com/huddlekit/huddle/internal/config"
	"github.com/huddlekit/huddle/internal/store"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Mode:           "test",
		StaticPath:     t.TempDir(),
		MaxFiles:       20,
		MaxUploadBytes: 1 << 20,
		PingPeriod:     time.Minute,
		Secret:         "test-secret",
		STUNURLs:       []string{"stun:stun.example.org:3478"},
	}

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	blobs, err := store.NewBlobs(t.TempDir())
	require.NoError(t, err)

	presence := store.NewPresence(db)
	hub := app.NewHub(app.NewRegistry(), presence)
	files := app.NewFileService(store.NewFiles(db, cfg.MaxFiles), blobs, hub)

	return SetupRouter(context.Background(), &API{
		Cfg:   cfg,
		Hub:   hub,
		Users: store.NewUsers(db),
		Files: files,
		Blobs: blobs,
	})
}

func doJSON(r *gin.Engine, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginFlow(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(r, http.MethodPost, "/api/register", `{"fullName":"Alice","email":"alice@example.com","password":"correct horse"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// Duplicate email conflicts.
	w = doJSON(r, http.MethodPost, "/api/register", `{"fullName":"Alice Again","email":"alice@example.com","password":"correct horse"}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Short password fails validation before the directory is touched.
	w = doJSON(r, http.MethodPost, "/api/register", `{"fullName":"Bob","email":"bob@example.com","password":"short"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Wrong password is a generic failure.
	w = doJSON(r, http.MethodPost, "/api/login", `{"email":"alice@example.com","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/login", `{"email":"alice@example.com","password":"correct horse"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Result().Cookies())

	var identity struct {
		ID       string `json:"id"`
		FullName string `json:"fullName"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &identity))
	assert.Equal(t, "Alice", identity.FullName)
	assert.NotEmpty(t, identity.ID)
}

func TestOnlineUsersEmpty(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(r, http.MethodGet, "/api/users/online", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func login(t *testing.T, r *gin.Engine) []*http.Cookie {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/register", `{"fullName":"Alice","email":"alice@example.com","password":"correct horse"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(r, http.MethodPost, "/api/login", `{"email":"alice@example.com","password":"correct horse"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Result().Cookies()
}

func uploadRequest(t *testing.T, name, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestUploadRequiresLogin(t *testing.T) {
	r := newTestServer(t)

	body, contentType := uploadRequest(t, "notes.txt", "hello")
	req := httptest.NewRequest(http.MethodPost, "/api/files", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadAndList(t *testing.T) {
	r := newTestServer(t)
	cookies := login(t, r)

	body, contentType := uploadRequest(t, "notes.txt", "hello")
	req := httptest.NewRequest(http.MethodPost, "/api/files", body)
	req.Header.Set("Content-Type", contentType)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var fd struct {
		ID           int64  `json:"id"`
		Name         string `json:"name"`
		Size         int64  `json:"size"`
		UploaderName string `json:"uploaderName"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fd))
	assert.Equal(t, "notes.txt", fd.Name)
	assert.Equal(t, int64(5), fd.Size)
	assert.Equal(t, "Alice", fd.UploaderName)

	w = doJSON(r, http.MethodGet, "/api/files", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var files []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &files))
	require.Len(t, files, 1)
	assert.Equal(t, "notes.txt", files[0]["name"])

	// And the stored object is downloadable.
	dw := doJSON(r, http.MethodGet, "/api/files/"+strconv.FormatInt(fd.ID, 10)+"/download", "", nil)
	require.Equal(t, http.StatusOK, dw.Code)
	assert.Equal(t, "hello", dw.Body.String())
}

func TestUploadMissingFile(t *testing.T) {
	r := newTestServer(t)
	cookies := login(t, r)

	w := doJSON(r, http.MethodPost, "/api/files", "", cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestICEConfig(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(r, http.MethodGet, "/api/ice-config", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cfg struct {
		ICEServers []struct {
			URLs []string `json:"urls"`
		} `json:"iceServers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cfg))
	require.Len(t, cfg.ICEServers, 1)
	assert.Equal(t, []string{"stun:stun.example.org:3478"}, cfg.ICEServers[0].URLs)
}
