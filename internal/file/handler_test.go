package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonfjz/filestore/internal/middleware"
	"github.com/jonfjz/filestore/internal/storage"
)

func newTestRouter(store *fakeStorage) chi.Router {
	svc := newTestService(store, &fakeNotifier{})
	h := NewHandler(svc, zerolog.Nop())

	r := chi.NewRouter()
	r.Post("/files/upload", h.Upload)
	r.Get("/files/{key}", h.GetFile)
	r.Get("/uploads/*", h.GetPublicFile)
	return r
}

func multipartBody(t *testing.T, entryID, filename string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if entryID != "" {
		require.NoError(t, w.WriteField("entryId", entryID))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(payload)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func asOwner(r *http.Request, ownerID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.UserIDKey, ownerID))
}

func TestUploadHandler(t *testing.T) {
	store := newFakeStorage()
	router := newTestRouter(store)

	body, contentType := multipartBody(t, "e1", "cat.png", []byte("meow"))
	req := httptest.NewRequest(http.MethodPost, "/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, asOwner(req, "u1"))

	require.Equal(t, http.StatusCreated, rec.Code)

	var envelope struct {
		Success bool         `json:"success"`
		Data    UploadResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "e1", envelope.Data.EntryID)
	assert.Regexp(t, `^u1/e1/\d+-cat\.png$`, envelope.Data.Key)
	assert.Contains(t, envelope.Data.URL, "/uploads/u1/e1/")
}

func TestUploadHandlerMissingEntryID(t *testing.T) {
	router := newTestRouter(newFakeStorage())

	body, contentType := multipartBody(t, "", "cat.png", []byte("meow"))
	req := httptest.NewRequest(http.MethodPost, "/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, asOwner(req, "u1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadHandlerMissingFile(t *testing.T) {
	router := newTestRouter(newFakeStorage())

	body, contentType := multipartBody(t, "e1", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, asOwner(req, "u1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadHandlerMissingSubject(t *testing.T) {
	// Authenticated but without a subject claim: the owner namespace cannot
	// be determined, which is a caller problem, not an auth failure.
	router := newTestRouter(newFakeStorage())

	body, contentType := multipartBody(t, "e1", "cat.png", []byte("meow"))
	req := httptest.NewRequest(http.MethodPost, "/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, asOwner(req, ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetFileNotFound(t *testing.T) {
	router := newTestRouter(newFakeStorage())

	req := httptest.NewRequest(http.MethodGet, "/files/does-not-exist", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, asOwner(req, "u1"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetFileBackendDown(t *testing.T) {
	// An unreachable backend is indistinguishable from a missing object at
	// the HTTP boundary.
	store := newFakeStorage()
	store.getErr = fmt.Errorf("get: %w", storage.ErrUnavailable)
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/files/does-not-exist", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, asOwner(req, "u1"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetFileServesBinary(t *testing.T) {
	store := newFakeStorage()
	store.objects["somekey.png"] = fakeObject{data: []byte("pixels")}
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/files/somekey.png", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, asOwner(req, "u1"))
	require.Equal(t, http.StatusOK, rec.Code)
	// Private path always serves a generic binary, whatever the extension.
	assert.Equal(t, binaryContentType, rec.Header().Get("Content-Type"))

	got, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("pixels"), got)
}

func TestGetFileEncodedKeyRoundTrip(t *testing.T) {
	// Derived keys contain slashes, so the private path is requested with a
	// percent-encoded key. Upload through the router, then fetch the
	// returned key the way a client has to.
	store := newFakeStorage()
	router := newTestRouter(store)

	payload := []byte("round trip bytes")
	body, contentType := multipartBody(t, "e1", "cat.png", payload)
	req := httptest.NewRequest(http.MethodPost, "/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asOwner(req, "u1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var envelope struct {
		Data UploadResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Regexp(t, `^u1/e1/\d+-cat\.png$`, envelope.Data.Key)

	getReq := httptest.NewRequest(http.MethodGet, "/files/"+url.PathEscape(envelope.Data.Key), nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, asOwner(getReq, "u1"))

	require.Equal(t, http.StatusOK, getRec.Code)
	assert.Equal(t, binaryContentType, getRec.Header().Get("Content-Type"))

	got, err := io.ReadAll(getRec.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestGetPublicFileContentTypes(t *testing.T) {
	store := newFakeStorage()
	store.objects["u1/e1/1-cat.png"] = fakeObject{data: []byte("png")}
	store.objects["u1/e1/2-doc.pdf"] = fakeObject{data: []byte("pdf")}
	store.objects["u1/e1/3-blob.bin"] = fakeObject{data: []byte("bin")}
	store.objects["u1/e1/4-noext"] = fakeObject{data: []byte("raw")}
	router := newTestRouter(store)

	tests := []struct {
		path string
		want string
	}{
		{"/uploads/u1/e1/1-cat.png", "image/png"},
		{"/uploads/u1/e1/2-doc.pdf", "application/pdf"},
		{"/uploads/u1/e1/3-blob.bin", binaryContentType},
		{"/uploads/u1/e1/4-noext", binaryContentType},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Content-Type"))
		})
	}
}

func TestGetPublicFileNotFound(t *testing.T) {
	router := newTestRouter(newFakeStorage())

	req := httptest.NewRequest(http.MethodGet, "/uploads/u1/e1/1-gone.png", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
