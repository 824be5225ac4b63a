package asset

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonfjz/filestore/internal/middleware"
)

func newTestHandler(t *testing.T, total int) *Handler {
	t.Helper()
	return NewHandler(newTestService(entriesFor("u1", total)), zerolog.Nop())
}

func getAssets(h *Handler, target, ownerID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if ownerID != "" {
		req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, ownerID))
	}
	rec := httptest.NewRecorder()
	h.GetAssets(rec, req)
	return rec
}

func TestGetAssets(t *testing.T) {
	h := newTestHandler(t, 3)

	rec := getAssets(h, "/assets?page=1&pageSize=20", "u1")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Success bool `json:"success"`
		Data    Page `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, 3, envelope.Data.Total)
	assert.Equal(t, 1, envelope.Data.TotalPages)
	assert.Equal(t, 20, envelope.Data.PageSize)
	assert.Len(t, envelope.Data.Items, 3)
}

func TestGetAssetsDefaults(t *testing.T) {
	h := newTestHandler(t, 1)

	rec := getAssets(h, "/assets", "u1")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data Page `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.Page)
	assert.Equal(t, 20, envelope.Data.PageSize)
}

func TestGetAssetsValidation(t *testing.T) {
	h := newTestHandler(t, 3)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"page zero", "/assets?page=0", http.StatusBadRequest},
		{"negative page", "/assets?page=-1", http.StatusBadRequest},
		{"page not a number", "/assets?page=abc", http.StatusBadRequest},
		{"pageSize zero", "/assets?pageSize=0", http.StatusBadRequest},
		{"pageSize at limit", "/assets?pageSize=100", http.StatusOK},
		{"pageSize over limit", "/assets?pageSize=101", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := getAssets(h, tt.target, "u1")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestGetAssetsMissingSubject(t *testing.T) {
	h := newTestHandler(t, 0)

	rec := getAssets(h, "/assets", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
