package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eilanhub/eilan_backend/models"
	"github.com/eilanhub/eilan_backend/storage"
)

func newUploadRequest(t *testing.T, filename, contentType string, data []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req, httptest.NewRecorder()
}

func TestFileController_UploadAndFetch(t *testing.T) {
	e := echo.New()
	store := storage.NewMemoryBlobStore()
	fc := NewFileController(store)

	req, rec := newUploadRequest(t, "proof.txt", "text/plain", []byte("payment proof"))
	c := e.NewContext(req, rec)
	c.Set("userId", "64a1f0c2e3b4d5a6f7890123")

	require.NoError(t, fc.Upload(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)

	fileID, ok := data["file_id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, fileID)
	assert.Equal(t, "/api/files/"+fileID, data["url"])

	// The blob landed in the store with the uploader recorded
	blob, err := store.Get(context.Background(), fileID)
	require.NoError(t, err)
	assert.Equal(t, []byte("payment proof"), blob.Data)
	assert.Equal(t, "64a1f0c2e3b4d5a6f7890123", blob.UploadedBy)

	// Fetch it back through the handler
	fetchReq := httptest.NewRequest(http.MethodGet, "/api/files/"+fileID, nil)
	fetchRec := httptest.NewRecorder()
	fetchCtx := e.NewContext(fetchReq, fetchRec)
	fetchCtx.SetPath("/api/files/:id")
	fetchCtx.SetParamNames("id")
	fetchCtx.SetParamValues(fileID)

	require.NoError(t, fc.GetFile(fetchCtx))
	assert.Equal(t, http.StatusOK, fetchRec.Code)
	assert.Equal(t, []byte("payment proof"), fetchRec.Body.Bytes())
}

func TestFileController_UploadRequiresAuth(t *testing.T) {
	e := echo.New()
	fc := NewFileController(storage.NewMemoryBlobStore())

	req, rec := newUploadRequest(t, "proof.txt", "text/plain", []byte("x"))
	c := e.NewContext(req, rec)
	// No userId in context

	require.NoError(t, fc.Upload(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFileController_UploadMissingFile(t *testing.T) {
	e := echo.New()
	fc := NewFileController(storage.NewMemoryBlobStore())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("userId", "64a1f0c2e3b4d5a6f7890123")

	require.NoError(t, fc.Upload(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFileController_GetMissingFile(t *testing.T) {
	e := echo.New()
	fc := NewFileController(storage.NewMemoryBlobStore())

	req := httptest.NewRequest(http.MethodGet, "/api/files/unknown", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/files/:id")
	c.SetParamNames("id")
	c.SetParamValues("unknown")

	require.NoError(t, fc.GetFile(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
