package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollkeeper/rollkeeper/internal/blob"
	"github.com/rollkeeper/rollkeeper/internal/config"
	"github.com/rollkeeper/rollkeeper/internal/sheet/pipeline"
	"github.com/rollkeeper/rollkeeper/internal/storage"
	"github.com/rollkeeper/rollkeeper/internal/storage/sqlite"
	"github.com/rollkeeper/rollkeeper/internal/testpdf"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "sheets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	blobs, err := blob.NewStore(afero.NewMemMapFs(), "sheets")
	require.NoError(t, err)

	pipe, err := pipeline.New(logger, nil)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	srv, err := New(cfg, Deps{Store: store, Blobs: blobs, Pipeline: pipe, Logger: logger})
	require.NoError(t, err)
	return srv
}

func multipartSheet(t *testing.T, contents []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("sheet", "sheet.pdf")
	require.NoError(t, err)
	_, err = part.Write(contents)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func uploadSheet(t *testing.T, srv *Server, path string, contents []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartSheet(t, contents)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestUploadSheet_ExtractsAndStores(t *testing.T) {
	srv := newTestServer(t)

	doc := testpdf.Build(testpdf.Page{
		testpdf.Text("CharacterName", "Mira"),
		testpdf.Text("ClassLevel", "Barbarian 3"),
		testpdf.Text("Race", "Half-Orc"),
		testpdf.Text("Background", "Outlander"),
		testpdf.Text("MaxHP", "35"),
	})

	rr := uploadSheet(t, srv, "/api/characters/char-1/levels/3/sheet", doc)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var stored storage.CharacterSheet
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stored))
	assert.Equal(t, "char-1", stored.CharacterID)
	assert.Equal(t, 3, stored.Level)
	assert.Equal(t, "Half-Orc", stored.Race)
	assert.Equal(t, "Barbarian", stored.Class)
	assert.NotEmpty(t, stored.SheetKey)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(stored.Extracted, &rec))
	assert.Equal(t, "Mira", rec["characterName"])
	assert.Equal(t, "35", rec["maxHP"])
	assert.Equal(t, "35", rec["currentHP"])

	getReq := httptest.NewRequest(http.MethodGet, "/api/characters/char-1/levels/3/sheet", nil)
	getRR := httptest.NewRecorder()
	srv.Handler().ServeHTTP(getRR, getReq)
	require.Equal(t, http.StatusOK, getRR.Code)
}

func TestUploadSheet_ReplacesExisting(t *testing.T) {
	srv := newTestServer(t)

	first := testpdf.Build(testpdf.Page{testpdf.Text("MaxHP", "30")})
	second := testpdf.Build(testpdf.Page{testpdf.Text("MaxHP", "38")})

	rr := uploadSheet(t, srv, "/api/characters/char-1/levels/5/sheet", first)
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = uploadSheet(t, srv, "/api/characters/char-1/levels/5/sheet", second)
	require.Equal(t, http.StatusCreated, rr.Code)

	getReq := httptest.NewRequest(http.MethodGet, "/api/characters/char-1/levels/5/sheet", nil)
	getRR := httptest.NewRecorder()
	srv.Handler().ServeHTTP(getRR, getReq)
	require.Equal(t, http.StatusOK, getRR.Code)

	var stored storage.CharacterSheet
	require.NoError(t, json.Unmarshal(getRR.Body.Bytes(), &stored))
	var rec map[string]any
	require.NoError(t, json.Unmarshal(stored.Extracted, &rec))
	assert.Equal(t, "38", rec["maxHP"])
}

func TestUploadSheet_RejectsNonPDF(t *testing.T) {
	srv := newTestServer(t)

	rr := uploadSheet(t, srv, "/api/characters/char-1/levels/1/sheet", []byte("just some text"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUploadSheet_MalformedPDFStoredWithEmptyRecord(t *testing.T) {
	srv := newTestServer(t)

	// Valid magic bytes, unparseable document.
	rr := uploadSheet(t, srv, "/api/characters/char-1/levels/2/sheet", []byte("%PDF-1.4\ngarbage"))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var stored storage.CharacterSheet
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stored))
	assert.JSONEq(t, "{}", string(stored.Extracted))
}

// upsertFailStore fails every record write, for exercising the blob cleanup
// path.
type upsertFailStore struct{ storage.SheetStore }

func (upsertFailStore) UpsertSheet(context.Context, storage.CharacterSheet) error {
	return errors.New("disk full")
}

func TestUploadSheet_FailedUpsertRemovesBlob(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fs := afero.NewMemMapFs()
	blobs, err := blob.NewStore(fs, "sheets")
	require.NoError(t, err)

	pipe, err := pipeline.New(logger, nil)
	require.NoError(t, err)

	srv, err := New(config.DefaultConfig(), Deps{
		Store:    upsertFailStore{},
		Blobs:    blobs,
		Pipeline: pipe,
		Logger:   logger,
	})
	require.NoError(t, err)

	doc := testpdf.Build(testpdf.Page{testpdf.Text("CharacterName", "Mira")})
	rr := uploadSheet(t, srv, "/api/characters/char-1/levels/3/sheet", doc)
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	files := 0
	require.NoError(t, afero.Walk(fs, "sheets", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files++
		}
		return nil
	}))
	assert.Zero(t, files, "blob left behind after failed record write")
}

func TestUploadSheet_MissingFormField(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/characters/char-1/levels/1/sheet", bytes.NewBufferString("nope"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetSheet_NotFound(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/characters/nobody/levels/1/sheet", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSheetParams_InvalidLevel(t *testing.T) {
	srv := newTestServer(t)

	for _, level := range []string{"0", "21", "abc", "-3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/characters/char-1/levels/"+level+"/sheet", nil)
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "level %s", level)
	}
}

func TestListSheets(t *testing.T) {
	srv := newTestServer(t)

	doc := testpdf.Build(testpdf.Page{testpdf.Text("CharacterName", "Mira")})
	for _, level := range []string{"4", "2"} {
		rr := uploadSheet(t, srv, "/api/characters/char-1/levels/"+level+"/sheet", doc)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/characters/char-1/sheets", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var sheets []storage.CharacterSheet
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sheets))
	require.Len(t, sheets, 2)
	assert.Equal(t, 2, sheets[0].Level)
	assert.Equal(t, 4, sheets[1].Level)
}

func TestListSheets_EmptyArray(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/characters/nobody/sheets", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestDeleteSheet(t *testing.T) {
	srv := newTestServer(t)

	doc := testpdf.Build(testpdf.Page{testpdf.Text("CharacterName", "Mira")})
	rr := uploadSheet(t, srv, "/api/characters/char-1/levels/3/sheet", doc)
	require.Equal(t, http.StatusCreated, rr.Code)

	req := httptest.NewRequest(http.MethodDelete, "/api/characters/char-1/levels/3/sheet", nil)
	delRR := httptest.NewRecorder()
	srv.Handler().ServeHTTP(delRR, req)
	assert.Equal(t, http.StatusNoContent, delRR.Code)

	getReq := httptest.NewRequest(http.MethodGet, "/api/characters/char-1/levels/3/sheet", nil)
	getRR := httptest.NewRecorder()
	srv.Handler().ServeHTTP(getRR, getReq)
	assert.Equal(t, http.StatusNotFound, getRR.Code)
}

func TestGetSheetText(t *testing.T) {
	srv := newTestServer(t)

	doc := testpdf.Build(testpdf.Page{testpdf.Text("CharacterName", "Mira")})
	rr := uploadSheet(t, srv, "/api/characters/char-1/levels/3/sheet", doc)
	require.Equal(t, http.StatusCreated, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/characters/char-1/levels/3/sheet/text", nil)
	textRR := httptest.NewRecorder()
	srv.Handler().ServeHTTP(textRR, req)
	require.Equal(t, http.StatusOK, textRR.Code)

	var resp sheetTextResponse
	require.NoError(t, json.Unmarshal(textRR.Body.Bytes(), &resp))
	assert.Equal(t, "char-1", resp.CharacterID)
	assert.Equal(t, 3, resp.Level)
}
