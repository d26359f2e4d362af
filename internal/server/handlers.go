package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/rollkeeper/rollkeeper/internal/pdf/pdferr"
	"github.com/rollkeeper/rollkeeper/internal/sheet"
	"github.com/rollkeeper/rollkeeper/internal/storage"
)

var pdfMagic = []byte("%PDF-")

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type sheetTextResponse struct {
	CharacterID string `json:"characterId"`
	Level       int    `json:"level"`
	Text        string `json:"text"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: s.version})
}

// handleUploadSheet accepts a multipart PDF upload, runs extraction, stores
// the raw bytes in the blob store and upserts the sheet record. A document
// pdfcpu cannot open is still stored with an empty record; uploads always
// land, extraction is best effort. Bytes that are not a PDF at all are
// rejected.
func (s *Server) handleUploadSheet(w http.ResponseWriter, r *http.Request) {
	characterID, level, ok := sheetParams(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	file, header, err := r.FormFile("sheet")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "uploaded file is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart form field 'sheet' is required")
		return
	}
	defer file.Close()

	pdfBytes, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "uploaded file is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "read uploaded file")
		return
	}
	if !bytes.HasPrefix(pdfBytes, pdfMagic) {
		writeError(w, http.StatusBadRequest, "uploaded file is not a PDF")
		return
	}

	rec, err := s.pipeline.Run(r.Context(), pdfBytes)
	switch {
	case err == nil:
	case pdferr.IsMalformed(err):
		s.logger.Warn("sheet extraction failed, storing upload with empty record",
			"character_id", characterID, "level", level, "error", err)
		rec = &sheet.Record{}
	default:
		writeError(w, http.StatusInternalServerError, "extract sheet")
		return
	}

	extracted, err := json.Marshal(rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode extracted record")
		return
	}

	key := fmt.Sprintf("characters/%s/levels/%d/%s.pdf", characterID, level, uuid.NewString())
	if _, err := s.blobs.Put(key, pdfBytes); err != nil {
		s.logger.Error("store sheet blob", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "store uploaded file")
		return
	}

	identity := rec.IdentityTriple()
	stored := storage.CharacterSheet{
		CharacterID: characterID,
		Level:       level,
		SheetKey:    key,
		Extracted:   extracted,
		Race:        identity.Race,
		Background:  identity.Background,
		Class:       identity.Class,
	}
	if err := s.store.UpsertSheet(r.Context(), stored); err != nil {
		s.logger.Error("upsert sheet", "character_id", characterID, "level", level, "error", err)
		if derr := s.blobs.Delete(key); derr != nil {
			s.logger.Warn("remove orphaned sheet blob", "key", key, "error", derr)
		}
		writeError(w, http.StatusInternalServerError, "store sheet record")
		return
	}

	s.logger.Info("sheet uploaded",
		"character_id", characterID,
		"level", level,
		"filename", header.Filename,
		"bytes", len(pdfBytes))

	saved, err := s.store.GetSheet(r.Context(), characterID, level)
	if err != nil {
		writeJSON(w, http.StatusCreated, stored)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetSheet(w http.ResponseWriter, r *http.Request) {
	characterID, level, ok := sheetParams(w, r)
	if !ok {
		return
	}
	stored, err := s.store.GetSheet(r.Context(), characterID, level)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "sheet not found")
			return
		}
		s.logger.Error("get sheet", "character_id", characterID, "level", level, "error", err)
		writeError(w, http.StatusInternalServerError, "load sheet record")
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// handleGetSheetText serves the plain text of the stored PDF, for clients
// that index handouts and flattened sheets.
func (s *Server) handleGetSheetText(w http.ResponseWriter, r *http.Request) {
	characterID, level, ok := sheetParams(w, r)
	if !ok {
		return
	}
	stored, err := s.store.GetSheet(r.Context(), characterID, level)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "sheet not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "load sheet record")
		return
	}
	pdfBytes, err := s.blobs.Get(stored.SheetKey)
	if err != nil {
		s.logger.Error("load sheet blob", "key", stored.SheetKey, "error", err)
		writeError(w, http.StatusInternalServerError, "load stored file")
		return
	}
	extracted, err := s.texts.Extract(r.Context(), pdfBytes)
	if err != nil {
		extracted = ""
	}
	writeJSON(w, http.StatusOK, sheetTextResponse{
		CharacterID: characterID,
		Level:       level,
		Text:        extracted,
	})
}

func (s *Server) handleDeleteSheet(w http.ResponseWriter, r *http.Request) {
	characterID, level, ok := sheetParams(w, r)
	if !ok {
		return
	}
	stored, err := s.store.GetSheet(r.Context(), characterID, level)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "sheet not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "load sheet record")
		return
	}
	if err := s.store.DeleteSheet(r.Context(), characterID, level); err != nil && !errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "delete sheet record")
		return
	}
	if err := s.blobs.Delete(stored.SheetKey); err != nil {
		s.logger.Warn("delete sheet blob", "key", stored.SheetKey, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSheets(w http.ResponseWriter, r *http.Request) {
	characterID := strings.TrimSpace(r.PathValue("id"))
	if characterID == "" {
		writeError(w, http.StatusBadRequest, "character id is required")
		return
	}
	sheets, err := s.store.ListSheets(r.Context(), characterID)
	if err != nil {
		s.logger.Error("list sheets", "character_id", characterID, "error", err)
		writeError(w, http.StatusInternalServerError, "list sheet records")
		return
	}
	if sheets == nil {
		sheets = []storage.CharacterSheet{}
	}
	writeJSON(w, http.StatusOK, sheets)
}

func sheetParams(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	characterID := strings.TrimSpace(r.PathValue("id"))
	if characterID == "" {
		writeError(w, http.StatusBadRequest, "character id is required")
		return "", 0, false
	}
	level, err := strconv.Atoi(r.PathValue("level"))
	if err != nil || level < 1 || level > 20 {
		writeError(w, http.StatusBadRequest, "level must be an integer between 1 and 20")
		return "", 0, false
	}
	return characterID, level, true
}
