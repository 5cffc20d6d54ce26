package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"studytracker/internal/catalog"
	"studytracker/internal/config"
	"studytracker/internal/metrics"
	"studytracker/internal/models"
	"studytracker/internal/reconcile"
	"studytracker/internal/session"
	"studytracker/internal/storage"
	"studytracker/internal/tabular"
)

const maxUploadSize = 20 << 20

// Handler verwaltet alle API-Endpunkte
type Handler struct {
	session *session.Session
	hub     *Hub
	config  *config.Config
	log     zerolog.Logger
}

// NewHandler erstellt einen neuen API-Handler
func NewHandler(s *session.Session, hub *Hub, cfg *config.Config, log zerolog.Logger) *Handler {
	return &Handler{
		session: s,
		hub:     hub,
		config:  cfg,
		log:     log,
	}
}

// Response-Helper
func jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, message string, status int) {
	jsonResponse(w, map[string]string{"error": message}, status)
}

// statusFor ordnet Fehler der Sitzung einem HTTP-Status zu
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrImport),
		errors.Is(err, reconcile.ErrMalformedEdit):
		return http.StatusBadRequest
	case errors.Is(err, reconcile.ErrRowCountMismatch),
		errors.Is(err, storage.ErrNoBackend):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// === System ===

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]interface{}{
		"status":    "ok",
		"backend":   h.session.BackendName(),
		"warning":   h.session.Warning(),
		"clients":   h.hub.Clients(),
		"timestamp": time.Now(),
	}, http.StatusOK)
}

// Events öffnet den WebSocket-Strom der Katalogänderungen
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	c := h.session.Catalog()
	h.hub.Serve(w, r, session.Event{
		Type:     "hello",
		Rows:     c.Len(),
		Filter:   models.AllSubjects,
		Overview: metrics.Summarize(c.Records),
		Message:  h.session.Warning(),
	})
}

// === Katalog lesen ===

// GetSubjects liefert die Optionen des Fach-Filters, "ALL" zuerst
func (h *Handler) GetSubjects(w http.ResponseWriter, r *http.Request) {
	subjects := h.session.Subjects()
	jsonResponse(w, map[string]interface{}{
		"options":  append([]string{models.AllSubjects}, subjects...),
		"subjects": subjects,
		"statuses": models.AllStatuses(),
	}, http.StatusOK)
}

func (h *Handler) GetTopics(w http.ResponseWriter, r *http.Request) {
	filter := models.ParseFilter(r.URL.Query().Get("subject"))
	records := h.session.Query(filter)

	jsonResponse(w, map[string]interface{}{
		"filter":  filter.String(),
		"records": records,
		"count":   len(records),
	}, http.StatusOK)
}

func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	filter := models.ParseFilter(r.URL.Query().Get("subject"))
	jsonResponse(w, h.session.Dashboard(filter), http.StatusOK)
}

// === Bearbeiten ===

// UpdateTopics nimmt die bearbeiteten Zeilen der gefilterten Ansicht entgegen
func (h *Handler) UpdateTopics(w http.ResponseWriter, r *http.Request) {
	filter := models.ParseFilter(r.URL.Query().Get("subject"))

	var req struct {
		Records []models.TopicRecord `json:"records"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Ungültige Anfrage: "+err.Error(), http.StatusBadRequest)
		return
	}

	records, err := h.session.ApplyEdits(filter, req.Records)
	if err != nil {
		errorResponse(w, err.Error(), statusFor(err))
		return
	}

	jsonResponse(w, map[string]interface{}{
		"filter":  filter.String(),
		"records": records,
		"count":   len(records),
	}, http.StatusOK)
}

// === Import / Export / Persistenz ===

func (h *Handler) ImportCatalog(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		errorResponse(w, "Upload zu groß oder ungültig", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errorResponse(w, "Keine Datei gefunden", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, err := h.session.Import(header.Filename, file)
	if err != nil {
		// Der bisherige Katalog bleibt stehen
		errorResponse(w, err.Error(), statusFor(err))
		return
	}

	jsonResponse(w, map[string]interface{}{
		"message": fmt.Sprintf("%d Themen importiert", rows),
		"rows":    rows,
	}, http.StatusOK)
}

func (h *Handler) ExportCatalog(w http.ResponseWriter, r *http.Request) {
	format, err := tabular.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := h.session.Export(&buf, format); err != nil {
		h.log.Error().Err(err).Msg("Export fehlgeschlagen")
		errorResponse(w, "Export fehlgeschlagen", http.StatusInternalServerError)
		return
	}

	filename := "studytracker-" + time.Now().Format("2006-01-02") + "." + string(format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) SaveCatalog(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Save(r.Context()); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		errorResponse(w, err.Error(), status)
		return
	}
	jsonResponse(w, map[string]string{"message": "Gespeichert"}, http.StatusOK)
}

func (h *Handler) ResetCatalog(w http.ResponseWriter, r *http.Request) {
	h.session.Reset()
	jsonResponse(w, map[string]interface{}{
		"message": "Katalog zurückgesetzt",
		"rows":    len(h.session.Query(models.Filter{})),
	}, http.StatusOK)
}

// ImportSyllabus baut den Katalog aus einem hochgeladenen Lehrplan-PDF neu auf
func (h *Handler) ImportSyllabus(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		errorResponse(w, "Upload zu groß oder ungültig", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errorResponse(w, "Keine Datei gefunden", http.StatusBadRequest)
		return
	}
	defer file.Close()

	seed, err := h.session.ImportSyllabus(header.Filename, file)
	if err != nil {
		errorResponse(w, err.Error(), statusFor(err))
		return
	}

	jsonResponse(w, map[string]interface{}{
		"message":  fmt.Sprintf("%d Fächer mit %d Themen erkannt", len(seed.Subjects), seed.TopicCount()),
		"subjects": seed.Subjects,
	}, http.StatusOK)
}

func (h *Handler) GetSnapshots(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.session.Snapshots(r.Context(), getQueryInt(r, "limit", 20))
	if err != nil {
		errorResponse(w, "Snapshots konnten nicht geladen werden", http.StatusBadGateway)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"backend":   h.session.BackendName(),
		"snapshots": snapshots,
	}, http.StatusOK)
}

// Hilfsfunktion für optionale Query-Parameter
func getQueryInt(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}
