package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter erstellt den HTTP-Router mit allen Endpoints
func NewRouter(h *Handler) http.Handler {
	r := mux.NewRouter()

	// API-Version
	api := r.PathPrefix("/api/v1").Subrouter()

	// System
	api.HandleFunc("/health", h.HealthCheck).Methods("GET")
	api.HandleFunc("/ws", h.Events).Methods("GET")

	// Filter und Tabelle
	api.HandleFunc("/subjects", h.GetSubjects).Methods("GET")
	api.HandleFunc("/topics", h.GetTopics).Methods("GET")
	api.HandleFunc("/topics", h.UpdateTopics).Methods("PUT")
	api.HandleFunc("/metrics", h.GetMetrics).Methods("GET")

	// Katalog
	api.HandleFunc("/catalog/reset", h.ResetCatalog).Methods("POST")
	api.HandleFunc("/catalog/import", h.ImportCatalog).Methods("POST")
	api.HandleFunc("/catalog/export", h.ExportCatalog).Methods("GET")
	api.HandleFunc("/catalog/save", h.SaveCatalog).Methods("POST")
	api.HandleFunc("/catalog/syllabus", h.ImportSyllabus).Methods("POST")
	api.HandleFunc("/snapshots", h.GetSnapshots).Methods("GET")

	// Statische Dateien (Frontend)
	if h.config != nil && h.config.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(h.config.StaticDir)))
	}

	// CORS für lokale Entwicklung
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	return c.Handler(r)
}
