// Package httpapi implements the catalog HTTP surface (spec §6.2): a
// set of read-only endpoints over the same immutable Catalog the room
// runtime consumes directly. This boundary adapter exists only for the
// client to fetch display data — it never touches a Room.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/covenhold/warlock/internal/catalog"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler serves the catalog endpoints.
type Handler struct {
	cat    *catalog.Catalog
	logger *zap.Logger
}

// NewHandler wraps a loaded Catalog for HTTP serving.
func NewHandler(cat *catalog.Catalog, logger *zap.Logger) *Handler {
	return &Handler{cat: cat, logger: logger}
}

// NewRouter builds the full catalog router, with a request-logging
// middleware wrapping every route.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware(h.logger))

	r.HandleFunc("/config", h.GetConfig).Methods(http.MethodGet)
	r.HandleFunc("/config/races", h.GetRaces).Methods(http.MethodGet)
	r.HandleFunc("/config/classes", h.GetClasses).Methods(http.MethodGet)
	r.HandleFunc("/config/compatibility", h.GetCompatibility).Methods(http.MethodGet)
	r.HandleFunc("/config/racial-abilities", h.GetRacialAbilities).Methods(http.MethodGet)
	r.HandleFunc("/config/abilities/{class}", h.GetAbilitiesForClass).Methods(http.MethodGet)
	return r
}

// responseWriter wraps http.ResponseWriter to capture the status code
// for the completion log line.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, req)
			logger.Info("http request",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", wrapped.statusCode),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// GetConfig returns the full catalog in one payload.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cat)
}

// GetRaces returns every playable race.
func (h *Handler) GetRaces(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cat.Races)
}

// GetClasses returns every playable class and its ability list.
func (h *Handler) GetClasses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cat.Classes)
}

// GetCompatibility returns the race/class compatibility table.
func (h *Handler) GetCompatibility(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cat.Compatibility)
}

// GetRacialAbilities returns each race's racial ability definition.
func (h *Handler) GetRacialAbilities(w http.ResponseWriter, r *http.Request) {
	out := make([]catalog.RacialAbility, 0, len(h.cat.Races))
	for _, race := range h.cat.Races {
		out = append(out, race.Racial)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetAbilitiesForClass returns the ability list for one class, 404 if
// the class id is unknown.
func (h *Handler) GetAbilitiesForClass(w http.ResponseWriter, r *http.Request) {
	classID := mux.Vars(r)["class"]
	classDef := h.cat.ClassByID(classID)
	if classDef == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown class %q", classID))
		return
	}
	writeJSON(w, http.StatusOK, classDef.Abilities)
}
