// Package server provides the UI-facing HTTP surface over the
// coordinator. It is a trusted local API: handlers translate JSON
// requests into coordinator calls and never talk to a store directly.
package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/rooststack/coopsync/internal/models"
	"github.com/rooststack/coopsync/internal/syncer"
	"github.com/rooststack/coopsync/internal/transfer"
)

// maxBodyBytes caps request bodies; a full snapshot import comfortably
// fits well below this.
const maxBodyBytes = 16 * 1024 * 1024

// MuxConfig holds dependencies for building the HTTP mux.
type MuxConfig struct {
	Coordinator *syncer.Coordinator
	Logger      *slog.Logger
}

// NewMux builds the HTTP mux exposing the coordinator contract:
// snapshot reads, per-entity mutation, sync/push triggers, connection
// management, and bulk import/export.
func NewMux(cfg MuxConfig) *http.ServeMux {
	h := &handler{coord: cfg.Coordinator, logger: cfg.Logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", h.status)
	mux.HandleFunc("GET /api/data/{entity}", h.getCollection)
	mux.HandleFunc("PUT /api/data/{entity}", h.putCollection)
	mux.HandleFunc("POST /api/sync", h.sync)
	mux.HandleFunc("POST /api/push", h.push)
	mux.HandleFunc("POST /api/connect", h.connect)
	mux.HandleFunc("POST /api/disconnect", h.disconnect)
	mux.HandleFunc("PUT /api/mode", h.mode)
	mux.HandleFunc("GET /api/export", h.export)
	mux.HandleFunc("POST /api/import", h.importSnapshot)

	return mux
}

type handler struct {
	coord  *syncer.Coordinator
	logger *slog.Logger
}

type statusResponse struct {
	StorageMode   models.StorageMode `json:"storageMode"`
	SyncStatus    models.SyncStatus  `json:"syncStatus"`
	IsRemoteReady bool               `json:"isRemoteReady"`
	IsLoading     bool               `json:"isLoading"`
	Owner         string             `json:"owner,omitempty"`
	Repo          string             `json:"repo,omitempty"`
}

func (h *handler) status(w http.ResponseWriter, _ *http.Request) {
	creds := h.coord.Credentials()

	// The token stays server-side; the settings screen only needs to
	// show which repository is connected.
	writeJSON(w, http.StatusOK, statusResponse{
		StorageMode:   h.coord.StorageMode(),
		SyncStatus:    h.coord.SyncStatus(),
		IsRemoteReady: h.coord.IsRemoteReady(),
		IsLoading:     h.coord.IsLoading(),
		Owner:         creds.Owner,
		Repo:          creds.Repo,
	})
}

func (h *handler) getCollection(w http.ResponseWriter, r *http.Request) {
	entity := r.PathValue("entity")
	if !models.KnownEntity(entity) {
		writeError(w, http.StatusNotFound, "unknown entity")
		return
	}

	writeJSON(w, http.StatusOK, h.coord.Collection(entity))
}

func (h *handler) putCollection(w http.ResponseWriter, r *http.Request) {
	entity := r.PathValue("entity")

	var records models.Collection
	if err := decodeBody(r, &records); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.coord.Mutate(r.Context(), entity, records); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.coord.Collection(entity))
}

func (h *handler) sync(w http.ResponseWriter, r *http.Request) {
	if err := h.coord.Synchronize(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) push(w http.ResponseWriter, r *http.Request) {
	if err := h.coord.SaveAllToRemote(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) connect(w http.ResponseWriter, r *http.Request) {
	var creds models.RemoteConfig
	if err := decodeBody(r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.coord.Connect(r.Context(), creds.Token, creds.Owner, creds.Repo); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) disconnect(w http.ResponseWriter, _ *http.Request) {
	h.coord.Disconnect()
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) mode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode models.StorageMode `json:"mode"`
	}

	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.coord.SetStorageMode(r.Context(), body.Mode); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) export(w http.ResponseWriter, _ *http.Request) {
	data, err := transfer.MarshalSnapshot(h.coord.ExportSnapshot())
	if err != nil {
		h.logger.Error("marshaling export", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err.Error())

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="coopsync-export.json"`)
	_, _ = w.Write(data)
}

func (h *handler) importSnapshot(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body")
		return
	}

	snapshot, err := transfer.ParseSnapshot(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.coord.ImportSnapshot(r.Context(), snapshot); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(r *http.Request, out any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))

	return dec.Decode(out)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
