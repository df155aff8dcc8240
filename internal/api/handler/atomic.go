package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/middleware"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/response"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/validation"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/atomic"
)

type atomicRecordRequest struct {
	Reference string          `json:"reference"`
	Data      json.RawMessage `json:"data"`
}

// AtomicHandler handles the free-form document collections.
type AtomicHandler struct {
	repo atomic.Repository
}

// NewAtomicHandler creates a new AtomicHandler.
func NewAtomicHandler(repo atomic.Repository) *AtomicHandler {
	return &AtomicHandler{repo: repo}
}

// collection returns the {collection} URL parameter, writing a 404 when it
// names an unknown collection.
func (h *AtomicHandler) collection(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "collection")
	if !atomic.ValidCollection(name) {
		notFound(w, r, "Collection not found")
		return "", false
	}
	return name, true
}

// recordID parses the {id} URL parameter, writing a 400 when malformed.
func recordID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "Record ID must be a valid UUID", middleware.GetRequestID(r.Context()))
		return uuid.Nil, false
	}
	return id, true
}

// List handles GET /atomic/{collection}.
func (h *AtomicHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	collection, ok := h.collection(w, r)
	if !ok {
		return
	}

	records, err := h.repo.List(r.Context(), atomic.ListFilter{
		Collection: collection,
		Reference:  r.URL.Query().Get("reference"),
	})
	if err != nil {
		internalError(w, r, "Failed to list records", err, "collection", collection)
		return
	}
	if records == nil {
		records = []atomic.Record{}
	}
	response.SuccessList(w, http.StatusOK, "Records", records, len(records), requestID)
}

// Get handles GET /atomic/{collection}/{id}.
func (h *AtomicHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	collection, ok := h.collection(w, r)
	if !ok {
		return
	}
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	rec, err := h.repo.Get(r.Context(), collection, id)
	if err != nil {
		if errors.Is(err, atomic.ErrNotFound) {
			notFound(w, r, "Record not found")
			return
		}
		internalError(w, r, "Failed to get record", err, "collection", collection, "id", id)
		return
	}
	response.Success(w, http.StatusOK, "Record", rec, requestID)
}

// Create handles POST /atomic/{collection}.
func (h *AtomicHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	collection, ok := h.collection(w, r)
	if !ok {
		return
	}

	var req atomicRecordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, r, validation.ValidateAtomicRecordRequest(validation.AtomicRecordRequest{
		Reference: req.Reference,
		Data:      req.Data,
	})) {
		return
	}

	rec := &atomic.Record{
		Collection: collection,
		Reference:  req.Reference,
		Data:       req.Data,
	}
	if identity := middleware.GetIdentity(r.Context()); identity != nil {
		rec.CreatedBy = identity.Username
	}
	if err := h.repo.Create(r.Context(), rec); err != nil {
		internalError(w, r, "Failed to create record", err, "collection", collection)
		return
	}
	response.Success(w, http.StatusCreated, "Record created", rec, requestID)
}

// Replace handles PUT /atomic/{collection}/{id}.
func (h *AtomicHandler) Replace(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	collection, ok := h.collection(w, r)
	if !ok {
		return
	}
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	var req atomicRecordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, r, validation.ValidateAtomicRecordRequest(validation.AtomicRecordRequest{
		Reference: req.Reference,
		Data:      req.Data,
	})) {
		return
	}

	rec := &atomic.Record{
		ID:         id,
		Collection: collection,
		Reference:  req.Reference,
		Data:       req.Data,
	}
	if err := h.repo.Replace(r.Context(), rec); err != nil {
		if errors.Is(err, atomic.ErrNotFound) {
			notFound(w, r, "Record not found")
			return
		}
		internalError(w, r, "Failed to update record", err, "collection", collection, "id", id)
		return
	}
	response.Success(w, http.StatusOK, "Record updated", rec, requestID)
}

// Archive handles DELETE /atomic/{collection}/{id}.
func (h *AtomicHandler) Archive(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	collection, ok := h.collection(w, r)
	if !ok {
		return
	}
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	if err := h.repo.Archive(r.Context(), collection, id); err != nil {
		if errors.Is(err, atomic.ErrNotFound) {
			notFound(w, r, "Record not found")
			return
		}
		internalError(w, r, "Failed to archive record", err, "collection", collection, "id", id)
		return
	}
	response.Success(w, http.StatusOK, "Record archived", nil, requestID)
}
