package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/Makepad-fr/items/internal/httputil"
	"github.com/Makepad-fr/items/internal/model"
)

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err, "request_id", requestIDFrom(r.Context()))
		httputil.WriteJSON(w, http.StatusInternalServerError, model.HealthStatus{
			Status:   model.HealthError,
			Database: model.DatabaseDisconnected,
		})
		return
	}
	httputil.WriteOK(w, model.HealthStatus{
		Status:   model.HealthOK,
		Database: model.DatabaseConnected,
	})
}

// handleListItems handles GET /api/items.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	httputil.WriteOK(w, items)
}

// handleGetItem handles GET /api/items/{id}.
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, item)
}

// handleCreateItem handles POST /api/items.
func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	in, err := s.decodeInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name, description := in.Normalize()
	item, err := s.store.Create(r.Context(), name, description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteCreated(w, item)
}

// handleUpdateItem handles PUT /api/items/{id}.
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := s.decodeInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name, description := in.Normalize()
	item, err := s.store.Update(r.Context(), id, name, description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, item)
}

// handleDeleteItem handles DELETE /api/items/{id}.
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteNoContent(w)
}

// pathID parses the {id} segment. An id that is not an integer cannot
// match any row, so it is reported as not found.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, notFound()
	}
	return id, nil
}

func (s *Server) decodeInput(w http.ResponseWriter, r *http.Request) (model.ItemInput, error) {
	var in model.ItemInput

	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&in); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return in, invalid(errors.New("request body is empty"))
		case errors.As(err, &maxErr):
			return in, invalid(fmt.Errorf("request body exceeds %d bytes", maxErr.Limit))
		default:
			return in, invalid(fmt.Errorf("invalid JSON body: %w", err))
		}
	}
	if err := in.Validate(); err != nil {
		return in, invalid(err)
	}
	return in, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)
	if e.Kind == KindStorage {
		s.logger.Error("storage error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
			"request_id", requestIDFrom(r.Context()),
		)
	}
	httputil.WriteError(w, e.Kind.StatusCode(), e.publicMessage(s.opts.ExposeErrors))
}
