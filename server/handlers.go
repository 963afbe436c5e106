// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	gerrors "github.com/tochemey/sketcd/errors"
	"github.com/tochemey/sketcd/users"
)

// createRequest is the accepted create body. Any id sent by the client is ignored.
type createRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) listAll(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.ListAll(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var request createRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := decoder.Decode(&request); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("malformed user: %v", err)})
		return
	}

	created, err := s.service.Create(r.Context(), &users.User{
		Title:  request.Title,
		Author: request.Author,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Location", BasePath+"/"+created.ID.String())
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) findOne(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	record, found, err := s.service.FindOne(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if !found {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("user %s not found", id)})
		return
	}

	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) deleteOne(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.service.DeleteOne(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteAll(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.service.DeleteAll(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, deleted)
}

func (s *Server) listRawKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := s.service.ListRawKeys(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	// an empty store encodes as null
	s.writeJSON(w, http.StatusOK, keys)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid user id: %v", err)})
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warnf("failed to write response: %v", err)
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, gerrors.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, users.ErrNilUser):
		return http.StatusBadRequest
	case errors.Is(err, gerrors.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
