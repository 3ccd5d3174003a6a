package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/matzehuels/symbolkit/pkg/buildinfo"
	"github.com/matzehuels/symbolkit/pkg/design"
	"github.com/matzehuels/symbolkit/pkg/errors"
	"github.com/matzehuels/symbolkit/pkg/expand"
	"github.com/matzehuels/symbolkit/pkg/layout"
	"github.com/matzehuels/symbolkit/pkg/pipeline"
	"github.com/matzehuels/symbolkit/pkg/render/dot"
	"github.com/matzehuels/symbolkit/pkg/rule"
)

// request is the body shared by every /v1 endpoint. Fields an endpoint
// does not use are ignored.
type request struct {
	Design json.RawMessage `json:"design"`
	Rules  json.RawMessage `json:"rules,omitempty"`
	pipeline.Options
}

func (q *request) input() pipeline.Input {
	in := pipeline.Input{Design: q.Design, Rules: q.Rules}
	if string(in.Design) == "null" {
		in.Design = nil
	}
	if string(in.Rules) == "null" {
		in.Rules = nil
	}
	return in
}

type expandResponse struct {
	Design *design.Document   `json:"design"`
	Rules  *rule.Store        `json:"rules"`
	Stats  expand.Stats       `json:"stats"`
	Cache  pipeline.CacheInfo `json:"cache"`
}

type layoutResponse struct {
	Frames []layout.FrameEntry `json:"frames"`
	Stats  pipeline.Stats      `json:"stats"`
	Cache  pipeline.CacheInfo  `json:"cache"`
}

type resizeResponse struct {
	Design *design.Document    `json:"design"`
	Rules  *rule.Store         `json:"rules"`
	Frames []layout.FrameEntry `json:"frames"`
}

type healthResponse struct {
	Status  string         `json:"status"`
	Version buildinfo.Info `json:"version"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Version: buildinfo.Get()})
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	q, ok := s.decode(w, r)
	if !ok {
		return
	}
	res, err := s.runner.Expand(r.Context(), q.input(), q.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, expandResponse{
		Design: res.Document,
		Rules:  res.Rules,
		Stats:  res.Stats.Expand,
		Cache:  res.CacheInfo,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	q, ok := s.decode(w, r)
	if !ok {
		return
	}
	res, err := s.runner.Layout(r.Context(), q.input(), q.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, layoutResponse{Frames: res.Frames, Stats: res.Stats, Cache: res.CacheInfo})
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	q, ok := s.decode(w, r)
	if !ok {
		return
	}
	res, err := s.runner.Resize(r.Context(), q.input(), q.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resizeResponse{Design: res.Document, Rules: res.Rules, Frames: res.Frames})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q, ok := s.decode(w, r)
	if !ok {
		return
	}
	res, err := s.runner.Render(r.Context(), q.input(), q.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ct := "text/vnd.graphviz; charset=utf-8"
	if strings.EqualFold(q.Format, dot.FormatSVG) {
		ct = "image/svg+xml"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Artifact); err != nil {
		s.loggerFrom(r.Context()).Debug("write response", "err", err)
	}
}

// decode reads the request body. On failure it writes the error response
// and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*request, bool) {
	var q request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(&q); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return nil, false
	}
	q.Logger = s.loggerFrom(r.Context())
	return &q, true
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.loggerFrom(r.Context()).Debug("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	logger := s.loggerFrom(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "err", err)
	} else {
		logger.Debug("request rejected", "code", code, "err", err)
	}
	s.writeJSON(w, r, status, errorBody{Error: errorDetail{
		Code:      code,
		Message:   errors.UserMessage(err),
		RequestID: RequestID(r.Context()),
	}})
}
