package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/symbolkit/pkg/errors"
	"github.com/matzehuels/symbolkit/pkg/pipeline"
)

const buttonDesign = `{
  "frames": [{"class": "frame", "id": "page",
    "bounds": {"x": 0, "y": 0, "width": 200, "height": 100}, "matrix": [1, 0, 0, 1, 0, 0],
    "childObjects": [{"class": "symbolInstance", "id": "ok", "masterId": "button",
      "bounds": {"x": 0, "y": 0, "width": 60, "height": 20}, "matrix": [1, 0, 0, 1, 10, -10]}]}],
  "references": [{"class": "symbolMaster", "id": "button",
    "bounds": {"x": 0, "y": 0, "width": 60, "height": 20}, "matrix": [1, 0, 0, 1, 0, 0],
    "childObjects": [{"class": "text", "id": "label", "content": "OK",
      "bounds": {"x": 0, "y": 0, "width": 40, "height": 10}, "matrix": [1, 0, 0, 1, 10, -5]}]}]
}`

func newTestServer() *Server {
	return New(pipeline.NewRunner(nil, nil, nil))
}

func post(t *testing.T, s *Server, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func body(fields map[string]any) string {
	fields["design"] = json.RawMessage(buttonDesign)
	data, _ := json.Marshal(fields)
	return string(data)
}

func TestHealth(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "ok" {
		t.Errorf("status = %q, want ok", got.Status)
	}
}

func TestRequestID(t *testing.T) {
	s := newTestServer()

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		id := rec.Header().Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("generated id %q is not a uuid: %v", id, err)
		}
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
			t.Errorf("request id = %q, want abc-123", got)
		}
	})

	t.Run("in context", func(t *testing.T) {
		var seen string
		h := s.requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestID(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "ctx-id")
		h.ServeHTTP(httptest.NewRecorder(), req)
		if seen != "ctx-id" {
			t.Errorf("RequestID(ctx) = %q, want ctx-id", seen)
		}
	})

	if RequestID(context.Background()) != "" {
		t.Error("RequestID of a bare context should be empty")
	}
}

func TestExpandEndpoint(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/v1/expand", body(map[string]any{}), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var got struct {
		Design map[string]any `json:"design"`
		Rules  map[string]any `json:"rules"`
		Stats  struct {
			InstancesExpanded int `json:"instances_expanded"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Stats.InstancesExpanded != 1 {
		t.Errorf("instances_expanded = %d, want 1", got.Stats.InstancesExpanded)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"ok__label"`)) {
		t.Error("response design should contain the prefixed child id")
	}
	if _, ok := got.Rules["obj"]; !ok {
		t.Error("response rules should carry an obj list")
	}
}

func TestLayoutEndpoint(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/v1/layout", body(map[string]any{"width": 300, "height": 100}), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var got struct {
		Frames []struct {
			ID    string `json:"id"`
			Frame struct {
				Size struct {
					Width float64 `json:"width"`
				} `json:"size"`
			} `json:"frame"`
		} `json:"frames"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Frames) == 0 || got.Frames[0].ID != "page" {
		t.Fatalf("frames = %+v", got.Frames)
	}
	if w := got.Frames[0].Frame.Size.Width; w != 300 {
		t.Errorf("page width = %g, want 300", w)
	}
}

func TestResizeEndpoint(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/v1/resize", body(map[string]any{"node": "ok", "width": 90, "height": 20}), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"frames"`)) {
		t.Error("resize response should include frames")
	}
}

func TestRenderEndpoint(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/v1/render", body(map[string]any{"format": "dot"}), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "digraph layout {") {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestErrors(t *testing.T) {
	s := newTestServer()
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"malformed body", "/v1/expand", "{", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"missing design", "/v1/expand", `{}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad design", "/v1/expand", `{"design": {"frames": 3}}`, http.StatusBadRequest, errors.ErrCodeInvalidDocument},
		{"unknown node", "/v1/resize", body(map[string]any{"node": "nope", "width": 1, "height": 1}), http.StatusNotFound, errors.ErrCodeNodeNotFound},
		{"bad format", "/v1/render", body(map[string]any{"format": "gif"}), http.StatusBadRequest, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{RequestIDHeader: []string{"req-" + tt.name}}
			rec := post(t, s, tt.path, tt.body, header)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
			var got errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Error.Code != tt.code {
				t.Errorf("code = %s, want %s", got.Error.Code, tt.code)
			}
			if got.Error.RequestID != "req-"+tt.name {
				t.Errorf("request_id = %q", got.Error.RequestID)
			}
		})
	}
}

func TestWrongContentType(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/v1/expand", strings.NewReader(buttonDesign))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}
}
