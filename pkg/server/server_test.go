package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/matzehuels/gridlay/pkg/cache"
	"github.com/matzehuels/gridlay/pkg/observability"
	"github.com/matzehuels/gridlay/pkg/pipeline"
	"github.com/matzehuels/gridlay/pkg/scene"
	"github.com/matzehuels/gridlay/pkg/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const pageJSON = `{
  "leaves": {
    "header": {"width": 2, "height": 1},
    "nav": {"width": 1, "height": 2},
    "main": {"width": 1, "height": 2}
  },
  "nodes": {"page": {"template": ["header header", "nav main", "nav main"]}}
}`

const pageTOML = `
[leaves.header]
width = 2
height = 1

[leaves.nav]
width = 1
height = 2

[leaves.main]
width = 1
height = 2

[nodes.page]
template = ["header header / nav main / nav main"]
`

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return New(pipeline.NewRunner(c, nil, nil), WithStore(store.NewMemoryStore())).Handler()
}

func do(t *testing.T, h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return e
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestLayout(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/v1/layout", "application/json", pageJSON)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := rec.Header().Get("X-Gridlay-Cache"); got != "miss" {
		t.Errorf("X-Gridlay-Cache = %q, want miss", got)
	}
	sc, err := scene.Unmarshal(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if sc.Width != 2 || sc.Height != 3 || len(sc.Boxes) != 3 {
		t.Errorf("scene = %+v", sc)
	}

	again := do(t, h, http.MethodPost, "/v1/layout", "application/json", pageJSON)
	if got := again.Header().Get("X-Gridlay-Cache"); got != "hit" {
		t.Errorf("second X-Gridlay-Cache = %q, want hit", got)
	}
	if rec.Header().Get("ETag") != again.Header().Get("ETag") {
		t.Error("ETag should be stable for the same document")
	}
}

func TestLayoutFormats(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name        string
		target      string
		contentType string
		body        string
		wantType    string
		wantBody    string
	}{
		{
			name:     "text",
			target:   "/v1/layout?format=text",
			body:     pageJSON,
			wantType: "text/plain; charset=utf-8",
			wantBody: "header  header\nnav     main\nnav     main\n",
		},
		{
			name:        "toml body by content type",
			target:      "/v1/layout?format=text",
			contentType: "application/toml",
			body:        pageTOML,
			wantType:    "text/plain; charset=utf-8",
			wantBody:    "header  header\nnav     main\nnav     main\n",
		},
		{
			name:     "toml body by query",
			target:   "/v1/layout?format=text&doc_format=toml",
			body:     pageTOML,
			wantType: "text/plain; charset=utf-8",
			wantBody: "header  header\nnav     main\nnav     main\n",
		},
		{
			name:     "root override",
			target:   "/v1/layout?format=text&root=nav",
			body:     pageJSON,
			wantType: "text/plain; charset=utf-8",
			wantBody: "nav\nnav\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.target, tt.contentType, tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.wantType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.wantType)
			}
			if got := rec.Body.String(); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}

	rec := do(t, h, http.MethodPost, "/v1/layout?format=svg", "", pageJSON)
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte("<svg")) {
		t.Errorf("svg: status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestLayoutErrors(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name       string
		target     string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"malformed", "/v1/layout", "{", http.StatusBadRequest, "INVALID_DOCUMENT"},
		{"bad doc format", "/v1/layout?doc_format=xml", pageJSON, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad output format", "/v1/layout?format=gif", pageJSON, http.StatusBadRequest, "INVALID_FORMAT"},
		{"unknown label", "/v1/layout", `{"leaves":{"a":{"width":1,"height":1}},"nodes":{"p":{"template":["a ghost"]}}}`,
			http.StatusUnprocessableEntity, "NODE_NOT_FOUND"},
		{"ragged", "/v1/layout", `{"leaves":{"a":{"width":1,"height":1},"b":{"width":1,"height":1}},"nodes":{"p":{"template":["a b","a"]}}}`,
			http.StatusUnprocessableEntity, "INVALID_TEMPLATE"},
		{"l shape", "/v1/layout", `{"leaves":{"a":{"width":1,"height":1},"b":{"width":1,"height":1}},"nodes":{"p":{"template":["a a","a b"]}}}`,
			http.StatusUnprocessableEntity, "INVALID_SHAPE"},
		{"undefined size", "/v1/layout", `{"leaves":{"a":{"width":1}},"nodes":{"p":{"template":["a"]}}}`,
			http.StatusUnprocessableEntity, "UNDEFINED_LEAF_SIZE"},
		{"cycle", "/v1/layout", `{"root":"p","nodes":{"p":{"template":["q"]},"q":{"template":["p"]}}}`,
			http.StatusUnprocessableEntity, "CYCLE_DETECTED"},
		{"oversized text", "/v1/layout?format=text", `{"leaves":{"a":{"width":100000,"height":100000}}}`,
			http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.target, "", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if e := decodeError(t, rec); e.Code != tt.wantCode {
				t.Errorf("code = %q, want %q (message %q)", e.Code, tt.wantCode, e.Message)
			}
		})
	}
}

func TestLayoutBodyLimit(t *testing.T) {
	h := New(pipeline.NewRunner(nil, nil, nil), WithMaxBodySize(16)).Handler()
	rec := do(t, h, http.MethodPost, "/v1/layout", "", pageJSON)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDocuments(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPut, "/v1/documents/page", "application/json", pageJSON)
	if rec.Code != http.StatusCreated {
		t.Fatalf("PUT status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created store.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Name != "page" || created.ID == "" {
		t.Errorf("created = %+v", created)
	}

	rec = do(t, h, http.MethodPut, "/v1/documents/page", "application/toml", pageTOML)
	if rec.Code != http.StatusOK {
		t.Errorf("second PUT status = %d, want 200", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/v1/documents/page", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	var got store.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != created.ID {
		t.Errorf("ID changed on update: %s -> %s", created.ID, got.ID)
	}
	if diff := cmp.Diff([]string{"header header / nav main / nav main"}, got.Document.Nodes["page"].Template); diff != "" {
		t.Errorf("stored template mismatch (-want +got):\n%s", diff)
	}

	rec = do(t, h, http.MethodGet, "/v1/documents/page/render?format=text", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("render status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if want := "header  header\nnav     main\nnav     main\n"; rec.Body.String() != want {
		t.Errorf("render body = %q, want %q", rec.Body.String(), want)
	}

	rec = do(t, h, http.MethodGet, "/v1/documents", "", "")
	var list []DocumentSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "page" {
		t.Errorf("list = %+v", list)
	}

	rec = do(t, h, http.MethodDelete, "/v1/documents/page", "", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want 204", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/v1/documents/page", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET after DELETE status = %d, want 404", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", e.Code)
	}
	rec = do(t, h, http.MethodGet, "/v1/documents/page/render", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("render missing status = %d, want 404", rec.Code)
	}
}

func TestDocumentNameValidation(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodPut, "/v1/documents/..hidden", "", pageJSON)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	routes []string
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.routes = append(h.routes, method+" "+route)
}

func TestInstrument(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	h := newTestServer(t)
	do(t, h, http.MethodGet, "/healthz", "", "")
	do(t, h, http.MethodGet, "/v1/documents/missing", "", "")

	if len(hooks.routes) != 2 {
		t.Fatalf("routes = %v, want 2 entries", hooks.routes)
	}
	if hooks.routes[0] != "GET /healthz" {
		t.Errorf("routes[0] = %q, want GET /healthz", hooks.routes[0])
	}
	// the matched pattern, not the raw path
	if !strings.HasPrefix(hooks.routes[1], "GET /v1/documents/{name}") {
		t.Errorf("routes[1] = %q, want the {name} pattern", hooks.routes[1])
	}
}

func TestListenAndServe(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(pipeline.NewRunner(nil, nil, nil)).ListenAndServe(ctx, addr)
	}()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + addr + "/healthz")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		cancel()
		t.Fatalf("server never came up: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	http.DefaultClient.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() error: %v", err)
		}
	case <-time.After(2 * shutdownTimeout):
		t.Fatal("ListenAndServe did not return after cancel")
	}
}
