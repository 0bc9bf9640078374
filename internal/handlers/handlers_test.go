package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gallery-admin/internal/catalog"
	"gallery-admin/internal/media"
	"gallery-admin/internal/startup"

	"github.com/gorilla/mux"
)

type mockPipeline struct {
	runResult  catalog.RunResult
	runErr     error
	runModes   []catalog.Mode
	fileResult catalog.FileResult
	processed  []string
	saved      []byte
	saveErr    error
	catalog    []byte
	readErr    error
}

func (m *mockPipeline) Run(_ context.Context, mode catalog.Mode) (catalog.RunResult, error) {
	m.runModes = append(m.runModes, mode)
	return m.runResult, m.runErr
}

func (m *mockPipeline) ProcessFile(path string) catalog.FileResult {
	m.processed = append(m.processed, path)
	return m.fileResult
}

func (m *mockPipeline) SaveDocument(data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = data
	return nil
}

func (m *mockPipeline) ReadCatalog() ([]byte, error) {
	return m.catalog, m.readErr
}

func newTestHandlers(t *testing.T, p Pipeline) (*Handlers, *mux.Router, string) {
	t.Helper()
	root := t.TempDir()
	h := New(p, &startup.Config{
		Root:           root,
		DataDir:        filepath.Join(root, "data"),
		MaxUploadBytes: 1 << 20,
	})

	r := mux.NewRouter()
	r.HandleFunc("/health", h.HealthCheck).Methods("GET", "HEAD")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")
	r.HandleFunc("/copy-image", h.CopyImage).Methods("POST")
	r.HandleFunc("/save-json", h.SaveJSON).Methods("POST")
	r.HandleFunc("/extract-exif", h.ExtractExif).Methods("POST")
	r.HandleFunc("/generate-thumbnails", h.GenerateThumbnails).Methods("POST")
	r.HandleFunc("/api/catalog", h.GetCatalog).Methods("GET")
	r.PathPrefix("/").Handler(StaticFiles(root))
	return h, r, root
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, w.Body.String())
	}
	return body
}

func TestHealthCheck(t *testing.T) {
	_, r, _ := newTestHandlers(t, &mockPipeline{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/livez", nil))
	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Errorf("HEAD /livez = %d with %d body bytes", w.Code, w.Body.Len())
	}
}

func TestGetVersion(t *testing.T) {
	_, r, _ := newTestHandlers(t, &mockPipeline{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/version", nil))

	var info startup.BuildInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info.Version != startup.Version || info.GoVersion == "" {
		t.Errorf("unexpected build info: %+v", info)
	}
}

func TestExtractExif(t *testing.T) {
	p := &mockPipeline{runResult: catalog.RunResult{Processed: 4, Updated: 3, MetadataUpdated: 3, Skipped: 1}}
	_, r, _ := newTestHandlers(t, p)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/extract-exif", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["success"] != true || body["processedCount"] != float64(4) || body["updatedCount"] != float64(3) {
		t.Errorf("unexpected body: %v", body)
	}
	if _, ok := body["generatedCount"]; ok {
		t.Error("generatedCount should be absent")
	}
	if len(p.runModes) != 1 || p.runModes[0] != catalog.ModeMetadata {
		t.Errorf("modes = %v", p.runModes)
	}
}

func TestGenerateThumbnails(t *testing.T) {
	p := &mockPipeline{runResult: catalog.RunResult{Processed: 2, Updated: 2, ThumbnailsGenerated: 2}}
	_, r, _ := newTestHandlers(t, p)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate-thumbnails", nil))

	body := decodeBody(t, w)
	if body["success"] != true || body["generatedCount"] != float64(2) {
		t.Errorf("unexpected body: %v", body)
	}
	if _, ok := body["updatedCount"]; ok {
		t.Error("updatedCount should be absent")
	}
	if p.runModes[0] != catalog.ModeThumbnails {
		t.Errorf("mode = %v", p.runModes[0])
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"missing", fmt.Errorf("%w: photos.json", catalog.ErrCatalogMissing), http.StatusNotFound},
		{"empty", catalog.ErrCatalogEmpty, http.StatusUnprocessableEntity},
		{"invalid", catalog.ErrInvalidCatalog, http.StatusUnprocessableEntity},
		{"canceled", context.Canceled, http.StatusServiceUnavailable},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, r, _ := newTestHandlers(t, &mockPipeline{runErr: tt.err})

			for _, path := range []string{"/extract-exif", "/generate-thumbnails"} {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
				if w.Code != tt.status {
					t.Errorf("%s status = %d, want %d", path, w.Code, tt.status)
				}
				body := decodeBody(t, w)
				if body["success"] != false || body["error"] == "" || body["message"] == "" {
					t.Errorf("%s body = %v", path, body)
				}
			}
		})
	}
}

func TestSaveJSON(t *testing.T) {
	p := &mockPipeline{}
	_, r, _ := newTestHandlers(t, p)

	doc := `{"photos":[{"src":"data/a.jpg"}]}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/save-json", strings.NewReader(doc)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["success"] != true || body["message"] != "JSON文件已保存" {
		t.Errorf("unexpected body: %v", body)
	}
	if string(p.saved) != doc {
		t.Errorf("saved = %s", p.saved)
	}
}

func TestSaveJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		saveErr error
		body    string
		status  int
	}{
		{"invalid document", catalog.ErrInvalidCatalog, `[]`, http.StatusBadRequest},
		{"write failure", errors.New("read-only file system"), `{"photos":[]}`, http.StatusInternalServerError},
		{"too large", nil, `{"photos":"` + strings.Repeat("x", 2<<20) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, r, _ := newTestHandlers(t, &mockPipeline{saveErr: tt.saveErr})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/save-json", strings.NewReader(tt.body)))
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if decodeBody(t, w)["success"] != false {
				t.Error("success should be false")
			}
		})
	}
}

func TestGetCatalog(t *testing.T) {
	doc := []byte("{\n  \"photos\": []\n}\n")
	_, r, _ := newTestHandlers(t, &mockPipeline{catalog: doc})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	if w.Code != http.StatusOK || !bytes.Equal(w.Body.Bytes(), doc) {
		t.Errorf("GET /api/catalog = %d %q", w.Code, w.Body.String())
	}

	_, r, _ = newTestHandlers(t, &mockPipeline{readErr: catalog.ErrCatalogMissing})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("missing catalog status = %d", w.Code)
	}
}

func multipartUpload(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatal(err)
		}
	} else if err := mw.WriteField("note", "nothing here"); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/copy-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCopyImage(t *testing.T) {
	p := &mockPipeline{fileResult: catalog.FileResult{
		Exif:          media.Metadata{media.LabelMake: "Fujifilm"},
		ThumbnailPath: "thumbnails/x.jpg",
	}}
	_, r, root := newTestHandlers(t, p)

	content := []byte("\xff\xd8\xff fake jpeg bytes")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartUpload(t, "image", "holiday.jpg", content))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	filePath, _ := body["filePath"].(string)
	if !strings.HasPrefix(filePath, "data/") || !strings.HasSuffix(filePath, "_holiday.jpg") {
		t.Errorf("filePath = %q", filePath)
	}
	if body["thumbnailPath"] != "thumbnails/x.jpg" {
		t.Errorf("thumbnailPath = %v", body["thumbnailPath"])
	}
	exif, _ := body["exif"].(map[string]interface{})
	if exif[media.LabelMake] != "Fujifilm" {
		t.Errorf("exif = %v", body["exif"])
	}

	saved, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(filePath)))
	if err != nil {
		t.Fatalf("upload not stored: %v", err)
	}
	if !bytes.Equal(saved, content) {
		t.Error("stored upload differs from the posted bytes")
	}
	if len(p.processed) != 1 || p.processed[0] != filepath.Join(root, filepath.FromSlash(filePath)) {
		t.Errorf("ProcessFile calls = %v", p.processed)
	}
}

func TestCopyImageNullFields(t *testing.T) {
	_, r, _ := newTestHandlers(t, &mockPipeline{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartUpload(t, "image", `C:\Users\me\Pictures\scan.png`, []byte("png")))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if v, ok := body["thumbnailPath"]; !ok || v != nil {
		t.Errorf("thumbnailPath should be null, got %v", v)
	}
	if v, ok := body["exif"]; !ok || v != nil {
		t.Errorf("exif should be null, got %v", v)
	}
	if !strings.HasSuffix(body["filePath"].(string), "_scan.png") {
		t.Errorf("filePath = %v", body["filePath"])
	}
}

func TestCopyImageRejected(t *testing.T) {
	tests := []struct {
		name   string
		req    func(t *testing.T) *http.Request
		status int
		errMsg string
	}{
		{
			name:   "no image field",
			req:    func(t *testing.T) *http.Request { return multipartUpload(t, "", "", nil) },
			status: http.StatusBadRequest,
			errMsg: "没有找到图片文件",
		},
		{
			name:   "wrong field name",
			req:    func(t *testing.T) *http.Request { return multipartUpload(t, "file", "a.jpg", []byte("x")) },
			status: http.StatusBadRequest,
			errMsg: "没有找到图片文件",
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/copy-image", strings.NewReader("{}"))
			},
			status: http.StatusBadRequest,
			errMsg: "没有找到图片文件",
		},
		{
			name:   "unsupported extension",
			req:    func(t *testing.T) *http.Request { return multipartUpload(t, "image", "notes.txt", []byte("x")) },
			status: http.StatusBadRequest,
			errMsg: "不支持的图片格式",
		},
		{
			name:   "dot file",
			req:    func(t *testing.T) *http.Request { return multipartUpload(t, "image", ".hidden.jpg", []byte("x")) },
			status: http.StatusBadRequest,
			errMsg: "没有找到图片文件",
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				return multipartUpload(t, "image", "big.jpg", bytes.Repeat([]byte("x"), 2<<20))
			},
			status: http.StatusRequestEntityTooLarge,
			errMsg: "图片文件过大",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mockPipeline{}
			_, r, root := newTestHandlers(t, p)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, tt.req(t))

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
			body := decodeBody(t, w)
			if body["success"] != false || body["error"] != tt.errMsg {
				t.Errorf("body = %v", body)
			}
			if len(p.processed) != 0 {
				t.Error("rejected upload should not be processed")
			}
			entries, _ := os.ReadDir(filepath.Join(root, "data"))
			if len(entries) != 0 {
				t.Errorf("rejected upload left %d files", len(entries))
			}
		})
	}
}

func TestUploadName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a.jpg", "a.jpg"},
		{"dir/b.png", "b.png"},
		{`C:\x\c.webp`, "c.webp"},
		{"../../etc/passwd.jpg", "passwd.jpg"},
		{"", ""},
		{"..", ""},
		{".env.jpg", ""},
	}
	for _, tt := range tests {
		if got := uploadName(tt.in); got != tt.want {
			t.Errorf("uploadName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStaticFiles(t *testing.T) {
	_, r, root := newTestHandlers(t, &mockPipeline{})

	write := func(rel, content string) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("index.html", "<h1>gallery</h1>")
	write("thumbnails/a.jpg", "thumb")
	write(".env", "SECRET=1")
	write("data/b.jpg", "img")

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/", http.StatusOK, "<h1>gallery</h1>"},
		{"/thumbnails/a.jpg", http.StatusOK, "thumb"},
		{"/.env", http.StatusNotFound, ""},
		{"/data/", http.StatusNotFound, ""},
		{"/missing.html", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != tt.status {
			t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.status)
		}
		if tt.body != "" && w.Body.String() != tt.body {
			t.Errorf("GET %s body = %q", tt.path, w.Body.String())
		}
	}
}
