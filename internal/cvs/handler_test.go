package cvs

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"cvprofile-backend/internal/llmretry"
	"cvprofile-backend/internal/profile"
	"cvprofile-backend/internal/shared/cache"
	"cvprofile-backend/internal/shared/storage/object/local"
)

func testRouter(t *testing.T, client *mockLLM, userID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := NewMemoryRepo()
	store := local.New(t.TempDir())
	svc := NewService(repo, store, client, profile.NewMemorySyncer(), cache.NewMemory(), DirectStrategy{},
		llmretry.Config{MaxAttempts: 3, Delay: func(int) time.Duration { return 0 }}, 0)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func multipartBody(t *testing.T, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestUploadEndpointReturns201EvenWhenAnalysisFails(t *testing.T) {
	client := &mockLLM{responses: []string{"still not json"}}
	router := testRouter(t, client, "user-1")

	body, contentType := multipartBody(t, "cv.pdf", "application/pdf", []byte("%PDF-1.4 fake"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cvs", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.CVID == "" || created.StorageKey == "" {
		t.Fatalf("expected cvId and storageKey, got %+v", created)
	}
	if created.Status != string(StatusFailed) {
		t.Fatalf("expected FAILED status in body, got %s", created.Status)
	}
}

func TestUploadEndpointHonorsConfiguredCeiling(t *testing.T) {
	client := &mockLLM{responses: []string{goodProfileJSON}}
	gin.SetMode(gin.TestMode)
	svc := NewService(NewMemoryRepo(), local.New(t.TempDir()), client, profile.NewMemorySyncer(),
		cache.NewMemory(), DirectStrategy{},
		llmretry.Config{MaxAttempts: 3, Delay: func(int) time.Duration { return 0 }}, 12<<20)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))

	// Over the default 10 MiB ceiling, under the configured 12 MiB one.
	content := bytes.Repeat([]byte("a"), 11<<20)
	body, contentType := multipartBody(t, "cv.txt", "text/plain", content)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cvs", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 under raised ceiling, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUploadEndpointEmptyFileDetails(t *testing.T) {
	router := testRouter(t, &mockLLM{}, "user-1")

	body, contentType := multipartBody(t, "cv.pdf", "application/pdf", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cvs", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != "validation_error" {
		t.Fatalf("unexpected code: %s", payload.Error.Code)
	}
	if payload.Error.Details == nil {
		t.Fatalf("expected size details for empty file")
	}
}

func TestUploadEndpointMissingFile(t *testing.T) {
	router := testRouter(t, &mockLLM{}, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cvs", bytes.NewBufferString("no file"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	client := &mockLLM{responses: []string{goodProfileJSON}}
	router := testRouter(t, client, "user-1")

	body, contentType := multipartBody(t, "cv.pdf", "application/pdf", []byte("%PDF-1.4 fake"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cvs", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("upload failed: %d %s", resp.Code, resp.Body.String())
	}
	var created uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	reqGet := httptest.NewRequest(http.MethodGet, "/api/v1/cvs/"+created.CVID+"/status", nil)
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)
	if respGet.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", respGet.Code)
	}
	var status struct {
		CVID             string `json:"cvId"`
		Status           string `json:"status"`
		ImprovementScore *int   `json:"improvementScore"`
	}
	if err := json.NewDecoder(respGet.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Status != string(StatusCompleted) {
		t.Fatalf("expected COMPLETED, got %s", status.Status)
	}
	if status.ImprovementScore == nil || *status.ImprovementScore != 41 {
		t.Fatalf("unexpected score: %+v", status.ImprovementScore)
	}

	reqMissing := httptest.NewRequest(http.MethodGet, "/api/v1/cvs/unknown/status", nil)
	respMissing := httptest.NewRecorder()
	router.ServeHTTP(respMissing, reqMissing)
	if respMissing.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", respMissing.Code)
	}
}

func TestListEndpointNewestFirst(t *testing.T) {
	client := &mockLLM{responses: []string{goodProfileJSON}}
	router := testRouter(t, client, "user-1")

	for _, name := range []string{"first.pdf", "second.pdf"} {
		body, contentType := multipartBody(t, name, "application/pdf", []byte("%PDF-1.4 "+name))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cvs", body)
		req.Header.Set("Content-Type", contentType)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("upload %s failed: %d", name, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cvs?limit=10", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var items []struct {
		FileName string `json:"fileName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}
