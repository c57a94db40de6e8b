package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chorus/internal/api"
	"chorus/internal/testsupport"
)

type nopLauncher struct{}

func (nopLauncher) Launch(int64) {}

func newTestAPIServer(t *testing.T) (*apiServer, *api.JobService) {
	t.Helper()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	svc := api.NewJobService(store, nopLauncher{})
	return &apiServer{jobSvc: svc}, svc
}

func TestHandleSubmitAccepted(t *testing.T) {
	srv, _ := newTestAPIServer(t)

	body := strings.NewReader(`{"sourceUrl":"https://example.com/watch?v=abc","artist":"Daft Punk"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", body)
	w := httptest.NewRecorder()
	srv.handleJobs(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	var resp api.JobResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Job.ID == 0 || resp.Job.Status != "pending" {
		t.Fatalf("unexpected job: %+v", resp.Job)
	}
}

func TestHandleSubmitRejectsBadPayloads(t *testing.T) {
	srv, _ := newTestAPIServer(t)

	for _, body := range []string{`{not json`, `{"sourceUrl":""}`, `{"sourceUrl":"nope"}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(body))
		w := httptest.NewRecorder()
		srv.handleJobs(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, w.Code)
		}
	}
}

func TestHandleDescribeAndNotFound(t *testing.T) {
	srv, svc := newTestAPIServer(t)

	job, err := svc.Submit(httptest.NewRequest(http.MethodGet, "/", nil).Context(), api.SubmitRequest{
		SourceURL: "https://example.com/v",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/1", nil)
	w := httptest.NewRecorder()
	srv.handleJob(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp api.JobResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Job.ID != job.ID {
		t.Fatalf("unexpected job: %+v", resp.Job)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/jobs/999", nil)
	w = httptest.NewRecorder()
	srv.handleJob(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/jobs/abc", nil)
	w = httptest.NewRecorder()
	srv.handleJob(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}
}

func TestHandleDownloadPendingJobConflicts(t *testing.T) {
	srv, svc := newTestAPIServer(t)

	job, err := svc.Submit(httptest.NewRequest(http.MethodGet, "/", nil).Context(), api.SubmitRequest{
		SourceURL: "https://example.com/v",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/1/download", nil)
	w := httptest.NewRecorder()
	srv.handleJob(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for incomplete job %d, got %d", job.ID, w.Code)
	}
}

func TestHandleListPagination(t *testing.T) {
	srv, svc := newTestAPIServer(t)

	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	for i := 0; i < 3; i++ {
		if _, err := svc.Submit(ctx, api.SubmitRequest{SourceURL: "https://example.com/v"}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/jobs?page=1&pageSize=2", nil)
	w := httptest.NewRecorder()
	srv.handleJobs(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp api.JobListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 3 || len(resp.Jobs) != 2 || resp.TotalPages != 2 {
		t.Fatalf("unexpected page: %+v", resp)
	}
}

func TestAuthMiddleware(t *testing.T) {
	passed := false
	handler := authMiddleware("secret", func(w http.ResponseWriter, r *http.Request) {
		passed = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusUnauthorized || passed {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusOK || !passed {
		t.Fatalf("expected pass-through with valid token, got %d", w.Code)
	}
}
