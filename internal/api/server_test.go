package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubEngine struct {
	answer string
	err    error
}

func (s *stubEngine) Answer(ctx context.Context, question string) (string, error) {
	return s.answer, s.err
}

func TestHealth(t *testing.T) {
	srv := NewServer(0, &stubEngine{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestQuery_Success(t *testing.T) {
	srv := NewServer(0, &stubEngine{answer: "Alice moved in June."})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query",
		strings.NewReader(`{"query":"When did Alice move?"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp queryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Answer != "Alice moved in June." {
		t.Errorf("answer = %q", resp.Answer)
	}
	if resp.Query != "When did Alice move?" {
		t.Errorf("query = %q", resp.Query)
	}
}

func TestQuery_EmptyQuery(t *testing.T) {
	srv := NewServer(0, &stubEngine{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(`{"query":"  "}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestQuery_InvalidBody(t *testing.T) {
	srv := NewServer(0, &stubEngine{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestQuery_EngineError(t *testing.T) {
	srv := NewServer(0, &stubEngine{err: errors.New("ollama unreachable")})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(`{"query":"q"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
