package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDocumentRef(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"report.pdf", "report"},
		{"/tmp/docs/report.pdf", "report"},
		{"notes", "notes"},
		{"archive.v2.pdf", "archive.v2"},
		{"report.PDF", "report.PDF"},
	}
	for _, tc := range cases {
		if got := DocumentRef(tc.filename); got != tc.want {
			t.Errorf("DocumentRef(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}

func TestUploadDocument(t *testing.T) {
	var gotField, gotFilename, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/upload_pdf" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		for field, headers := range r.MultipartForm.File {
			gotField = field
			gotFilename = headers[0].Filename
			f, _ := headers[0].Open()
			data, _ := io.ReadAll(f)
			f.Close()
			gotBody = string(data)
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "PDF uploaded successfully"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	docRef, err := client.UploadDocument(context.Background(), "/tmp/report.pdf", strings.NewReader("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("UploadDocument: %v", err)
	}
	if docRef != "report" {
		t.Errorf("docRef = %q, want %q", docRef, "report")
	}
	if gotField != "file" {
		t.Errorf("multipart field = %q, want %q", gotField, "file")
	}
	if gotFilename != "report.pdf" {
		t.Errorf("multipart filename = %q, want %q", gotFilename, "report.pdf")
	}
	if gotBody != "%PDF-1.4 fake" {
		t.Errorf("uploaded body = %q", gotBody)
	}
}

func TestUploadDocumentServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "No file part in the request"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.UploadDocument(context.Background(), "report.pdf", strings.NewReader("x"))

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *ServiceError, got %T: %v", err, err)
	}
	if svcErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", svcErr.Status)
	}
	if svcErr.Message != "No file part in the request" {
		t.Errorf("message = %q", svcErr.Message)
	}
}

func TestAsk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ask" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Question string `json:"question"`
			PDFName  string `json:"pdf_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Question != "what is this?" {
			t.Errorf("question = %q", req.Question)
		}
		if req.PDFName != "report" {
			t.Errorf("pdf_name = %q", req.PDFName)
		}
		json.NewEncoder(w).Encode(map[string]string{"answer": "It is a test document."})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	answer, err := client.Ask(context.Background(), "report", "what is this?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer != "It is a test document." {
		t.Errorf("answer = %q", answer)
	}
}

func TestAskServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "PDF not found. Please upload it first."})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Ask(context.Background(), "missing", "hello?")

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *ServiceError, got %T: %v", err, err)
	}
	if svcErr.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", svcErr.Status)
	}
}

func TestAskTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	client := NewClient(srv.URL, time.Second)
	_, err := client.Ask(context.Background(), "report", "anyone home?")

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
}

func TestAskInvalidResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>not json</html>")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Ask(context.Background(), "report", "q")

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *ServiceError, got %T: %v", err, err)
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("", 0)
	if client.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", client.baseURL, DefaultBaseURL)
	}

	client = NewClient("http://example.com/", 0)
	if client.baseURL != "http://example.com" {
		t.Errorf("trailing slash not trimmed: %q", client.baseURL)
	}
}
