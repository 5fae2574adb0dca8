// Package service is the HTTP binding to the remote document
// question-answering API: one endpoint to upload a document and one to ask a
// question against it. Requests are single-shot; there is no retry and no
// transport-level cancellation beyond the supplied context.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBaseURL matches the service's development listen address.
const DefaultBaseURL = "http://127.0.0.1:5000"

// TransportError reports that the service could not be reached at all:
// connection refused, DNS failure, timeout.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError reports that the service responded, but with a failure status
// or a body that could not be interpreted.
type ServiceError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.Status)
}

// Client talks to the question-answering service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the service at baseURL. Empty baseURL falls
// back to the development default; a zero timeout means no client-side limit.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// DocumentRef derives the reference that scopes questions to a document. The
// service keys uploaded documents by the client-side filename with the ".pdf"
// suffix stripped; it never issues an identifier of its own. Two uploads with
// the same base filename therefore collide — preserved for compatibility with
// the deployed service.
func DocumentRef(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), ".pdf")
}

type uploadResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// UploadDocument posts the document bytes as a multipart form and returns the
// document reference derived from filename.
func (c *Client) UploadDocument(ctx context.Context, filename string, r io.Reader) (string, error) {
	const op = "upload document"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload_pdf", &body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	var decoded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && resp.StatusCode < 300 {
		return "", &ServiceError{Op: op, Status: resp.StatusCode, Message: "invalid response body"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ServiceError{Op: op, Status: resp.StatusCode, Message: decoded.Error}
	}

	return DocumentRef(filename), nil
}

type askRequest struct {
	Question string `json:"question"`
	PDFName  string `json:"pdf_name"`
}

type askResponse struct {
	Answer string `json:"answer"`
	Error  string `json:"error"`
}

// Ask submits a question scoped to documentRef and returns the answer text.
func (c *Client) Ask(ctx context.Context, documentRef, question string) (string, error) {
	const op = "ask question"

	payload, err := json.Marshal(askRequest{Question: question, PDFName: documentRef})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	var decoded askResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && resp.StatusCode < 300 {
		return "", &ServiceError{Op: op, Status: resp.StatusCode, Message: "invalid response body"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ServiceError{Op: op, Status: resp.StatusCode, Message: decoded.Error}
	}

	return decoded.Answer, nil
}
