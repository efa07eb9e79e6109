// Package grobid is a client for the GROBID document-structure service.
package grobid

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"paper-translator/internal/logger"
	"paper-translator/internal/types"
)

// DefaultTimeout is the default request timeout; full-text processing of a
// long paper can take minutes.
const DefaultTimeout = 180 * time.Second

// maxErrorBody bounds how much of an error response is kept in the message.
const maxErrorBody = 512

// Config holds configuration options for creating a Client
type Config struct {
	// URL is the processFulltextDocument endpoint.
	URL         string
	Timeout     time.Duration
	Consolidate bool
	HTTPClient  *http.Client
}

// Client sends PDFs to GROBID and returns TEI markup.
type Client struct {
	url         string
	consolidate bool
	client      *http.Client
}

// NewClient creates a new Client with the given configuration
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		url:         cfg.URL,
		consolidate: cfg.Consolidate,
		client:      httpClient,
	}
}

// ProcessFulltext uploads one PDF and returns the TEI markup. Any failure,
// including a payload that is not well-formed XML, is an EXTRACTION_ERROR.
// No retry is attempted.
func (c *Client) ProcessFulltext(ctx context.Context, filename string, pdf io.Reader) ([]byte, error) {
	body, contentType, err := c.buildForm(filename, pdf)
	if err != nil {
		return nil, types.NewAppError(types.ErrExtraction, "failed to build upload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, types.NewAppError(types.ErrExtraction, "failed to create request", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/xml")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrExtraction, "structure service request failed", filename, err)
	}
	defer resp.Body.Close()

	logger.Debug("structure service response",
		logger.String("file", filename),
		logger.Int("statusCode", resp.StatusCode),
		logger.Duration("elapsed", time.Since(start)))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewAppError(types.ErrExtraction, "failed to read structure service response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewAppErrorWithDetails(types.ErrExtraction, "structure service returned an error",
			fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(data)), nil)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, types.NewAppError(types.ErrExtraction, "structure service returned an empty body", nil)
	}
	if err := wellFormed(data); err != nil {
		return nil, types.NewAppError(types.ErrExtraction, "structure service returned malformed XML", err)
	}

	return data, nil
}

// IsAlive probes the service's isalive endpoint.
func (c *Client) IsAlive(ctx context.Context) bool {
	probe, err := aliveURL(c.url)
	if err != nil {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probe, nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

func (c *Client) buildForm(filename string, pdf io.Reader) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("input", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, pdf); err != nil {
		return nil, "", err
	}
	if c.consolidate {
		w.WriteField("consolidateHeader", "1")
		w.WriteField("consolidateCitations", "1")
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// wellFormed checks that data is one complete XML document.
func wellFormed(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	sawRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if _, ok := tok.(xml.StartElement); ok {
			sawRoot = true
		}
	}
	if !sawRoot {
		return errors.New("no root element")
	}
	return nil
}

// aliveURL maps http://host/api/processFulltextDocument to http://host/api/isalive.
func aliveURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	path := u.Path
	if i := strings.LastIndex(path, "/api/"); i >= 0 {
		path = path[:i]
	} else {
		path = strings.TrimSuffix(path, "/")
	}
	u.Path = path + "/api/isalive"
	u.RawQuery = ""
	return u.String(), nil
}

func truncate(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
