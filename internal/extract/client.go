package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"backend/internal/logger"
)

var (
	ErrNotConfigured = errors.New("extraction service is not configured")
	// ErrUpstream wraps failures reported by or while reaching the extraction
	// service; the message is surfaced to the user verbatim.
	ErrUpstream = errors.New("extraction failed")
)

// Client talks to the external extraction service that turns an uploaded
// document into the three-collection envelope.
type Client struct {
	baseURL    string
	httpClient *http.Client
	validate   *validator.Validate
	log        zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
		validate:   validator.New(),
		log:        logger.WithComponent("extract-client"),
	}
}

func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// Extract uploads the file and decodes the extraction envelope. A response
// with success=false is returned as an ErrUpstream carrying the service's own
// message; no retry is attempted here, re-upload is the user's call.
func (c *Client) Extract(ctx context.Context, filename string, file io.Reader) (Envelope, error) {
	if !c.Configured() {
		return Envelope{}, ErrNotConfigured
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return Envelope{}, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return Envelope{}, fmt.Errorf("read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Envelope{}, fmt.Errorf("build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", body)
	if err != nil {
		return Envelope{}, fmt.Errorf("build extraction request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Warn().Int("status", resp.StatusCode).Str("file", filename).Msg("extraction service rejected upload")
		return Envelope{}, fmt.Errorf("%w: %s", ErrUpstream, upstreamMessage(payload, resp.StatusCode))
	}

	var envelope Envelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return Envelope{}, fmt.Errorf("%w: unreadable response", ErrUpstream)
	}
	if !envelope.Success {
		message := envelope.Message
		if message == "" {
			message = "extraction service reported failure"
		}
		return Envelope{}, fmt.Errorf("%w: %s", ErrUpstream, message)
	}
	if err := c.validate.Struct(envelope); err != nil {
		return Envelope{}, fmt.Errorf("%w: malformed payload: %v", ErrUpstream, err)
	}

	c.log.Info().
		Str("file", filename).
		Int("invoices", len(envelope.Invoices)).
		Int("products", len(envelope.Products)).
		Int("customers", len(envelope.Customers)).
		Dur("elapsed", time.Since(started)).
		Msg("extraction completed")
	return envelope, nil
}

func upstreamMessage(payload []byte, status int) string {
	var detail struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(payload, &detail); err == nil {
		for _, candidate := range []string{detail.Detail, detail.Message, detail.Error} {
			if strings.TrimSpace(candidate) != "" {
				return candidate
			}
		}
	}
	return fmt.Sprintf("extraction service returned status %d", status)
}
