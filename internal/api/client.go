package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/pixel-pictures-mcp/internal/pixel"
)

const maxResponseBytes = 32 << 20

// Options configures a Client.
type Options struct {
	// BaseURL is the service root, e.g. "http://localhost:8000".
	BaseURL string

	// CSRFToken is sent as the X-CSRFToken header and csrftoken cookie.
	CSRFToken string

	// SessionID is sent as the sessionid cookie for authenticated calls.
	SessionID string

	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration

	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client

	// Logger receives request-level debug logs. Defaults to the logrus
	// standard logger.
	Logger logrus.FieldLogger
}

// Client talks to the picture service endpoints.
//
// A Client is safe for concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	csrfToken string
	sessionID string
	log       logrus.FieldLogger
}

// New creates a client for the service at opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", opts.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Client{
		base:      base,
		http:      hc,
		csrfToken: opts.CSRFToken,
		sessionID: opts.SessionID,
		log:       logger,
	}, nil
}

// CreatePicture stores a new picture (POST /save).
func (c *Client) CreatePicture(ctx context.Context, req SaveRequest) (*SaveResponse, error) {
	req.Key = ""
	var resp SaveResponse
	if err := c.doJSON(ctx, http.MethodPost, "/save", normalizeSave(req), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdatePicture overwrites an existing picture (PUT /save).
func (c *Client) UpdatePicture(ctx context.Context, req SaveRequest) (*SaveResponse, error) {
	if req.Key == "" {
		return nil, errors.New("update requires a picture key")
	}
	var resp SaveResponse
	if err := c.doJSON(ctx, http.MethodPut, "/save", normalizeSave(req), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Sample uploads a source picture and returns it resampled to
// req.Height × req.Width (POST /sample).
func (c *Client) Sample(ctx context.Context, req SampleRequest) (*pixel.Grid, error) {
	if req.Source == nil {
		return nil, errors.New("sample requires a source image")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("img", req.Source.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(req.Source.Data); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := mw.WriteField("height", strconv.Itoa(req.Height)); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := mw.WriteField("width", strconv.Itoa(req.Width)); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	var resp sampleResponse
	if err := c.do(ctx, http.MethodPost, "/sample", mw.FormDataContentType(), &body, &resp); err != nil {
		return nil, err
	}
	if resp.SampleImage == nil {
		return nil, fmt.Errorf("%w: sample response has no image", pixel.ErrShape)
	}
	return resp.SampleImage, nil
}

// Convert quantizes sample to palette (POST /image_to_pixels).
func (c *Client) Convert(ctx context.Context, sample *pixel.Grid, palette []pixel.Color) (*pixel.Grid, error) {
	var resp convertResponse
	req := convertRequest{Image: sample, Palette: nonNilColors(palette)}
	if err := c.doJSON(ctx, http.MethodPost, "/image_to_pixels", req, &resp); err != nil {
		return nil, err
	}
	if resp.PixelsImage == nil {
		return nil, fmt.Errorf("%w: convert response has no image", pixel.ErrShape)
	}
	return resp.PixelsImage, nil
}

// Delete removes a saved picture (POST /delete) and returns the service's
// message, an HTML fragment.
func (c *Client) Delete(ctx context.Context, key Key) (string, error) {
	var resp messageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/delete", deleteRequest{Key: key}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Download asks for an export render and returns its source, usually a
// data URI (POST /download).
func (c *Client) Download(ctx context.Context, req DownloadRequest) (string, error) {
	var resp downloadResponse
	if err := c.doJSON(ctx, http.MethodPost, "/download", req, &resp); err != nil {
		return "", err
	}
	return resp.Source, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", method, path, err)
	}
	return c.do(ctx, method, path, "application/json", bytes.NewReader(payload), out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	target := *c.base
	target.Path = strings.TrimSuffix(c.base.Path, "/") + path

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("failed to build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", c.base.String())
	if c.csrfToken != "" {
		req.Header.Set("X-CSRFToken", c.csrfToken)
		req.AddCookie(&http.Cookie{Name: "csrftoken", Value: c.csrfToken})
	}
	if c.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "sessionid", Value: c.sessionID})
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: reading %s %s: %v", ErrNetwork, method, path, err)
	}

	c.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("service request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponse
		_ = json.Unmarshal(data, &e)
		msg := e.Error
		if msg == "" {
			msg = e.Message
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// DecodeDataURI decodes an export source of the form
// "data:image/png;base64,<payload>".
func DecodeDataURI(source string) (image.Image, error) {
	rest, ok := strings.CutPrefix(source, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URI: %.32q", source)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("data URI is not base64 encoded")
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid data URI payload: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode exported image: %w", err)
	}
	return img, nil
}

func normalizeSave(req SaveRequest) SaveRequest {
	if req.Tags == nil {
		req.Tags = []string{}
	}
	req.Palette = nonNilColors(req.Palette)
	return req
}

func nonNilColors(colors []pixel.Color) []pixel.Color {
	if colors == nil {
		return []pixel.Color{}
	}
	return colors
}
