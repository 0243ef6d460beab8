package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/spendware/walletd/internal/errs"
)

// Cloudinary uploads through Cloudinary's unsigned-preset endpoint.
type Cloudinary struct {
	client  *http.Client
	baseURL string
	cloud   string
	preset  string
}

// CloudinaryOption customizes the client.
type CloudinaryOption func(*Cloudinary)

// WithBaseURL overrides the API host. Tests point this at a local server.
func WithBaseURL(u string) CloudinaryOption {
	return func(c *Cloudinary) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) CloudinaryOption {
	return func(c *Cloudinary) { c.client = h }
}

// NewCloudinary builds an uploader for the given cloud name and unsigned
// upload preset.
func NewCloudinary(cloud, preset string, opts ...CloudinaryOption) *Cloudinary {
	c := &Cloudinary{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://api.cloudinary.com",
		cloud:   cloud,
		preset:  preset,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload posts the image as multipart form data and returns the secure URL.
// Any transport or API failure surfaces as ErrUploadFailed.
func (c *Cloudinary) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", errs.ErrInvalid
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "upload"+extFor(contentType))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUploadFailed, err)
	}
	if _, err := fw.Write(data); err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUploadFailed, err)
	}
	if err := mw.WriteField("upload_preset", c.preset); err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUploadFailed, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUploadFailed, err)
	}

	url := fmt.Sprintf("%s/v1_1/%s/image/upload", c.baseURL, c.cloud)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUploadFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUploadFailed, err)
	}

	var out struct {
		SecureURL string `json:"secure_url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: bad response", errs.ErrUploadFailed)
	}
	if resp.StatusCode != http.StatusOK || out.SecureURL == "" {
		msg := out.Error.Message
		if msg == "" {
			msg = resp.Status
		}
		return "", fmt.Errorf("%w: %s", errs.ErrUploadFailed, msg)
	}
	return out.SecureURL, nil
}

func extFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
