package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config holds object storage connection configuration.
type Config struct {
	Endpoint   string // upload endpoint, e.g. https://storage.example.com
	PublicBase string // base for download URLs; falls back to Endpoint
	Bucket     string
	AuthToken  string
	Timeout    time.Duration
}

// Client uploads artifacts to an HTTP object store and builds their
// download URLs.
type Client struct {
	endpoint   string
	publicBase string
	bucket     string
	authToken  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an object storage client.
func NewClient(config *Config, logger *slog.Logger) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("object storage endpoint is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("object storage bucket is required")
	}

	publicBase := config.PublicBase
	if publicBase == "" {
		publicBase = config.Endpoint
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		endpoint:   strings.TrimRight(config.Endpoint, "/"),
		publicBase: strings.TrimRight(publicBase, "/"),
		bucket:     config.Bucket,
		authToken:  config.AuthToken,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Put uploads data under key and returns the object's download URL.
func (c *Client) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	uploadURL := fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.authToken != "" {
		req.Header.Set("Authorization", c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to upload object",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("Object storage rejected upload",
			slog.String("key", key),
			slog.Int("status", resp.StatusCode),
		)
		return "", fmt.Errorf("object storage returned status %d for %s: %s", resp.StatusCode, key, string(body))
	}

	c.logger.Debug("Object uploaded",
		slog.String("key", key),
		slog.Int("size", len(data)),
	)

	return c.URL(key), nil
}

// URL returns the public download URL for a stored key.
func (c *Client) URL(key string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicBase, c.bucket, key)
}

// ObjectKey builds the storage key for an artifact: a date folder plus the
// original name tagged with the language and a fresh UUID, so repeated
// uploads of the same document never collide.
func ObjectKey(filename, language string) string {
	base := path.Base(filename)
	ext := path.Ext(base)
	name := strings.TrimSuffix(base, ext)

	dateFolder := time.Now().UTC().Format("2006-01-02")
	return fmt.Sprintf("%s/%s_%s_%s%s", dateFolder, name, language, uuid.New().String(), ext)
}
