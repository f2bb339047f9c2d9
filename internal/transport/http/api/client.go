// Package api is the REST client for the chat endpoints of the storefront
// API. Every method is a single request; the Client keeps no chat state.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/observability"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/transport/http/middleware"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/pkg/validator"
)

type Config struct {
	BaseURL string
	Tokens  middleware.TokenSource
	Timeout time.Duration
	// ImageMaxBytes caps uploads; zero disables the check.
	ImageMaxBytes int64

	// Transport is the innermost round tripper, http.DefaultTransport when nil.
	Transport http.RoundTripper
	Logger    *zap.Logger
	Metrics   *observability.Metrics
}

type Client struct {
	baseURL       string
	http          *http.Client
	imageMaxBytes int64
	logger        *zap.Logger
	metrics       *observability.Metrics

	me singleflight.Group
}

func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: middleware.Chain(cfg.Transport, middleware.RequestID(), middleware.Auth(cfg.Tokens)),
		},
		imageMaxBytes: cfg.ImageMaxBytes,
		logger:        logger.Named("api"),
		metrics:       cfg.Metrics,
	}
}

func (c *Client) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	var out []domain.Conversation
	if err := c.do(ctx, "list_conversations", http.MethodGet, "/chat/conversations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Conversation(ctx context.Context, id domain.ID) (*domain.Conversation, error) {
	var out domain.Conversation
	if err := c.do(ctx, "get_conversation", http.MethodGet, conversationPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateConversation finds or creates the 1:1 conversation with otherUserID.
func (c *Client) CreateConversation(ctx context.Context, otherUserID domain.ID) (*domain.Conversation, error) {
	body := map[string]domain.ID{"otherUserId": otherUserID}
	var out domain.Conversation
	if err := c.do(ctx, "create_conversation", http.MethodPost, "/chat/conversations", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Messages fetches one page of history. A nil cursor asks for the newest
// page; otherwise the page holds messages older than *cursor.
func (c *Client) Messages(ctx context.Context, conversationID domain.ID, limit int, cursor *int64) (*domain.MessagePage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != nil {
		q.Set("cursorId", strconv.FormatInt(*cursor, 10))
	}
	p := "/chat/messages/" + url.PathEscape(conversationID.String())
	if len(q) > 0 {
		p += "?" + q.Encode()
	}

	var out domain.MessagePage
	if err := c.do(ctx, "list_messages", http.MethodGet, p, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MarkRead(ctx context.Context, conversationID domain.ID) error {
	return c.do(ctx, "mark_read", http.MethodPatch, conversationPath(conversationID, "read"), nil, nil)
}

func (c *Client) UpdateTheme(ctx context.Context, conversationID domain.ID, theme string) error {
	body := map[string]string{"theme": theme}
	return c.do(ctx, "update_theme", http.MethodPatch, conversationPath(conversationID, "theme"), body, nil)
}

func (c *Client) DeleteConversation(ctx context.Context, conversationID domain.ID) error {
	return c.do(ctx, "delete_conversation", http.MethodDelete, conversationPath(conversationID), nil, nil)
}

// UploadImage posts img as multipart form data and returns the durable URL
// the server stored it under.
func (c *Client) UploadImage(ctx context.Context, conversationID domain.ID, img domain.Image) (string, error) {
	var data bytes.Buffer
	limit := c.imageMaxBytes
	src := img.Data
	if limit > 0 {
		src = io.LimitReader(src, limit+1)
	}
	size, err := io.Copy(&data, src)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if err := validator.ValidateImage(img.ContentType, size, limit).Err(); err != nil {
		return "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("conversationId", conversationID.String()); err != nil {
		return "", err
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, imageName(img)))
	header.Set("Content-Type", img.ContentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data.Bytes()); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := c.send(ctx, "upload_image", http.MethodPost, "/chat/upload-image", &body, mw.FormDataContentType(), &out); err != nil {
		return "", err
	}
	if out.ImageURL == "" {
		return "", errors.New("upload image: server returned no imageUrl")
	}
	return out.ImageURL, nil
}

// Me resolves the signed-in user. Concurrent callers share one request.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	v, err, _ := c.me.Do("me", func() (any, error) {
		// The server answers either with the user or with {"user": ...}.
		var out struct {
			domain.User
			Wrapped *domain.User `json:"user"`
		}
		if err := c.do(ctx, "me", http.MethodGet, "/auth/me", nil, &out); err != nil {
			return nil, err
		}
		if out.Wrapped != nil {
			return out.Wrapped, nil
		}
		u := out.User
		return &u, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.User), nil
}

func conversationPath(id domain.ID, rest ...string) string {
	return path.Join(append([]string{"/chat/conversations", url.PathEscape(id.String())}, rest...)...)
}

func imageName(img domain.Image) string {
	if img.Name != "" {
		return img.Name
	}
	ext := strings.TrimPrefix(img.ContentType, "image/")
	if ext == "" || ext == img.ContentType {
		ext = "bin"
	}
	return "image." + ext
}

// do sends an optional JSON body and decodes the JSON answer into out.
func (c *Client) do(ctx context.Context, op, method, p string, in, out any) error {
	var (
		body        io.Reader
		contentType string
	)
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.send(ctx, op, method, p, body, contentType, out)
}

func (c *Client) send(ctx context.Context, op, method, p string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+p, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.Request(op, 0)
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	c.metrics.Request(op, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp, resp.Request.Header.Get(middleware.RequestIDHeader))
		c.logger.Debug("request failed",
			zap.String("op", op),
			zap.Int("status", apiErr.Status),
			zap.String("request_id", apiErr.RequestID),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
