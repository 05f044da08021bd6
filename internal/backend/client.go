package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultAPIURL is where the API server listens when nothing is configured.
const DefaultAPIURL = "http://127.0.0.1:9000"

// Client talks to the Simple Mercari API server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client. A zero timeout means no client-side limit.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// ImageURL returns the URL the server serves an item image at.
func (c *Client) ImageURL(imageName string) string {
	if imageName == "" {
		return ""
	}
	return c.baseURL + "/images/" + url.PathEscape(imageName)
}

// Hello calls `GET /` and returns the greeting. Used as a health probe.
func (c *Client) Hello(ctx context.Context) (string, error) {
	var resp helloResponse
	if err := c.getJSON(ctx, "/", &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ListItems calls `GET /items`.
func (c *Client) ListItems(ctx context.Context) ([]Item, error) {
	var resp itemsResponse
	if err := c.getJSON(ctx, "/items", &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// GetItem calls `GET /items/{id}`.
func (c *Client) GetItem(ctx context.Context, id int) (ItemDetail, error) {
	var resp ItemDetail
	if err := c.getJSON(ctx, "/items/"+strconv.Itoa(id), &resp); err != nil {
		return ItemDetail{}, err
	}
	return resp, nil
}

// SearchItems calls `GET /search?keyword=`. The server does not return IDs, so
// every returned Item has ID 0.
func (c *Client) SearchItems(ctx context.Context, keyword string) ([]Item, error) {
	var resp searchResponse
	if err := c.getJSON(ctx, "/search?keyword="+url.QueryEscape(keyword), &resp); err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(resp.Items))
	for _, d := range resp.Items {
		items = append(items, Item{Name: d.Name, Category: d.Category, ImageName: d.ImageName})
	}
	return items, nil
}

// AddItem calls `POST /items` and returns the full item list the server
// answers with. The image, when set, is sent as a multipart file.
func (c *Client) AddItem(ctx context.Context, item NewItem) ([]Item, error) {
	body, contentType, err := encodeNewItem(item)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/items", body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	var resp itemsResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// WithTimeout bounds ctx by d. A non-positive d only adds cancellation.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// --- internal ---

// encodeNewItem builds the POST /items body. Without an image the server only
// accepts a urlencoded form, which it stores with its default image.
func encodeNewItem(item NewItem) (io.Reader, string, error) {
	if item.ImagePath == "" {
		form := url.Values{}
		form.Set("name", item.Name)
		form.Set("category", item.Category)
		return strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil
	}

	data, err := os.ReadFile(expandHome(item.ImagePath))
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("read image %s: %w", item.ImagePath, ErrEmptyImage)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("name", item.Name); err != nil {
		return nil, "", fmt.Errorf("write name: %w", err)
	}
	if err := w.WriteField("category", item.Category); err != nil {
		return nil, "", fmt.Errorf("write category: %w", err)
	}
	part, err := w.CreateFormFile("image", filepath.Base(item.ImagePath))
	if err != nil {
		return nil, "", fmt.Errorf("create image part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("write image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
