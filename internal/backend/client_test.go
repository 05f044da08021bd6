package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_ListItems(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /items", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"items": []map[string]any{
			{"id": 1, "name": "jacket", "category": "fashion", "image_name": "a.jpg"},
		}})
	})
	c := newTestServer(t, mux)

	items, err := c.ListItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Item{{ID: 1, Name: "jacket", Category: "fashion", ImageName: "a.jpg"}}, items)
}

func TestClient_AddItem_Multipart(t *testing.T) {
	image := filepath.Join(t.TempDir(), "jacket.jpg")
	require.NoError(t, os.WriteFile(image, []byte("jpeg-bytes"), 0o644))

	var gotName, gotCategory, gotFile string
	var gotImage []byte
	mux := http.NewServeMux()
	mux.HandleFunc("POST /items", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotName = r.FormValue("name")
		gotCategory = r.FormValue("category")
		f, hdr, err := r.FormFile("image")
		if err != nil {
			http.Error(w, "image is required", http.StatusBadRequest)
			return
		}
		defer f.Close()
		gotFile = hdr.Filename
		gotImage, _ = io.ReadAll(f)
		writeJSON(w, map[string]any{"items": []map[string]any{
			{"id": 1, "name": gotName, "category": gotCategory, "image_name": "hash.jpg"},
		}})
	})
	c := newTestServer(t, mux)

	items, err := c.AddItem(context.Background(), NewItem{Name: "jacket", Category: "fashion", ImagePath: image})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "hash.jpg", items[0].ImageName)
	assert.Equal(t, "jacket", gotName)
	assert.Equal(t, "fashion", gotCategory)
	assert.Equal(t, "jacket.jpg", gotFile)
	assert.Equal(t, []byte("jpeg-bytes"), gotImage)
}

// addItemHandler accepts POST /items the way the API server parses it: a
// multipart request must carry a non-empty image file, any other form falls
// back to the default image.
func addItemHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		image := "default.jpg"
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
				return
			}
			f, _, err := r.FormFile("image")
			if errors.Is(err, http.ErrMissingFile) {
				http.Error(w, "image is required", http.StatusBadRequest)
				return
			}
			if !assert.NoError(t, err) {
				return
			}
			defer f.Close()
			data, _ := io.ReadAll(f)
			if len(data) == 0 {
				http.Error(w, "image data is empty", http.StatusBadRequest)
				return
			}
			image = "hash.jpg"
		} else if !assert.NoError(t, r.ParseForm()) {
			return
		}
		writeJSON(w, map[string]any{"items": []map[string]any{
			{"id": 1, "name": r.FormValue("name"), "category": r.FormValue("category"), "image_name": image},
		}})
	}
}

func TestClient_AddItem_WithoutImage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /items", addItemHandler(t))
	c := newTestServer(t, mux)

	items, err := c.AddItem(context.Background(), NewItem{Name: "jacket", Category: "fashion"})
	require.NoError(t, err)
	assert.Equal(t, []Item{{ID: 1, Name: "jacket", Category: "fashion", ImageName: "default.jpg"}}, items)
}

func TestClient_AddItem_EmptyImageNotSent(t *testing.T) {
	image := filepath.Join(t.TempDir(), "empty.jpg")
	require.NoError(t, os.WriteFile(image, nil, 0o644))

	var calls int
	mux := http.NewServeMux()
	mux.HandleFunc("POST /items", func(w http.ResponseWriter, r *http.Request) {
		calls++
		addItemHandler(t)(w, r)
	})
	c := newTestServer(t, mux)

	_, err := c.AddItem(context.Background(), NewItem{Name: "jacket", Category: "fashion", ImagePath: image})
	assert.ErrorIs(t, err, ErrEmptyImage)
	assert.Zero(t, calls)
}

func TestClient_AddItem_ImageAcceptedByServer(t *testing.T) {
	image := filepath.Join(t.TempDir(), "jacket.jpg")
	require.NoError(t, os.WriteFile(image, []byte("jpeg-bytes"), 0o644))
	mux := http.NewServeMux()
	mux.HandleFunc("POST /items", addItemHandler(t))
	c := newTestServer(t, mux)

	items, err := c.AddItem(context.Background(), NewItem{Name: "jacket", Category: "fashion", ImagePath: image})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "hash.jpg", items[0].ImageName)
}

func TestClient_AddItem_BadRequest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /items", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "image is required", http.StatusBadRequest)
	})
	c := newTestServer(t, mux)

	_, err := c.AddItem(context.Background(), NewItem{Name: "jacket", Category: "fashion"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "image is required", apiErr.Message)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestClient_AddItem_MissingImageFile(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)

	_, err := c.AddItem(context.Background(), NewItem{Name: "x", Category: "y", ImagePath: filepath.Join(t.TempDir(), "nope.jpg")})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestClient_GetItem(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "1" {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"name": "jacket", "category": "fashion", "image_name": "a.jpg"})
	})
	c := newTestServer(t, mux)

	d, err := c.GetItem(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, ItemDetail{Name: "jacket", Category: "fashion", ImageName: "a.jpg"}, d)

	_, err = c.GetItem(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_SearchItems(t *testing.T) {
	var gotKeyword string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
		gotKeyword = r.URL.Query().Get("keyword")
		writeJSON(w, map[string]any{"items": []map[string]any{
			{"name": "red jacket", "category": "fashion", "image_name": "a.jpg"},
		}})
	})
	c := newTestServer(t, mux)

	items, err := c.SearchItems(context.Background(), "red jacket")
	require.NoError(t, err)
	assert.Equal(t, "red jacket", gotKeyword)
	assert.Equal(t, []Item{{Name: "red jacket", Category: "fashion", ImageName: "a.jpg"}}, items)
}

func TestClient_Hello(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"message": "Hello, world!"})
	})
	c := newTestServer(t, mux)

	msg, err := c.Hello(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", msg)
}

func TestClient_ContextCanceled(t *testing.T) {
	block := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /items", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	})
	c := newTestServer(t, mux)
	defer close(block)

	ctx, cancel := WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.ListItems(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_ImageURL(t *testing.T) {
	c := NewClient("", 0)
	assert.Equal(t, DefaultAPIURL, c.BaseURL())
	assert.Equal(t, DefaultAPIURL+"/images/a.jpg", c.ImageURL("a.jpg"))
	assert.Empty(t, c.ImageURL(""))
}

func TestCategories(t *testing.T) {
	items := []Item{
		{Category: "fashion"},
		{Category: ""},
		{Category: "kitchen"},
		{Category: "fashion"},
	}
	assert.Equal(t, []string{"fashion", "kitchen"}, Categories(items))
	assert.Nil(t, Categories(nil))
}
