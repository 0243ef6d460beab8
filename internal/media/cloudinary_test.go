package media

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spendware/walletd/internal/errs"
)

func TestCloudinaryUpload_Success(t *testing.T) {
	var gotPath, gotPreset, gotFilename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotPreset = r.FormValue("upload_preset")
		if f := r.MultipartForm.File["file"]; len(f) == 1 {
			gotFilename = f[0].Filename
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"secure_url": "https://res.cloudinary.test/demo/image/upload/v1/abc.png",
		})
	}))
	defer srv.Close()

	c := NewCloudinary("demo", "unsigned-preset", WithBaseURL(srv.URL))
	url, err := c.Upload(context.Background(), []byte("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "https://res.cloudinary.test/demo/image/upload/v1/abc.png" {
		t.Fatalf("url = %q", url)
	}
	if gotPath != "/v1_1/demo/image/upload" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotPreset != "unsigned-preset" {
		t.Fatalf("preset = %q", gotPreset)
	}
	if gotFilename != "upload.png" {
		t.Fatalf("filename = %q", gotFilename)
	}
}

func TestCloudinaryUpload_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "Upload preset not found"},
		})
	}))
	defer srv.Close()

	c := NewCloudinary("demo", "missing", WithBaseURL(srv.URL))
	_, err := c.Upload(context.Background(), []byte("data"), "image/jpeg")
	if !errors.Is(err, errs.ErrUploadFailed) {
		t.Fatalf("err = %v, want ErrUploadFailed", err)
	}
}

func TestCloudinaryUpload_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewCloudinary("demo", "preset", WithBaseURL(srv.URL))
	_, err := c.Upload(context.Background(), []byte("data"), "image/jpeg")
	if !errors.Is(err, errs.ErrUploadFailed) {
		t.Fatalf("err = %v, want ErrUploadFailed", err)
	}
}

func TestCloudinaryUpload_EmptyBody(t *testing.T) {
	c := NewCloudinary("demo", "preset")
	if _, err := c.Upload(context.Background(), nil, "image/png"); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}
