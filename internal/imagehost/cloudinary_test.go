package imagehost

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"greencare-be/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	params := map[string]string{"timestamp": "1700000000", "folder": "greencare/plants", "public_id": "abc"}
	sum := sha1.Sum([]byte("folder=greencare/plants&public_id=abc&timestamp=1700000000secret"))

	assert.Equal(t, hex.EncodeToString(sum[:]), Sign(params, "secret"))
}

func TestCloudinary_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1_1/demo/image/upload", r.URL.Path)
			require.NoError(t, r.ParseMultipartForm(1<<20))

			assert.Equal(t, "key", r.FormValue("api_key"))
			assert.Equal(t, FolderPlants, r.FormValue("folder"))
			assert.Equal(t, "1700000000", r.FormValue("timestamp"))
			assert.NotEmpty(t, r.FormValue("public_id"))

			expected := Sign(map[string]string{
				"folder":    r.FormValue("folder"),
				"public_id": r.FormValue("public_id"),
				"timestamp": r.FormValue("timestamp"),
			}, "secret")
			assert.Equal(t, expected, r.FormValue("signature"))

			f, header, err := r.FormFile("file")
			require.NoError(t, err)
			defer f.Close()
			data, _ := io.ReadAll(f)
			assert.Equal(t, "fern.jpg", header.Filename)
			assert.Equal(t, "jpeg-bytes", string(data))

			w.Write([]byte(`{"secure_url":"https://res.cloudinary.com/demo/fern.jpg","public_id":"greencare/plants/abc"}`))
		}))
		defer srv.Close()

		c := NewCloudinary(Config{CloudName: "demo", APIKey: "key", APISecret: "secret", BaseURL: srv.URL})
		c.now = func() time.Time { return time.Unix(1700000000, 0) }

		res, err := c.Upload(ctx, strings.NewReader("jpeg-bytes"), "fern.jpg", FolderPlants)
		require.NoError(t, err)
		assert.Equal(t, &Result{URL: "https://res.cloudinary.com/demo/fern.jpg", PublicID: "greencare/plants/abc"}, res)
	})

	t.Run("Rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"message":"Invalid Signature"}}`))
		}))
		defer srv.Close()

		c := NewCloudinary(Config{CloudName: "demo", APIKey: "key", APISecret: "secret", BaseURL: srv.URL})
		_, err := c.Upload(ctx, strings.NewReader("x"), "x.png", FolderProducts)

		assert.ErrorIs(t, err, apperr.ErrUpstream)
		assert.Equal(t, "image upload failed: Invalid Signature", apperr.Message(err))
	})

	t.Run("GarbageResponse", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`<html>`))
		}))
		defer srv.Close()

		c := NewCloudinary(Config{CloudName: "demo", APIKey: "key", APISecret: "secret", BaseURL: srv.URL})
		_, err := c.Upload(ctx, strings.NewReader("x"), "x.png", FolderProducts)

		assert.ErrorIs(t, err, apperr.ErrUpstream)
		assert.Equal(t, "image upload failed: status 502", apperr.Message(err))
	})

	t.Run("NotConfigured", func(t *testing.T) {
		_, err := NewCloudinary(Config{}).Upload(ctx, strings.NewReader("x"), "x.png", FolderPredict)

		assert.ErrorIs(t, err, ErrNotConfigured)
		assert.ErrorIs(t, err, apperr.ErrUpstream)
	})
}
