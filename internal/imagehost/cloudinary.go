// Package imagehost uploads images to Cloudinary.
package imagehost

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"greencare-be/internal/apperr"
	"greencare-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	FolderProducts = "greencare/products"
	FolderPlants   = "greencare/plants"
	FolderPredict  = "greencare/predict"

	defaultBaseURL = "https://api.cloudinary.com"
)

var ErrNotConfigured = errors.New("image hosting is not configured")

type Result struct {
	URL      string `json:"image_url"`
	PublicID string `json:"public_id"`
}

type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	BaseURL   string
	Timeout   time.Duration
}

type Cloudinary struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

func NewCloudinary(cfg Config) *Cloudinary {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		logger.L().Warn("cloudinary credentials are incomplete, uploads will fail")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Cloudinary{
		cloudName:  cfg.CloudName,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload stores the image read from file under folder. Failures are
// classified as upstream errors carrying the provider's message.
func (c *Cloudinary) Upload(ctx context.Context, file io.Reader, filename, folder string) (*Result, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "imagehost"),
		zap.String("method", "Upload"),
		zap.String("folder", folder),
	)

	if c.cloudName == "" || c.apiKey == "" || c.apiSecret == "" {
		return nil, apperr.Wrap(apperr.ErrUpstream, ErrNotConfigured)
	}

	params := map[string]string{
		"folder":    folder,
		"public_id": uuid.NewString(),
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}

	body, contentType, err := c.multipartBody(params, file, filename)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrUpstream, fmt.Errorf("read upload: %w", err))
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrUpstream, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("cloudinary request failed", zap.Error(err))
		return nil, apperr.Wrap(apperr.ErrUpstream, fmt.Errorf("image upload failed: %w", err))
	}
	defer resp.Body.Close()

	var res uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		log.Error("failed decoding cloudinary response", zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, apperr.Wrap(apperr.ErrUpstream, fmt.Errorf("image upload failed: status %d", resp.StatusCode))
	}

	if resp.StatusCode != http.StatusOK || res.SecureURL == "" {
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		if res.Error != nil && res.Error.Message != "" {
			msg = res.Error.Message
		}
		log.Error("cloudinary rejected upload", zap.Int("status", resp.StatusCode), zap.String("reason", msg))
		return nil, apperr.Wrap(apperr.ErrUpstream, fmt.Errorf("image upload failed: %s", msg))
	}

	log.Info("image uploaded", zap.String("public_id", res.PublicID))
	return &Result{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (c *Cloudinary) multipartBody(params map[string]string, file io.Reader, filename string) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	for k, v := range params {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if err := mw.WriteField("api_key", c.apiKey); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("signature", Sign(params, c.apiSecret)); err != nil {
		return nil, "", err
	}

	if filename == "" {
		filename = "upload"
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return buf, mw.FormDataContentType(), nil
}

// Sign computes the Cloudinary request signature: the sha1 hex digest of
// the alphabetically sorted key=value pairs joined by '&', followed by the secret.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
