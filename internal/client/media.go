package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/camshop/backend/internal/config"
	"github.com/camshop/backend/internal/model"
)

// MediaClient talks to the external image-storage service. Uploads return the
// stored public ID and a serving URL; deletes take a batch of public IDs.
type MediaClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type mediaUploadResponse struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
	Error    string `json:"error,omitempty"`
}

type mediaDeleteRequest struct {
	PublicIDs []string `json:"public_ids"`
}

type mediaDeleteResponse struct {
	Deleted int    `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

func NewMediaClient(cfg config.MediaConfig) *MediaClient {
	return &MediaClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *MediaClient) IsConfigured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

func (c *MediaClient) Upload(ctx context.Context, name string, content io.Reader) (model.Image, error) {
	if !c.IsConfigured() {
		return model.Image{}, fmt.Errorf("media client is not configured")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return model.Image{}, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return model.Image{}, err
	}
	if err := writer.WriteField("public_id", name); err != nil {
		return model.Image{}, err
	}
	if err := writer.Close(); err != nil {
		return model.Image{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return model.Image{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Image{}, fmt.Errorf("media upload failed: %w", err)
	}
	defer resp.Body.Close()

	var uploadResp mediaUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return model.Image{}, fmt.Errorf("failed to decode media response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || uploadResp.Error != "" {
		return model.Image{}, fmt.Errorf("media upload failed: status=%d error=%s", resp.StatusCode, uploadResp.Error)
	}

	return model.Image{
		PublicID: uploadResp.PublicID,
		URL:      uploadResp.URL,
	}, nil
}

func (c *MediaClient) Delete(ctx context.Context, publicIDs []string) error {
	if len(publicIDs) == 0 {
		return nil
	}
	if !c.IsConfigured() {
		return fmt.Errorf("media client is not configured")
	}

	payload, err := json.Marshal(mediaDeleteRequest{PublicIDs: publicIDs})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/resources/delete", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("media delete failed: %w", err)
	}
	defer resp.Body.Close()

	var deleteResp mediaDeleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&deleteResp); err != nil {
		return fmt.Errorf("failed to decode media response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || deleteResp.Error != "" {
		return fmt.Errorf("media delete failed: status=%d error=%s", resp.StatusCode, deleteResp.Error)
	}
	return nil
}
