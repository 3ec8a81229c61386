package cloudinary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// ErrMissingSecureURL is returned when the upload response carries no secure_url.
var ErrMissingSecureURL = errors.New("cloudinary: response has no secure_url")

// Client defines the interface for interacting with the Cloudinary upload API
type Client interface {
	UploadImage(ctx context.Context, req UploadRequest) (*UploadResponse, error)
}

// UploadRequest is one unsigned image upload.
type UploadRequest struct {
	Filename string
	File     io.Reader
	Preset   string
	// Context is Cloudinary's contextual metadata, "key=value|key=value".
	Context string
}

// UploadResponse holds the fields of the upload response this service uses.
type UploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Format    string `json:"format"`
	Bytes     int64  `json:"bytes"`
}

type clientImpl struct {
	baseURL    string
	cloudName  string
	httpClient *http.Client
}

// NewClient creates a new Cloudinary client. A nil httpClient uses http.DefaultClient;
// deadlines come from the request context.
func NewClient(baseURL, cloudName string, httpClient *http.Client) Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &clientImpl{
		baseURL:    baseURL,
		cloudName:  cloudName,
		httpClient: httpClient,
	}
}

func (c *clientImpl) UploadImage(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	url := fmt.Sprintf("%s/v1_1/%s/image/upload", c.baseURL, c.cloudName)

	body, contentType, err := encodeUpload(req)
	if err != nil {
		return nil, fmt.Errorf("error creating payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error uploading image: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	var response struct {
		UploadResponse
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("error parsing response (status %d): %w", resp.StatusCode, err)
	}

	if response.SecureURL == "" {
		if response.Error != nil && response.Error.Message != "" {
			return nil, fmt.Errorf("%w: status %d: %s", ErrMissingSecureURL, resp.StatusCode, response.Error.Message)
		}
		return nil, fmt.Errorf("%w: status %d", ErrMissingSecureURL, resp.StatusCode)
	}

	return &response.UploadResponse, nil
}

func encodeUpload(req UploadRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	filename := req.Filename
	if filename == "" {
		filename = "logo"
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, req.File); err != nil {
		return nil, "", err
	}
	if err := writer.WriteField("upload_preset", req.Preset); err != nil {
		return nil, "", err
	}
	if err := writer.WriteField("context", req.Context); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return &buf, writer.FormDataContentType(), nil
}
