package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

const defaultCloudinaryBase = "https://api.cloudinary.com/v1_1"

// UploadResult is what the remote host reports back for a stored asset.
type UploadResult struct {
	URL          string
	PublicID     string
	ResourceType string
}

// Uploader is the remote media host. A nil *CloudinaryClient satisfies the
// "not configured" case; handlers turn it into a 503.
type Uploader interface {
	Upload(ctx context.Context, filePath, filename string) (UploadResult, error)
	Destroy(ctx context.Context, publicID, resourceType string) error
}

type CloudinaryClient struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	folder     string
	baseURL    string
	httpClient *http.Client
}

func NewCloudinaryClient(cloudName, apiKey, apiSecret, folder string) *CloudinaryClient {
	if strings.TrimSpace(cloudName) == "" || strings.TrimSpace(apiKey) == "" || strings.TrimSpace(apiSecret) == "" {
		return nil
	}
	return &CloudinaryClient{
		cloudName:  cloudName,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		folder:     folder,
		baseURL:    defaultCloudinaryBase,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload sends the file with resource_type auto so images and videos land
// on the correct pipeline.
func (c *CloudinaryClient) Upload(ctx context.Context, filePath, filename string) (UploadResult, error) {
	if c == nil {
		return UploadResult{}, errors.New("cloudinary client is nil")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return UploadResult{}, fmt.Errorf("cloudinary open upload: %w", err)
	}
	defer file.Close()

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{"timestamp": timestamp}
	if c.folder != "" {
		params["folder"] = c.folder
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer pw.Close()
		defer mw.Close()
		for key, value := range params {
			if err := mw.WriteField(key, value); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		if err := mw.WriteField("api_key", c.apiKey); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := mw.WriteField("signature", c.sign(params)); err != nil {
			pw.CloseWithError(err)
			return
		}
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
	}()

	endpoint := fmt.Sprintf("%s/%s/auto/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return UploadResult{}, fmt.Errorf("cloudinary create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("cloudinary upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return UploadResult{}, fmt.Errorf("cloudinary upload failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out cloudinaryUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return UploadResult{}, fmt.Errorf("cloudinary decode response: %w", err)
	}
	if strings.TrimSpace(out.SecureURL) == "" {
		return UploadResult{}, errors.New("cloudinary response missing secure_url")
	}
	return UploadResult{URL: out.SecureURL, PublicID: out.PublicID, ResourceType: out.ResourceType}, nil
}

func (c *CloudinaryClient) Destroy(ctx context.Context, publicID, resourceType string) error {
	if c == nil {
		return errors.New("cloudinary client is nil")
	}
	if strings.TrimSpace(publicID) == "" {
		return errors.New("missing public id")
	}
	if resourceType == "" {
		resourceType = "image"
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{"public_id": publicID, "timestamp": timestamp}

	form := url.Values{}
	for key, value := range params {
		form.Set(key, value)
	}
	form.Set("api_key", c.apiKey)
	form.Set("signature", c.sign(params))

	endpoint := fmt.Sprintf("%s/%s/%s/destroy", c.baseURL, c.cloudName, resourceType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("cloudinary create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cloudinary destroy failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("cloudinary destroy failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}

// sign hashes the sorted key=value pairs plus the API secret, per the
// Cloudinary signed-request scheme.
func (c *CloudinaryClient) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))
	return hex.EncodeToString(sum[:])
}

// PublicIDFromURL recovers the public id from a delivery URL so stored rows
// don't need an extra column. Returns "" when the URL doesn't look like a
// Cloudinary delivery path.
func PublicIDFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	// .../<cloud>/<resource_type>/upload/<version>/<folder...>/<name>.<ext>
	uploadIdx := -1
	for i, segment := range segments {
		if segment == "upload" {
			uploadIdx = i
			break
		}
	}
	if uploadIdx < 0 || uploadIdx+1 >= len(segments) {
		return ""
	}
	rest := segments[uploadIdx+1:]
	if len(rest) > 0 && strings.HasPrefix(rest[0], "v") {
		if _, err := strconv.Atoi(rest[0][1:]); err == nil {
			rest = rest[1:]
		}
	}
	if len(rest) == 0 {
		return ""
	}
	last := rest[len(rest)-1]
	rest[len(rest)-1] = strings.TrimSuffix(last, path.Ext(last))
	return strings.Join(rest, "/")
}

type cloudinaryUploadResponse struct {
	SecureURL    string `json:"secure_url"`
	PublicID     string `json:"public_id"`
	ResourceType string `json:"resource_type"`
}
