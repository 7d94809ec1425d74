// Package media forwards uploaded song files to the external media host.
package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/listen-stream/music-svc/pkg/config"
)

// ErrNotConfigured is returned by NewUploader when no credentials are set.
var ErrNotConfigured = errors.New("media: credentials are not configured")

// Result describes a stored file.
type Result struct {
	URL      string
	PublicID string
}

// Uploader stores a local file and returns its durable location.
type Uploader interface {
	Upload(ctx context.Context, filePath, folder string) (*Result, error)
}

// uploadAPI is the part of the Cloudinary SDK used here.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryUploader uploads through the Cloudinary upload API.
type CloudinaryUploader struct {
	api uploadAPI
}

// NewUploader builds a Cloudinary uploader from cfg. Either the
// cloudinary:// URL or the three discrete credentials must be set.
func NewUploader(cfg *config.MediaConfig) (*CloudinaryUploader, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if cfg.URL != "" {
		cld, err = cloudinary.NewFromURL(cfg.URL)
	} else {
		cld, err = cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	}
	if err != nil {
		return nil, fmt.Errorf("create cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true

	return &CloudinaryUploader{api: &cld.Upload}, nil
}

// Upload sends filePath into folder. The resource type is detected by the
// host so audio and images share the same path.
func (u *CloudinaryUploader) Upload(ctx context.Context, filePath, folder string) (*Result, error) {
	resp, err := u.api.Upload(ctx, filePath, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", filePath, err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("upload %s: %s", filePath, resp.Error.Message)
	}

	url := resp.SecureURL
	if url == "" {
		url = resp.URL
	}
	return &Result{URL: url, PublicID: resp.PublicID}, nil
}
