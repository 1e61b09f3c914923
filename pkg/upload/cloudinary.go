// Package upload stores profile pictures on Cloudinary.
package upload

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/noah-isme/placement-portal-api/pkg/config"
)

// ErrDisabled is returned when no Cloudinary credentials are configured.
var ErrDisabled = errors.New("upload: cloudinary not configured")

// CloudinaryUploader uploads images given as data URIs or remote URLs.
type CloudinaryUploader struct {
	cld     *cloudinary.Cloudinary
	folder  string
	timeout time.Duration
}

// NewCloudinaryUploader builds an uploader from config. It returns ErrDisabled
// when credentials are missing.
func NewCloudinaryUploader(cfg config.UploadConfig) (*CloudinaryUploader, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &CloudinaryUploader{cld: cld, folder: cfg.Folder, timeout: timeout}, nil
}

// Upload sends source (a data URI or an http(s) URL) and returns the secure URL.
func (u *CloudinaryUploader) Upload(ctx context.Context, source string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	resp, err := u.cld.Upload.Upload(ctx, source, uploader.UploadParams{
		Folder:       u.folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload image: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// Delete removes a previously uploaded image by its delivery URL.
func (u *CloudinaryUploader) Delete(ctx context.Context, imageURL string) error {
	publicID, err := PublicID(imageURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, u.timeout/2)
	defer cancel()

	if _, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// PublicID extracts the Cloudinary public id from a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v1712/profile-pictures/abc.jpg.
func PublicID(imageURL string) (string, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return "", fmt.Errorf("parse image url: %w", err)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	idx := -1
	for i, s := range segments {
		if s == "upload" {
			idx = i
			break
		}
	}
	if idx < 0 || idx == len(segments)-1 {
		return "", fmt.Errorf("not a cloudinary delivery url: %q", imageURL)
	}

	rest := segments[idx+1:]
	if len(rest) > 1 && isVersion(rest[0]) {
		rest = rest[1:]
	}
	joined := path.Join(rest...)
	return strings.TrimSuffix(joined, path.Ext(joined)), nil
}

func isVersion(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
