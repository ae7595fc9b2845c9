package utils

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const eventImageFolder = "events"

var versionSegment = regexp.MustCompile(`^v\d+$`)

// ImageUploader stores event cover images on Cloudinary.
type ImageUploader struct {
	cld *cloudinary.Cloudinary
}

func NewImageUploader(cloudName, apiKey, apiSecret string) (*ImageUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &ImageUploader{cld: cld}, nil
}

// ✅ Upload to "events" folder
func (u *ImageUploader) UploadEventImage(ctx context.Context, file multipart.File) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	uploadResp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: eventImageFolder,
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %w", err)
	}

	return uploadResp.SecureURL, nil
}

// ✅ Delete image from Cloudinary using full URL
func (u *ImageUploader) DeleteImage(ctx context.Context, imageURL string) error {
	publicID, err := extractPublicID(imageURL)
	if err != nil {
		return fmt.Errorf("could not extract public ID: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err = u.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("delete error: %w", err)
	}

	return nil
}

// IsHostedImage reports whether imageURL points at a Cloudinary upload.
func IsHostedImage(imageURL string) bool {
	u, err := url.Parse(imageURL)
	return err == nil && strings.HasSuffix(u.Host, "cloudinary.com") && strings.Contains(u.Path, "/upload/")
}

// 🔹 Helper: Extract Cloudinary public ID from full URL
// e.g. https://res.cloudinary.com/demo/image/upload/v1234567890/events/abc123.jpg -> events/abc123
func extractPublicID(imageURL string) (string, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return "", err
	}

	parts := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")

	upload := -1
	for i, p := range parts {
		if p == "upload" {
			upload = i
			break
		}
	}
	if upload < 0 || upload == len(parts)-1 {
		return "", fmt.Errorf("invalid cloudinary URL format")
	}

	rest := parts[upload+1:]
	if len(rest) > 1 && versionSegment.MatchString(rest[0]) {
		rest = rest[1:]
	}

	joined := path.Join(rest...)
	return strings.TrimSuffix(joined, path.Ext(joined)), nil
}
