package utils

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/sirupsen/logrus"
)

const avatarFolder = "studio/avatars"

// AvatarStore uploads and removes profile pictures.
type AvatarStore interface {
	UploadAvatar(ctx context.Context, file io.Reader, publicID string) (string, error)
	DeleteAvatar(ctx context.Context, publicID string) error
}

type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryService(cloudinaryURL string) (*CloudinaryService, error) {
	if cloudinaryURL == "" {
		return nil, fmt.Errorf("CLOUDINARY_URL environment variable is not set")
	}

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryService{cld: cld}, nil
}

func (s *CloudinaryService) UploadAvatar(ctx context.Context, file io.Reader, publicID string) (string, error) {
	overwrite := true
	uploadResult, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         avatarFolder,
		AllowedFormats: []string{"jpg", "jpeg", "png", "gif", "webp"},
		ResourceType:   "image",
		Overwrite:      &overwrite,
	})
	if err != nil {
		logrus.Errorf("Cloudinary upload error: %v", err)
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return uploadResult.SecureURL, nil
}

func (s *CloudinaryService) DeleteAvatar(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		logrus.Errorf("Cloudinary delete error: %v", err)
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}

// GetPublicIDFromURL extracts "folder/name" from a Cloudinary delivery URL:
// https://res.cloudinary.com/{cloud}/image/upload/v{version}/{folder}/{name}.{ext}
func GetPublicIDFromURL(url string) string {
	parts := strings.SplitN(url, "/upload/", 2)
	if len(parts) < 2 {
		return ""
	}

	pathParts := strings.Split(parts[1], "/")
	if len(pathParts) < 2 {
		return ""
	}

	filename := pathParts[len(pathParts)-1]
	if ext := strings.LastIndex(filename, "."); ext > 0 {
		filename = filename[:ext]
	}
	return strings.Join(append(pathParts[1:len(pathParts)-1], filename), "/")
}
