package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageUploadResult describes a stored post image.
type ImageUploadResult struct {
	URL  string `json:"url"` // Public path under /static/uploads
	Name string `json:"name"`
}

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadDir resolves the image storage directory from the environment.
func UploadDir() string {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "./web/static/uploads"
	}
	return dir
}

// UploadImage stores an uploaded post image on local disk under a random
// name and returns its public path.
func UploadImage(file multipart.File, header *multipart.FileHeader) (*ImageUploadResult, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		return nil, fmt.Errorf("unsupported image type: %q", ext)
	}

	dir := UploadDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return nil, fmt.Errorf("write image file: %w", err)
	}

	return &ImageUploadResult{
		URL:  "/static/uploads/" + name,
		Name: name,
	}, nil
}
