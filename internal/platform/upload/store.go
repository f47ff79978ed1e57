package upload

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/nfnt/resize"
)

const thumbWidth = 400

// Store writes uploaded images to a local directory served under /uploads/.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload.NewStore: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save persists one uploaded file under a unique, sanitized name and returns
// the stored filename. A downscaled thumbnail is written alongside jpeg/png
// originals; thumbnail failures are logged, not fatal.
func (s *Store) Save(file multipart.File, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	name := uuid.NewString() + "-" + slug.Make(base) + ext

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("upload.Save create: %w", err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		return "", fmt.Errorf("upload.Save copy: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("upload.Save close: %w", err)
	}

	if ext == ".jpg" || ext == ".jpeg" || ext == ".png" {
		if err := s.writeThumbnail(name, ext); err != nil {
			log.Printf("thumbnail for %s skipped: %v", name, err)
		}
	}
	return name, nil
}

func (s *Store) writeThumbnail(name, ext string) error {
	src, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	defer src.Close()

	img, _, err := image.Decode(src)
	if err != nil {
		return err
	}
	if img.Bounds().Dx() <= thumbWidth {
		return nil // already small enough
	}

	thumb := resize.Resize(thumbWidth, 0, img, resize.Lanczos3)
	thumbName := strings.TrimSuffix(name, ext) + "_thumb" + ext
	out, err := os.Create(filepath.Join(s.dir, thumbName))
	if err != nil {
		return err
	}
	defer out.Close()

	if ext == ".png" {
		return png.Encode(out, thumb)
	}
	return jpeg.Encode(out, thumb, &jpeg.Options{Quality: 85})
}
