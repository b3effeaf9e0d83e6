package catalog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/marcus/keytester/internal/jsonstore"
	"github.com/marcus/keytester/internal/models"
)

// ImageExtensions are the file types offered when picking a switch image
var ImageExtensions = []string{".png", ".jpg", ".jpeg"}

// ImportImage copies src into the managed image directory under its base
// name, replacing any file of the same name, and returns that name.
// An empty or nonexistent src returns ok=false and leaves the directory alone.
func (r *Repository) ImportImage(src string) (name string, ok bool, err error) {
	if src == "" {
		return "", false, nil
	}
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", jsonstore.ErrIOFailure, err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("%w: %s is a directory", jsonstore.ErrIOFailure, src)
	}

	dir := r.images.ImageDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", false, fmt.Errorf("%w: create %s: %v", jsonstore.ErrIOFailure, dir, err)
	}

	name = filepath.Base(src)
	if err := copyFile(src, filepath.Join(dir, name)); err != nil {
		return "", false, err
	}
	return name, true, nil
}

// ImagePath resolves rec's image against the image directory.
// Returns "" when the record has no image.
func (r *Repository) ImagePath(rec models.SwitchRecord) string {
	if rec.Image == "" {
		return ""
	}
	return filepath.Join(r.images.ImageDir(), rec.Image)
}

// copyFile copies src to dst through a temp file so a failed copy never
// leaves a truncated dst behind.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %v", jsonstore.ErrIOFailure, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", jsonstore.ErrIOFailure, err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: copy %s: %v", jsonstore.ErrIOFailure, src, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: copy %s: %v", jsonstore.ErrIOFailure, src, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", jsonstore.ErrIOFailure, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replace %s: %v", jsonstore.ErrIOFailure, dst, err)
	}
	return nil
}
