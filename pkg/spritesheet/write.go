package spritesheet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/spritestudio/pkg/imaging"
)

// MetadataPath returns the metadata path that belongs to an atlas path.
func MetadataPath(atlasPath string) string {
	return strings.TrimSuffix(atlasPath, filepath.Ext(atlasPath)) + ".json"
}

// Save writes the atlas and its metadata. Both files are staged in the
// target directory and only renamed into place once both were written, so a
// failed save leaves no partial atlas behind.
func Save(atlasPath string, s *Sheet, meta Metadata, format imaging.Format) (err error) {
	dir := filepath.Dir(atlasPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	atlasTmp, err := stage(dir, func(w io.Writer) error {
		return imaging.Encode(w, s.Image, format)
	})
	if err != nil {
		return fmt.Errorf("writing atlas: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(atlasTmp)
		}
	}()

	metaTmp, err := stage(dir, meta.Encode)
	if err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(metaTmp)
		}
	}()

	if err = os.Rename(atlasTmp, atlasPath); err != nil {
		return fmt.Errorf("committing atlas: %w", err)
	}
	if err = os.Rename(metaTmp, MetadataPath(atlasPath)); err != nil {
		// Do not leave an atlas without its metadata.
		os.Remove(atlasPath)
		return fmt.Errorf("committing metadata: %w", err)
	}
	return nil
}

// stage writes to a hidden temp file in dir and returns its path.
func stage(dir string, write func(io.Writer) error) (string, error) {
	f, err := os.CreateTemp(dir, ".spritesheet-*.tmp")
	if err != nil {
		return "", err
	}
	name := f.Name()
	werr := write(f)
	if werr == nil {
		werr = f.Sync()
	}
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}
