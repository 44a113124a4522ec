package pixel

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
)

// Source is a picture selected for conversion into a pixel grid.
//
// The raw file bytes are kept so the picture can be uploaded unchanged; the
// service does the resampling.
type Source struct {
	// Name is the base file name, used as the upload file name.
	Name string `json:"name"`

	// Format is the detected format: "png", "jpeg" or "gif".
	// Detection is based on file contents, not the extension.
	Format string `json:"format"`

	// Width and Height are the picture dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Data is the undecoded file contents.
	Data []byte `json:"-"`
}

// OpenSource reads and validates a source picture.
//
// Returns an error if the file cannot be read, is not a PNG, JPEG or GIF, or
// does not fully decode.
func OpenSource(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source image: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unsupported source image %s: %w", filepath.Base(path), err)
	}

	// DecodeConfig only reads the header; make sure the pixel data is intact too.
	if _, err := imgio.Open(path); err != nil {
		return nil, fmt.Errorf("failed to decode source image: %w", err)
	}

	return &Source{
		Name:   filepath.Base(path),
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Data:   data,
	}, nil
}
