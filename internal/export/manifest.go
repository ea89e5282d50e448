package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/figure-extractor/internal/session"
)

// DefaultManifestName is the manifest file written next to the images.
const DefaultManifestName = "figures_metadata.json"

// manifestMode matches the permissions of the images written next to it.
const manifestMode os.FileMode = 0o644

// Manifest is the persisted record of one export.
type Manifest struct {
	Figures []Entry `json:"figures"`
}

// Entry describes one exported image.
type Entry struct {
	Filename     string       `json:"filename"`
	Type         session.Kind `json:"type"`
	FigureNumber int          `json:"figure_number"`

	// PanelNumber is nil for single and full figures and encodes as null.
	PanelNumber *int `json:"panel_number"`

	// Page is the 1-based page number.
	Page int `json:"page"`

	// BBox is [left, top, right, bottom] in native page coordinates.
	BBox [4]float64 `json:"bbox"`
}

// Filename returns the image name for a region:
// figure_{n}.png, figure_{n}_full.png or figure_{n}_panel_{p}.png.
func Filename(kind session.Kind, figure, panel int) string {
	switch kind {
	case session.Full:
		return fmt.Sprintf("figure_%d_full.png", figure)
	case session.Panel:
		return fmt.Sprintf("figure_%d_panel_%d.png", figure, panel)
	}
	return fmt.Sprintf("figure_%d.png", figure)
}

// ReadManifest loads a manifest written by Export.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// writeManifest writes m to dir/name through a temporary file and a rename,
// so readers never observe a partial manifest.
func writeManifest(m *Manifest, dir, name string) (string, error) {
	if m.Figures == nil {
		m.Figures = []Entry{}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create manifest: %w", err)
	}
	tmpName := tmp.Name()

	// CreateTemp opens the file 0600 and Rename keeps the mode.
	if err := tmp.Chmod(manifestMode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to set manifest permissions: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to move manifest into place: %w", err)
	}
	return path, nil
}
