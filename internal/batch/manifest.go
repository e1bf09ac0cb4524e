package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
)

// ManifestEntry represents one exported pose in the batch manifest.
type ManifestEntry struct {
	Pose    string   `json:"pose"`
	Dir     string   `json:"dir"`
	Images  []string `json:"images"`
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
}

// WriteManifest writes the batch manifest.json. Image paths are relative to
// the manifest and use forward slashes.
func WriteManifest(file string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		images := make([]string, len(r.Images))
		for j, img := range r.Images {
			images[j] = path.Join(r.Dir, img.Image)
		}
		entries[i] = ManifestEntry{
			Pose:    r.Name,
			Dir:     r.Dir,
			Images:  images,
			Success: r.Success,
			Error:   r.Error,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: manifest: %w", err)
	}
	if err := os.WriteFile(file, data, 0644); err != nil {
		return fmt.Errorf("batch: write %s: %w", file, err)
	}
	return nil
}
