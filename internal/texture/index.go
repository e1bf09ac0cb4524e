package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// rank orders formats for the same stem: formats carrying alpha win.
var rank = map[string]int{".png": 4, ".tga": 3, ".webp": 2, ".jpg": 1, ".jpeg": 1}

// Index maps lowercase texture stems to filesystem paths.
type Index struct {
	entries map[string]string // stem.lower() → full path
}

// BuildIndex scans dir and its subdirectories for texture files.
func BuildIndex(dir string) *Index {
	idx := &Index{entries: make(map[string]string)}
	if dir == "" {
		return idx
	}

	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !Supported(path) {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

		existing, exists := idx.entries[stem]
		if !exists || rank[ext] > rank[strings.ToLower(filepath.Ext(existing))] {
			idx.entries[stem] = path
		}
		return nil
	})

	return idx
}

// ResolvePath returns the filesystem path for a texture name, or ("", false).
// Directory prefixes and extensions in texName are ignored.
func (idx *Index) ResolvePath(texName string) (string, bool) {
	texName = strings.ReplaceAll(texName, "\\", "/")
	base := filepath.Base(texName)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	path, ok := idx.entries[stem]
	return path, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}
