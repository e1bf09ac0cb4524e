// Package sink receives exported capture images.
package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"posecap/internal/logx"
)

// Sink receives one encoded export image per capture mode.
type Sink interface {
	SetScreenShot(mode string, data []byte, fileName string) error
}

// ManifestEntry represents one written image in the output manifest.
type ManifestEntry struct {
	Mode  string `json:"mode"`
	Name  string `json:"name"`
	Image string `json:"image"`
	Bytes int    `json:"bytes"`
}

// DirSink writes images into a directory as <fileName><ext>.
type DirSink struct {
	Dir    string
	Format Format

	mu      sync.Mutex
	entries []ManifestEntry
}

// NewDirSink creates dir if needed.
func NewDirSink(dir string, format Format) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("sink: create %s: %w", dir, err)
	}
	return &DirSink{Dir: dir, Format: format}, nil
}

func (s *DirSink) SetScreenShot(mode string, data []byte, fileName string) error {
	name := fileName + s.Format.Ext()
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("sink: write %s: %w", path, err)
	}

	s.mu.Lock()
	s.entries = append(s.entries, ManifestEntry{Mode: mode, Name: fileName, Image: name, Bytes: len(data)})
	s.mu.Unlock()

	logx.Logger().Info("sink: image written", "mode", mode, "path", path, "bytes", len(data))
	return nil
}

// Entries returns the images written so far, in write order.
func (s *DirSink) Entries() []ManifestEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ManifestEntry(nil), s.entries...)
}

// WriteManifest writes manifest.json next to the images and returns its path.
func (s *DirSink) WriteManifest() (string, error) {
	data, err := json.MarshalIndent(s.Entries(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("sink: manifest: %w", err)
	}
	path := filepath.Join(s.Dir, "manifest.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("sink: write %s: %w", path, err)
	}
	return path, nil
}

// Shot is one image received by a MemorySink.
type Shot struct {
	Mode     string
	Data     []byte
	FileName string
}

// MemorySink keeps images in memory.
type MemorySink struct {
	Shots []Shot
}

func (m *MemorySink) SetScreenShot(mode string, data []byte, fileName string) error {
	m.Shots = append(m.Shots, Shot{Mode: mode, Data: data, FileName: fileName})
	return nil
}
