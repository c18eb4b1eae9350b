package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"
)

// Recording is an uploaded audio file saved on local disk
type Recording struct {
	ID        string
	Path      string
	Filename  string // original client filename
	Size      int64  // file size in bytes
	CreatedAt time.Time
}

// AudioStore saves uploaded audio under a single directory
type AudioStore struct {
	dir string
}

func NewAudioStore(dir string) *AudioStore {
	return &AudioStore{dir: dir}
}

// SaveAudio saves an uploaded multipart file
func (s *AudioStore) SaveAudio(file *multipart.FileHeader) (*Recording, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()
	return s.Save(file.Filename, src)
}

// Save copies r into a new file named after filename
func (s *AudioStore) Save(filename string, r io.Reader) (*Recording, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}

	now := time.Now()
	id := fmt.Sprintf("rec_%d", now.UnixNano())
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) {
		base = "recording.m4a"
	}
	dst := filepath.Join(s.dir, id+"_"+base)

	out, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	size, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &Recording{
		ID:        id,
		Path:      dst,
		Filename:  base,
		Size:      size,
		CreatedAt: now,
	}, nil
}
