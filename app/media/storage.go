// Package media stores uploaded post images on the local filesystem.
package media

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// UploadDir is the directory under the media root where post images live.
const UploadDir = "posts"

// MaxPathLength bounds the stored relative path in runes, the size of the
// post image column.
const MaxPathLength = 100

const (
	maxNameBytes = 255
	maxExtRunes  = 16
)

// Upload is a file received from a multipart form.
type Upload struct {
	Filename string
	Data     []byte
}

// Storage writes uploads below Root and hands back paths relative to it.
type Storage struct {
	Root string
}

func NewStorage(root string) *Storage {
	return &Storage{Root: root}
}

// Save writes the upload as posts/<name>. When the name is taken a short
// random suffix is added before the extension.
func (s *Storage) Save(upload *Upload) (string, error) {
	if upload == nil || len(upload.Data) == 0 {
		return "", errors.New("empty upload")
	}

	dir := filepath.Join(s.Root, UploadDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := cleanName(upload.Filename)
	for attempt := 0; ; attempt++ {
		suffix := ""
		if attempt > 0 {
			suffix = "_" + uuid.NewString()[:7]
		}
		candidate := fitName(name, suffix)

		f, err := os.OpenFile(filepath.Join(dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) && attempt < 10 {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", candidate, err)
		}

		if _, err := f.Write(upload.Data); err != nil {
			f.Close()
			return "", fmt.Errorf("write %s: %w", candidate, err)
		}
		if err := f.Close(); err != nil {
			return "", err
		}
		return path.Join(UploadDir, candidate), nil
	}
}

// Delete removes a stored file. A missing file is not an error.
func (s *Storage) Delete(name string) error {
	if name == "" {
		return nil
	}
	if err := os.Remove(s.Path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Path resolves a stored relative name to a filesystem path.
func (s *Storage) Path(name string) string {
	return filepath.Join(s.Root, filepath.FromSlash(name))
}

// cleanName strips directories and characters that do not belong in a file name.
func cleanName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r == '/' || r == 0 || r < 32:
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "image"
	}
	return name
}

// fitName joins name and suffix, shortening the root so that
// posts/<result> stays within MaxPathLength runes and the file name within
// the filesystem's byte limit.
func fitName(name, suffix string) string {
	ext := filepath.Ext(name)
	root := []rune(strings.TrimSuffix(name, ext))
	if utf8.RuneCountInString(ext) > maxExtRunes {
		root = []rune(name)
		ext = ""
	}

	limit := MaxPathLength - utf8.RuneCountInString(UploadDir) - 1
	tail := suffix + ext
	for len(root) > 0 &&
		(len(root)+utf8.RuneCountInString(tail) > limit || len(string(root))+len(tail) > maxNameBytes) {
		root = root[:len(root)-1]
	}
	if len(root) == 0 {
		return "image" + tail
	}
	return string(root) + tail
}
