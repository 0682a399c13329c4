package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// Images and audio clips stay small; video and generic files get more room.
	maxImageAudioSize = 5 * 1024 * 1024
	maxVideoFileSize  = 10 * 1024 * 1024
)

var allowedTypes = map[string]map[string]bool{
	"image": {
		"image/jpeg": true, "image/jpg": true, "image/png": true,
		"image/gif": true, "image/webp": true,
	},
	"audio": {
		"audio/webm": true, "audio/ogg": true, "audio/mp3": true,
		"audio/mpeg": true, "audio/wav": true,
	},
	"video": {
		"video/mp4": true, "video/webm": true, "video/quicktime": true,
	},
	"file": {
		"application/pdf":    true,
		"application/msword": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
		"application/vnd.ms-excel": true,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
		"text/plain": true,
		"image/jpeg": true, "image/jpg": true, "image/png": true, "image/gif": true,
	},
}

type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func ValidKind(kind string) bool {
	_, ok := allowedTypes[kind]
	return ok
}

func sizeLimit(kind string) int64 {
	if kind == "image" || kind == "audio" {
		return maxImageAudioSize
	}
	return maxVideoFileSize
}

// SizeLimit exposes the per-kind ceiling so handlers can bound multipart reads.
func SizeLimit(kind string) int64 { return sizeLimit(kind) }

func Allowed(kind, contentType string) bool {
	types, ok := allowedTypes[kind]
	if !ok {
		return false
	}
	return types[strings.ToLower(contentType)]
}

var extCleaner = regexp.MustCompile(`[^a-z0-9]`)

// sanitizeExt strips anything that could smuggle a path out of the original
// filename's extension.
func sanitizeExt(originalName string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	ext = extCleaner.ReplaceAllString(ext, "")
	if len(ext) > 10 {
		ext = ext[:10]
	}
	if ext == "" {
		ext = "bin"
	}
	return ext
}

// Save writes the declared media kind to disk and returns the serving path.
// Size and type must already be validated by the caller against Allowed and
// SizeLimit; Save re-checks the hard ceiling while copying.
func (s *Store) Save(kind, originalName string, r io.Reader) (urlPath, storedName string, size int64, err error) {
	if !ValidKind(kind) {
		return "", "", 0, fmt.Errorf("unknown upload kind %q", kind)
	}

	dir := filepath.Join(s.dir, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", 0, err
	}

	storedName = fmt.Sprintf("%d-%s.%s", time.Now().UnixMilli(), uuid.NewString(), sanitizeExt(originalName))
	path := filepath.Join(dir, storedName)

	f, err := os.Create(path)
	if err != nil {
		return "", "", 0, err
	}
	defer f.Close()

	limit := sizeLimit(kind)
	size, err = io.Copy(f, io.LimitReader(r, limit+1))
	if err != nil {
		_ = os.Remove(path)
		return "", "", 0, err
	}
	if size > limit {
		_ = os.Remove(path)
		return "", "", 0, fmt.Errorf("file exceeds %d byte limit for %s", limit, kind)
	}

	return fmt.Sprintf("/uploads/%s/%s", kind, storedName), storedName, size, nil
}

var storedNamePattern = regexp.MustCompile(`^[0-9]+-[0-9a-f-]+\.[a-z0-9]+$`)

// Resolve maps a kind/filename pair back to a disk path, rejecting anything
// that does not look like a name Save generated.
func (s *Store) Resolve(kind, filename string) (string, error) {
	if !ValidKind(kind) {
		return "", fmt.Errorf("unknown upload kind %q", kind)
	}
	if !storedNamePattern.MatchString(filename) {
		return "", fmt.Errorf("invalid stored filename %q", filename)
	}
	path := filepath.Join(s.dir, kind, filename)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}
