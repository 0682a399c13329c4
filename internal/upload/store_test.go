package upload

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestSaveAndResolve(t *testing.T) {
	store := NewStore(t.TempDir())

	urlPath, storedName, size, err := store.Save("image", "photo.JPG", bytes.NewReader([]byte("fake-jpeg")))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != int64(len("fake-jpeg")) {
		t.Fatalf("size = %d", size)
	}
	if !strings.HasPrefix(urlPath, "/uploads/image/") {
		t.Fatalf("url = %q", urlPath)
	}
	if !strings.HasSuffix(storedName, ".jpg") {
		t.Fatalf("expected lowercased extension, got %q", storedName)
	}

	path, err := store.Resolve("image", storedName)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(b) != "fake-jpeg" {
		t.Fatalf("content mismatch: %q", b)
	}
}

func TestSaveSanitizesHostileExtension(t *testing.T) {
	store := NewStore(t.TempDir())

	_, storedName, _, err := store.Save("file", "evil.../../passwd", bytes.NewReader([]byte("x")))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if strings.ContainsAny(storedName, "/\\") {
		t.Fatalf("stored name contains path separators: %q", storedName)
	}
	if !strings.HasSuffix(storedName, ".bin") {
		// No usable extension survives sanitization, so the fallback applies.
		t.Fatalf("unexpected sanitized name %q", storedName)
	}
}

func TestSaveEnforcesSizeCeiling(t *testing.T) {
	store := NewStore(t.TempDir())

	big := bytes.Repeat([]byte("a"), int(maxImageAudioSize)+1)
	if _, _, _, err := store.Save("image", "big.png", bytes.NewReader(big)); err == nil {
		t.Fatalf("expected size ceiling error")
	}

	// The same payload fits under the video/file ceiling.
	if _, _, _, err := store.Save("video", "clip.mp4", bytes.NewReader(big)); err != nil {
		t.Fatalf("video save: %v", err)
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	store := NewStore(t.TempDir())

	if _, err := store.Resolve("image", "../secret"); err == nil {
		t.Fatalf("expected traversal rejection")
	}
	if _, err := store.Resolve("image", "nope.png"); err == nil {
		t.Fatalf("expected rejection of non-generated name")
	}
	if _, err := store.Resolve("weird", "1-a.png"); err == nil {
		t.Fatalf("expected rejection of unknown kind")
	}
}

func TestAllowedTypes(t *testing.T) {
	if !Allowed("image", "image/png") {
		t.Fatalf("png should be allowed for images")
	}
	if Allowed("image", "application/pdf") {
		t.Fatalf("pdf must not be allowed for images")
	}
	if !Allowed("file", "application/pdf") {
		t.Fatalf("pdf should be allowed for files")
	}
	if Allowed("audio", "video/mp4") {
		t.Fatalf("mp4 must not be allowed for audio")
	}
}
