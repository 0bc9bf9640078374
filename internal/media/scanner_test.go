package media

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScannerListImages(t *testing.T) {
	dir := t.TempDir()

	files := []string{"b.JPG", "a.png", "c.webp", "notes.txt", ".hidden.jpg", "d.tiff"}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.jpg"), 0o755); err != nil {
		t.Fatal(err)
	}

	images, err := NewScanner(dir).ListImages()
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}

	want := []string{"a.png", "b.JPG", "c.webp", "d.tiff"}
	if len(images) != len(want) {
		t.Fatalf("got %d images, want %d: %+v", len(images), len(want), images)
	}
	for i, name := range want {
		if images[i].Name != name {
			t.Errorf("images[%d] = %s, want %s", i, images[i].Name, name)
		}
		if images[i].Path != filepath.Join(dir, name) {
			t.Errorf("images[%d].Path = %s", i, images[i].Path)
		}
	}
}

func TestScannerListImages_MissingDir(t *testing.T) {
	_, err := NewScanner(filepath.Join(t.TempDir(), "nope")).ListImages()
	if !os.IsNotExist(err) {
		t.Errorf("err = %v, want not-exist", err)
	}
}
