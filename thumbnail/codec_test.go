package thumbnail_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/mwantia/mediarepo/data"
	mediaerrors "github.com/mwantia/mediarepo/data/errors"
	"github.com/mwantia/mediarepo/node"
	"github.com/mwantia/mediarepo/thumbnail"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestImagingCodec_Size(t *testing.T) {
	codec := thumbnail.NewImagingCodec()

	w, h, err := codec.Size(encodePNG(t, 64, 32))
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if w != 64 || h != 32 {
		t.Errorf("Expected 64x32, got %dx%d", w, h)
	}

	if _, _, err := codec.Size([]byte("not an image")); !errors.Is(err, mediaerrors.ErrImageLoad) {
		t.Errorf("Expected ErrImageLoad, got %v", err)
	}
}

// TestImagingCodec_Thumbnail verifies bounded JPEG output with the aspect ratio kept.
func TestImagingCodec_Thumbnail(t *testing.T) {
	codec := thumbnail.NewImagingCodec()

	thumb, err := codec.Thumbnail(encodePNG(t, 600, 300))
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}

	ct, err := data.Sniff(thumb)
	if err != nil || ct != data.ContentTypeThumbnail {
		t.Fatalf("Expected JPEG output, got %v (%v)", ct, err)
	}

	w, h, err := codec.Size(thumb)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if w != 300 || h != 150 {
		t.Errorf("Expected 300x150, got %dx%d", w, h)
	}
}

func TestRender(t *testing.T) {
	root := node.ParseDir(t.TempDir())
	origin := root.To("origin", data.ContentTypePNG)
	if _, err := origin.Write(encodePNG(t, 40, 40)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	thumb, err := thumbnail.Render(thumbnail.NewImagingCodec(), origin)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if ct, err := data.Sniff(thumb); err != nil || ct != data.ContentTypeThumbnail {
		t.Errorf("Expected JPEG output, got %v (%v)", ct, err)
	}

	t.Run("DecodeFailure", func(tst *testing.T) {
		broken := root.To("broken", data.ContentTypePNG)
		if _, err := broken.Write([]byte("not an image")); err != nil {
			tst.Fatalf("Write failed: %v", err)
		}

		if _, err := thumbnail.Render(thumbnail.NewImagingCodec(), broken); !errors.Is(err, mediaerrors.ErrImageLoad) {
			tst.Errorf("Expected ErrImageLoad, got %v", err)
		}
	})

	// The descriptor opened for a failed read must not survive: once the
	// directory is replaced by a file, a fresh read has to see the file.
	t.Run("ReadFailure", func(tst *testing.T) {
		origin := root.To("folder", data.ContentTypePNG)
		if err := os.Mkdir(origin.AbsolutePath(), 0o755); err != nil {
			tst.Fatalf("Mkdir failed: %v", err)
		}

		if _, err := thumbnail.Render(thumbnail.NewImagingCodec(), origin); !errors.Is(err, mediaerrors.ErrDirectory) {
			tst.Fatalf("Expected ErrDirectory, got %v", err)
		}

		if err := os.Remove(origin.AbsolutePath()); err != nil {
			tst.Fatalf("Remove failed: %v", err)
		}
		if err := os.WriteFile(origin.AbsolutePath(), []byte("replaced"), 0o644); err != nil {
			tst.Fatalf("WriteFile failed: %v", err)
		}

		got, err := origin.ReadLeft()
		if err != nil {
			tst.Fatalf("ReadLeft failed: %v", err)
		}
		if string(got) != "replaced" {
			tst.Errorf("Expected a fresh read of the new file, got %q", got)
		}
	})
}
