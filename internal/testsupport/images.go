package testsupport

import (
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	imageSize = 128
	blockSize = 16
)

// NoiseImage renders a deterministic grayscale image made of 16px blocks whose
// levels come from seed. Inverted flips every level, which yields a
// perceptually opposite image with the same layout.
func NoiseImage(seed int64, inverted bool) *image.Gray {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, imageSize, imageSize))
	for by := 0; by < imageSize; by += blockSize {
		for bx := 0; bx < imageSize; bx += blockSize {
			level := uint8(rng.Intn(256))
			if inverted {
				level = 255 - level
			}
			for y := by; y < by+blockSize; y++ {
				for x := bx; x < bx+blockSize; x++ {
					img.SetGray(x, y, color.Gray{Y: level})
				}
			}
		}
	}
	return img
}

// WriteImage encodes NoiseImage(seed, inverted) to path, picking the encoder
// from the extension (.png, .jpg/.jpeg or .gif). padding appends trailing
// bytes after the encoded image so tests can control file sizes without
// changing pixels.
func WriteImage(t testing.TB, path string, seed int64, inverted bool, padding int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	img := NoiseImage(seed, inverted)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	case ".gif":
		err = gif.Encode(f, img, nil)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	if padding > 0 {
		if _, err := f.Write(make([]byte, padding)); err != nil {
			t.Fatalf("pad %s: %v", path, err)
		}
	}
}
