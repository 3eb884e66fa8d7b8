package fingerprint

import (
	"errors"
	"fmt"
	"image"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp" // WebP format support
)

// ErrDecode marks failures to open or decode an image file.
var ErrDecode = errors.New("decode image")

// Fingerprinter produces a fingerprint for an image file.
type Fingerprinter interface {
	Fingerprint(path string) (Hash, error)
}

// PerceptualHasher decodes images with EXIF auto-orientation and computes a
// 64-bit DCT perceptual hash.
type PerceptualHasher struct{}

// NewPerceptualHasher returns the default image fingerprinter.
func NewPerceptualHasher() *PerceptualHasher {
	return &PerceptualHasher{}
}

// Fingerprint decodes path and hashes the decoded pixels.
func (PerceptualHasher) Fingerprint(path string) (Hash, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return 0, fmt.Errorf("%w %s: %w", ErrDecode, path, err)
	}
	return HashImage(img)
}

// HashImage computes the perceptual hash of an already decoded image.
func HashImage(img image.Image) (Hash, error) {
	if img == nil {
		return 0, errors.New("hash image: nil image")
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return 0, fmt.Errorf("hash image: empty bounds %v", bounds)
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return 0, fmt.Errorf("perception hash: %w", err)
	}
	return Hash(hash.GetHash()), nil
}
