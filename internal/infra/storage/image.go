package storage

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"github.com/lebarbier/lebarbier-api/internal/httperr"
)

const maxUploadBytes = 8 << 20

// ToWebP decodes a JPEG, PNG or WebP image, shrinks it to maxWidth keeping
// the aspect ratio, and re-encodes it as lossy WebP.
func ToWebP(raw []byte, maxWidth int, quality float32) ([]byte, error) {
	if len(raw) == 0 {
		return nil, httperr.Validation("empty_image", "Image vide.")
	}
	if len(raw) > maxUploadBytes {
		return nil, httperr.Validation("image_too_large", "Image trop volumineuse (8 Mo maximum).")
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &httperr.AppError{
			Kind:    httperr.KindValidation,
			Code:    "invalid_image",
			Message: "Format d'image non supporté.",
			Err:     err,
		}
	}

	img := Downscale(src, maxWidth)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: quality}); err != nil {
		return nil, errors.Wrap(err, "encode webp")
	}

	return buf.Bytes(), nil
}

// Downscale returns src unchanged when it already fits.
func Downscale(src image.Image, maxWidth int) image.Image {
	b := src.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return src
	}

	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	return dst
}
