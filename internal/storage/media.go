package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

// MediaKind is the role an uploaded file plays on a property.
type MediaKind string

const (
	MediaImage    MediaKind = "images"
	MediaVideo    MediaKind = "video"
	MediaBrochure MediaKind = "brochure"
)

// ErrUnsupportedMedia is returned when the sniffed content type does not fit the media kind.
var ErrUnsupportedMedia = errors.New("unsupported media type")

// Prepare sniffs data, checks it against kind and returns a blob with a fresh
// unique key. Images larger than maxDimension on either side are downscaled
// and re-encoded as JPEG.
func Prepare(kind MediaKind, filename string, data []byte, maxDimension int) (Blob, error) {
	mt := mimetype.Detect(data)
	if !allowed(kind, mt) {
		return Blob{}, fmt.Errorf("%w: %s is not accepted for %s", ErrUnsupportedMedia, mt.String(), kind)
	}

	contentType := mt.String()
	ext := mt.Extension()
	if kind == MediaImage && maxDimension > 0 {
		normalized, changed, err := NormalizeImage(data, uint(maxDimension))
		if err != nil {
			return Blob{}, err
		}
		if changed {
			data = normalized
			contentType = "image/jpeg"
			ext = ".jpg"
		}
	}
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(filename))
	}
	return Blob{Key: uuid.NewString() + ext, ContentType: contentType, Data: data}, nil
}

func allowed(kind MediaKind, mt *mimetype.MIME) bool {
	switch kind {
	case MediaImage:
		return strings.HasPrefix(mt.String(), "image/")
	case MediaVideo:
		return strings.HasPrefix(mt.String(), "video/")
	case MediaBrochure:
		return mt.Is("application/pdf")
	}
	return false
}

// maxPixelFactor bounds decodable images to maxDimension² × maxPixelFactor pixels.
const maxPixelFactor = 16

// NormalizeImage shrinks images whose width or height exceeds maxDimension,
// keeping the aspect ratio. It reports whether the image was re-encoded.
// Formats the standard decoders cannot read are passed through unchanged.
// Headers claiming more pixels than the decode budget are rejected before any
// pixel buffer is allocated.
func NormalizeImage(data []byte, maxDimension uint) ([]byte, bool, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return data, false, nil
	}
	budget := uint64(maxDimension) * uint64(maxDimension) * maxPixelFactor
	if uint64(cfg.Width)*uint64(cfg.Height) > budget {
		return nil, false, fmt.Errorf("%w: image is %dx%d pixels", ErrUnsupportedMedia, cfg.Width, cfg.Height)
	}
	if uint(cfg.Width) <= maxDimension && uint(cfg.Height) <= maxDimension {
		return data, false, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("%w: corrupt image: %v", ErrUnsupportedMedia, err)
	}
	resized := resize.Thumbnail(maxDimension, maxDimension, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return nil, false, fmt.Errorf("failed to re-encode resized image: %w", err)
	}
	return buf.Bytes(), true, nil
}
