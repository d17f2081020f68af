package thumbnail

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/mwantia/mediarepo/data/errors"
	"github.com/mwantia/mediarepo/node"
)

const (
	DefaultMaxSize = 300
	DefaultQuality = 80
)

// Codec reads image dimensions and renders thumbnails.
type Codec interface {
	// Size returns the pixel dimensions of an encoded image.
	Size(content []byte) (uint32, uint32, error)

	// Thumbnail renders content into a bounded JPEG.
	Thumbnail(content []byte) ([]byte, error)
}

// ImagingCodec is the Codec built on disintegration/imaging.
type ImagingCodec struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

var _ Codec = (*ImagingCodec)(nil)

func NewImagingCodec() *ImagingCodec {
	return &ImagingCodec{
		MaxWidth:  DefaultMaxSize,
		MaxHeight: DefaultMaxSize,
		Quality:   DefaultQuality,
	}
}

func (c *ImagingCodec) Size(content []byte) (uint32, uint32, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return 0, 0, errors.ImageLoad(err)
	}

	return uint32(cfg.Width), uint32(cfg.Height), nil
}

// Thumbnail applies EXIF orientation, fits the image into MaxWidth x MaxHeight
// keeping its aspect ratio and encodes it as JPEG.
func (c *ImagingCodec) Thumbnail(content []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(content), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.ImageLoad(err)
	}

	thumb := imaging.Fit(img, c.MaxWidth, c.MaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(c.Quality)); err != nil {
		return nil, errors.ImageLoad(err)
	}

	return buf.Bytes(), nil
}

// Render reads origin and returns its thumbnail. The handle of origin is
// released on every path.
func Render(codec Codec, origin *node.File) ([]byte, error) {
	defer origin.Close()

	content, err := origin.ReadAll()
	if err != nil {
		return nil, err
	}

	return codec.Thumbnail(content)
}
