// Package imaging decodes, resizes, and re-encodes raster images for
// the responsive-images stage.
package imaging

import (
	"bytes"
	"fmt"
	"strings"

	img "github.com/disintegration/imaging"
	"github.com/gen2brain/webp"
)

// ErrUnsupportedFormat is returned when a requested output format has
// no encoder. Callers degrade to the original image.
var ErrUnsupportedFormat = fmt.Errorf("unsupported output format")

// Options selects an output variant.
type Options struct {
	// Format is the output encoding: webp, jpg, jpeg, png, or gif.
	Format string
	// Width is the target width in pixels. Images are never upscaled;
	// a width at or beyond the source width keeps the source size.
	Width int
	// Quality applies to lossy formats, 1-100.
	Quality int
}

// Variant is one encoded output.
type Variant struct {
	Data   []byte
	Width  int
	Height int
	Format string
}

// Codec produces resized image variants.
type Codec struct{}

// NewCodec returns a Codec.
func NewCodec() *Codec { return &Codec{} }

var magicPrefixes = []struct {
	offset int
	prefix []byte
}{
	{0, []byte{0xFF, 0xD8, 0xFF}},      // JPEG
	{0, []byte("\x89PNG\r\n\x1a\n")},   // PNG
	{0, []byte("GIF87a")},              // GIF
	{0, []byte("GIF89a")},              // GIF
	{8, []byte("WEBP")},                // RIFF....WEBP
}

// IsSupported reports whether the bytes look like a decodable image,
// by sniffing JPEG, PNG, GIF, and WebP magic numbers.
func IsSupported(data []byte) bool {
	for _, m := range magicPrefixes {
		end := m.offset + len(m.prefix)
		if len(data) >= end && bytes.Equal(data[m.offset:end], m.prefix) {
			return true
		}
	}
	return false
}

// IsSupported reports whether the codec can decode the bytes.
func (c *Codec) IsSupported(data []byte) bool { return IsSupported(data) }

// Process decodes the source bytes, resizes to the requested width
// preserving aspect ratio, and encodes in the requested format. The
// returned variant carries the actual output dimensions.
func (c *Codec) Process(data []byte, opts Options) (*Variant, error) {
	src, err := img.Decode(bytes.NewReader(data), img.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	out := src
	width, height := bounds.Dx(), bounds.Dy()
	if opts.Width > 0 && opts.Width < width {
		out = img.Resize(src, opts.Width, 0, img.Lanczos)
		b := out.Bounds()
		width, height = b.Dx(), b.Dy()
	}

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 80
	}

	var buf bytes.Buffer
	format := strings.ToLower(opts.Format)
	switch format {
	case "webp":
		err = webp.Encode(&buf, out, webp.Options{Quality: quality})
	case "jpg", "jpeg":
		err = img.Encode(&buf, out, img.JPEG, img.JPEGQuality(quality))
	case "png":
		err = img.Encode(&buf, out, img.PNG)
	case "gif":
		err = img.Encode(&buf, out, img.GIF)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, opts.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}

	return &Variant{Data: buf.Bytes(), Width: width, Height: height, Format: format}, nil
}
