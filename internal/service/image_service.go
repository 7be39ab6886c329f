// Package service contains the business logic layer between handlers and repositories.
package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inkwell/internal/observability"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// EncodeQuality is used for lossy formats (JPEG, WebP). PNG and GIF are
// re-encoded losslessly.
const EncodeQuality = 85

// ErrDecode is returned when the source image cannot be decoded or decodes to
// a format with no encoder. The call produces no variants in that case.
var ErrDecode = errors.New("source image could not be decoded")

// FitMode governs how a source image is mapped into a target bounding box.
type FitMode string

const (
	// FitContain scales down to fit within the box preserving aspect ratio,
	// without cropping. Never upsamples.
	FitContain FitMode = "contain"
	// FitCover scales and center-crops to exactly fill the box.
	FitCover FitMode = "cover"
	// FitFill forces both dimensions, disregarding aspect ratio.
	FitFill FitMode = "fill"
)

// SizeSpec names a derived rendition. A spec with both dimensions zero means
// "pass through the original, unresized". With a single dimension, scaling is
// proportional and down-only.
type SizeSpec struct {
	Width  int
	Height int
	Fit    FitMode
}

// DefaultSizeSpecs is the named size set attached to every upload.
func DefaultSizeSpecs() map[string]SizeSpec {
	return map[string]SizeSpec{
		"thumbnail": {Width: 150, Height: 150, Fit: FitContain},
		"small":     {Width: 300, Height: 200, Fit: FitContain},
		"medium":    {Width: 600, Height: 400, Fit: FitContain},
		"large":     {Width: 1200, Height: 800, Fit: FitContain},
		"featured":  {Width: 800, Height: 400, Fit: FitCover},
	}
}

// VariantMeta mirrors models.VariantMeta but lives here so the generator has
// no dependency on the persistence layer.
type VariantMeta struct {
	Path   string `json:"path"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bytes  int64  `json:"bytes"`
}

// ImageService derives named renditions of an uploaded image and persists
// each to the upload directory.
type ImageService struct {
	uploadDir string
	baseURL   string
}

// NewImageService creates an image service writing below uploadDir and
// building public URLs below baseURL.
func NewImageService(uploadDir, baseURL string) *ImageService {
	return &ImageService{
		uploadDir: uploadDir,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
	}
}

// GenerateVariants decodes the source once and produces one encoded output
// per named spec, plus the unresized "original" entry. If the source cannot
// be decoded the whole call fails with ErrDecode and writes nothing.
//
// Storage writes are independent per variant: on a write failure the returned
// map still reports every variant that was persisted, alongside the error
// (best-effort policy). Callers that want all-or-nothing pass the partial
// map's paths to Delete.
func (s *ImageService) GenerateVariants(source []byte, baseName string, specs map[string]SizeSpec) (map[string]VariantMeta, error) {
	decoded, decodedFormat, err := image.Decode(bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	// The decoded content decides the codec; the file extension is only a
	// name. A PNG uploaded as photo.bin still comes out as PNG.
	format := normalizeExt(decodedFormat)
	if format == "" {
		return nil, fmt.Errorf("%w: no encoder for format %q", ErrDecode, decodedFormat)
	}

	dir := strings.TrimSuffix(filepath.Base(baseName), filepath.Ext(baseName))
	results := make(map[string]VariantMeta, len(specs)+1)

	// The original rides along unresized, byte-for-byte.
	b := decoded.Bounds()
	originalRel := filepath.ToSlash(filepath.Join(dir, "original."+format))
	if err := s.writeFile(originalRel, source); err != nil {
		return results, err
	}
	results["original"] = VariantMeta{
		Path:   originalRel,
		URL:    s.publicURL(originalRel),
		Width:  b.Dx(),
		Height: b.Dy(),
		Bytes:  int64(len(source)),
	}

	for name, spec := range specs {
		if name == "original" {
			continue
		}
		start := time.Now()

		resized := Resize(decoded, spec)
		encoded, encodeErr := encode(resized, format)
		if encodeErr != nil {
			return results, fmt.Errorf("encode %s: %w", name, encodeErr)
		}

		rel := filepath.ToSlash(filepath.Join(dir, name+"."+format))
		if writeErr := s.writeFile(rel, encoded); writeErr != nil {
			return results, fmt.Errorf("write %s: %w", name, writeErr)
		}

		rb := resized.Bounds()
		results[name] = VariantMeta{
			Path:   rel,
			URL:    s.publicURL(rel),
			Width:  rb.Dx(),
			Height: rb.Dy(),
			Bytes:  int64(len(encoded)),
		}
		observability.ImageVariantDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}

	return results, nil
}

// Delete removes the primary stored file and every derived-variant file.
// Removals are independent and a missing file is not an error, so the call is
// idempotent.
func (s *ImageService) Delete(primaryPath string, variantPaths []string) error {
	paths := append([]string{primaryPath}, variantPaths...)
	var firstErr error
	for _, rel := range paths {
		if rel == "" {
			continue
		}
		err := os.Remove(filepath.Join(s.uploadDir, filepath.FromSlash(rel)))
		if err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Resize maps src into the spec's bounding box according to its fit mode.
func Resize(src image.Image, spec SizeSpec) image.Image {
	if spec.Width <= 0 && spec.Height <= 0 {
		return src
	}

	switch spec.Fit {
	case FitCover:
		return resizeCover(src, spec.Width, spec.Height)
	case FitFill:
		return resizeFill(src, spec.Width, spec.Height)
	default:
		return resizeContain(src, spec.Width, spec.Height)
	}
}

// resizeContain scales down to fit within the box preserving aspect ratio.
// Never upsamples: a source already inside the box passes through.
func resizeContain(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}

	scale := 1.0
	if maxWidth > 0 && w > maxWidth {
		scale = float64(maxWidth) / float64(w)
	}
	if maxHeight > 0 && h > maxHeight {
		if s := float64(maxHeight) / float64(h); s < scale {
			scale = s
		}
	}
	if scale >= 1.0 {
		return src
	}

	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	return scaleTo(src, newW, newH)
}

// resizeCover scales so the box is fully covered, then center-crops to
// exactly the box.
func resizeCover(src image.Image, width, height int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || width <= 0 || height <= 0 {
		return src
	}

	scaleW := float64(width) / float64(w)
	scaleH := float64(height) / float64(h)
	scale := scaleW
	if scaleH > scale {
		scale = scaleH
	}

	scaledW := int(float64(w)*scale + 0.5)
	scaledH := int(float64(h)*scale + 0.5)
	if scaledW < width {
		scaledW = width
	}
	if scaledH < height {
		scaledH = height
	}
	scaled := scaleTo(src, scaledW, scaledH)

	x := (scaledW - width) / 2
	y := (scaledH - height) / 2
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.Copy(dst, image.Point{}, scaled, image.Rect(x, y, x+width, y+height), xdraw.Src, nil)
	return dst
}

// resizeFill forces both dimensions disregarding aspect ratio.
func resizeFill(src image.Image, width, height int) image.Image {
	if width <= 0 || height <= 0 {
		return src
	}
	return scaleTo(src, width, height)
}

func scaleTo(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

func encode(img image.Image, format string) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	switch format {
	case "jpeg":
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: EncodeQuality}); err != nil {
			return nil, err
		}
	case "webp":
		if err := webp.Encode(buf, img, &webp.Options{Quality: float32(EncodeQuality)}); err != nil {
			return nil, err
		}
	case "png":
		if err := png.Encode(buf, img); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(buf, img, nil); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	return buf.Bytes(), nil
}

// normalizeExt maps a decoder-reported format name to the encoder set,
// normalizing jpg to jpeg.
func normalizeExt(ext string) string {
	switch strings.ToLower(strings.TrimSpace(ext)) {
	case "jpg", "jpeg":
		return "jpeg"
	case "png":
		return "png"
	case "gif":
		return "gif"
	case "webp":
		return "webp"
	default:
		return ""
	}
}

func (s *ImageService) publicURL(rel string) string {
	return s.baseURL + "/" + rel
}

func (s *ImageService) writeFile(rel string, data []byte) error {
	path := filepath.Join(s.uploadDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
