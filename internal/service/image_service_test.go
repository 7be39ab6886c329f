package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodePNG renders a solid test image of the given dimensions.
func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeDims(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestGenerateVariants_DefaultSizeSet(t *testing.T) {
	dir := t.TempDir()
	svc := NewImageService(dir, "/media")

	source := encodePNG(t, 1000, 500)
	variants, err := svc.GenerateVariants(source, "photo.png", DefaultSizeSpecs())
	require.NoError(t, err)

	// Original rides along unresized.
	original, ok := variants["original"]
	require.True(t, ok)
	assert.Equal(t, 1000, original.Width)
	assert.Equal(t, 500, original.Height)
	assert.Equal(t, int64(len(source)), original.Bytes)

	// Contain preserves aspect ratio: 1000x500 into 150x150 lands at 150x75.
	thumb := variants["thumbnail"]
	assert.Equal(t, 150, thumb.Width)
	assert.Equal(t, 75, thumb.Height)

	// Cover fills the box exactly.
	featured := variants["featured"]
	assert.Equal(t, 800, featured.Width)
	assert.Equal(t, 400, featured.Height)

	// Already inside the large box: no upsampling.
	large := variants["large"]
	assert.Equal(t, 1000, large.Width)
	assert.Equal(t, 500, large.Height)

	// Every variant landed on disk with the reported dimensions and a URL
	// under the public base.
	for name, v := range variants {
		full := filepath.Join(dir, filepath.FromSlash(v.Path))
		w, h := decodeDims(t, full)
		assert.Equal(t, v.Width, w, "variant %s width", name)
		assert.Equal(t, v.Height, h, "variant %s height", name)
		assert.Equal(t, "/media/"+v.Path, v.URL)
	}
}

func TestGenerateVariants_JPGNormalizedToJPEG(t *testing.T) {
	dir := t.TempDir()
	svc := NewImageService(dir, "/media")

	// Content detection wins: a PNG uploaded as .jpg is stored as png.
	variants, err := svc.GenerateVariants(encodePNG(t, 64, 64), "shot.jpg", map[string]SizeSpec{
		"thumbnail": {Width: 32, Height: 32, Fit: FitContain},
	})
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(variants["thumbnail"].Path))
}

func TestGenerateVariants_UndecodableSource(t *testing.T) {
	dir := t.TempDir()
	svc := NewImageService(dir, "/media")

	variants, err := svc.GenerateVariants([]byte("not an image"), "broken.png", DefaultSizeSpecs())
	assert.ErrorIs(t, err, ErrDecode)
	assert.Nil(t, variants)

	// Nothing was written.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateVariants_ExtensionIsOnlyAName(t *testing.T) {
	dir := t.TempDir()
	svc := NewImageService(dir, "/media")

	// A decodable image under a meaningless extension still works; the
	// decoded content decides the stored codec.
	variants, err := svc.GenerateVariants(encodePNG(t, 64, 64), "photo.bin", map[string]SizeSpec{
		"thumbnail": {Width: 32, Height: 32, Fit: FitContain},
	})
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(variants["original"].Path))
	assert.Equal(t, ".png", filepath.Ext(variants["thumbnail"].Path))

	// Garbage under a known extension is still a decode error.
	_, err = svc.GenerateVariants([]byte("garbage"), "file.bmp", DefaultSizeSpecs())
	assert.ErrorIs(t, err, ErrDecode)
}

func TestResize_Geometry(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1000, 500))

	tests := []struct {
		name           string
		spec           SizeSpec
		wantW, wantH   int
	}{
		{"contain scales down", SizeSpec{Width: 150, Height: 150, Fit: FitContain}, 150, 75},
		{"contain never upsamples", SizeSpec{Width: 2000, Height: 2000, Fit: FitContain}, 1000, 500},
		{"contain width only", SizeSpec{Width: 500, Fit: FitContain}, 500, 250},
		{"cover fills exactly", SizeSpec{Width: 800, Height: 400, Fit: FitCover}, 800, 400},
		{"cover crops the narrow axis", SizeSpec{Width: 300, Height: 300, Fit: FitCover}, 300, 300},
		{"fill ignores aspect ratio", SizeSpec{Width: 200, Height: 300, Fit: FitFill}, 200, 300},
		{"zero spec passes through", SizeSpec{}, 1000, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Resize(src, tt.spec)
			b := out.Bounds()
			assert.Equal(t, tt.wantW, b.Dx())
			assert.Equal(t, tt.wantH, b.Dy())
		})
	}
}

func TestDelete_Idempotent(t *testing.T) {
	dir := t.TempDir()
	svc := NewImageService(dir, "/media")

	variants, err := svc.GenerateVariants(encodePNG(t, 100, 100), "gone.png", map[string]SizeSpec{
		"thumbnail": {Width: 50, Height: 50, Fit: FitContain},
	})
	require.NoError(t, err)

	primary := variants["original"].Path
	require.NoError(t, svc.Delete(primary, []string{variants["thumbnail"].Path}))

	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(primary)))
	assert.True(t, os.IsNotExist(err))

	// Deleting again is a no-op, not an error.
	assert.NoError(t, svc.Delete(primary, []string{variants["thumbnail"].Path}))
}
