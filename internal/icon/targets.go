package icon

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"

	"github.com/sanyoog/retro-cam/internal/paths"
)

// DefaultResDir is the Android resource directory, relative to the
// repository root.
const DefaultResDir = "app/src/main/res"

// Density is an Android launcher density bucket.
type Density struct {
	Name string
	Size int
}

// Densities lists the launcher icon buckets from mdpi to xxxhdpi.
var Densities = []Density{
	{"mdpi", 48},
	{"hdpi", 72},
	{"xhdpi", 96},
	{"xxhdpi", 144},
	{"xxxhdpi", 192},
}

// Variants are the launcher icon file names. The round variant is drawn
// the same as the square one.
var Variants = []string{"ic_launcher", "ic_launcher_round"}

// Target is one icon file to generate.
type Target struct {
	Size int
	Path string
}

// Result reports a written icon.
type Result struct {
	Target
	Bytes int
}

// Targets returns every variant at every density under resDir, square
// icons first.
func Targets(resDir string) []Target {
	if resDir == "" {
		resDir = DefaultResDir
	}
	out := make([]Target, 0, len(Densities)*len(Variants))
	for _, v := range Variants {
		for _, d := range Densities {
			out = append(out, Target{
				Size: d.Size,
				Path: filepath.Join(resDir, "mipmap-"+d.Name, v+".png"),
			})
		}
	}
	return out
}

// FilterSizes keeps only targets whose size is listed. An empty list
// keeps everything.
func FilterSizes(targets []Target, sizes []int) []Target {
	if len(sizes) == 0 {
		return targets
	}
	want := make(map[int]bool, len(sizes))
	for _, s := range sizes {
		want[s] = true
	}
	out := make([]Target, 0, len(targets))
	for _, t := range targets {
		if want[t.Size] {
			out = append(out, t)
		}
	}
	return out
}

// Encode returns the PNG encoding of img.
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write PNG-encodes img to path atomically, creating parent directories.
// It returns the number of bytes written.
func Write(path string, img image.Image) (int, error) {
	data, err := Encode(img)
	if err != nil {
		return 0, fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := paths.AtomicWrite(path, data); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return len(data), nil
}

// Generate draws and writes each target in order. It stops at the first
// failure; results for files already written are still returned.
func Generate(targets []Target) ([]Result, error) {
	results := make([]Result, 0, len(targets))
	for _, t := range targets {
		if t.Size <= 0 {
			return results, fmt.Errorf("icon %s: size must be positive, got %d", t.Path, t.Size)
		}
		n, err := Write(t.Path, Draw(t.Size))
		if err != nil {
			return results, err
		}
		results = append(results, Result{Target: t, Bytes: n})
	}
	return results, nil
}
