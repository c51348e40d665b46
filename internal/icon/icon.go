// Package icon draws the retro-cam launcher icon: a lens over a camera
// body on a near-black square.
package icon

import (
	"image"
	"image/color"
)

var (
	Background = color.NRGBA{R: 10, G: 10, B: 10, A: 255}
	Accent     = color.NRGBA{R: 74, G: 158, B: 255, A: 255}
	Outline    = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// Draw renders the icon at size×size pixels. Non-positive sizes yield an
// empty image.
func Draw(size int) *image.NRGBA {
	if size <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	fillRect(img, img.Bounds(), Background)

	// Lens, lifted by a tenth of the size so the body fits below it.
	center := size / 2
	radius := size / 4
	lift := size / 10
	lens := box(center-radius, center-radius-lift, center+radius, center+radius-lift)
	fillEllipse(img, lens, Accent, Outline, size/30)

	// Body.
	top := center + radius/2
	body := box(size/4, top, size*3/4, top+size/5)
	fillRect(img, body, Accent)

	return img
}

// box converts inclusive corner coordinates into a half-open rectangle.
func box(x0, y0, x1, y1 int) image.Rectangle {
	return image.Rect(x0, y0, x1+1, y1+1)
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// fillEllipse fills the ellipse inscribed in r with fill and strokes a
// band of the given width along its inside edge with stroke. A width of
// zero draws no outline.
func fillEllipse(img *image.NRGBA, r image.Rectangle, fill, stroke color.NRGBA, width int) {
	if r.Empty() {
		return
	}
	cx := float64(r.Min.X+r.Max.X) / 2
	cy := float64(r.Min.Y+r.Max.Y) / 2
	a := float64(r.Dx()) / 2
	b := float64(r.Dy()) / 2
	ia := a - float64(width)
	ib := b - float64(width)

	clip := r.Intersect(img.Bounds())
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		for x := clip.Min.X; x < clip.Max.X; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if !inside(dx, dy, a, b) {
				continue
			}
			if width > 0 && !inside(dx, dy, ia, ib) {
				img.SetNRGBA(x, y, stroke)
				continue
			}
			img.SetNRGBA(x, y, fill)
		}
	}
}

func inside(dx, dy, a, b float64) bool {
	if a <= 0 || b <= 0 {
		return false
	}
	return (dx*dx)/(a*a)+(dy*dy)/(b*b) <= 1
}
