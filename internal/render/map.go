// Package render draws a centrality layer as a PNG map with a colour bar.
package render

import (
	"cmp"
	"fmt"
	"image"
	"math"
	"slices"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/layer"
)

// Options sizes and labels the map.
type Options struct {
	Width  int
	Height int
	Title  string
	// MaxLineWidth is the stroke width, in pixels, of the segment with
	// weight 1.
	MaxLineWidth float64
}

// DefaultOptions returns a 1200x1000 canvas with 4 px top strokes.
func DefaultOptions() Options {
	return Options{Width: 1200, Height: 1000, MaxLineWidth: 4}
}

// Title formats the map heading for a run.
func Title(area string, n int, routeType string) string {
	return fmt.Sprintf("Routes betweenness centrality in %s,\nn=%d, type=%s", area, n, routeType)
}

const (
	marginLeft   = 90.0
	marginRight  = 150.0
	marginTop    = 80.0
	marginBottom = 70.0
	barWidth     = 18.0
	barGap       = 24.0
)

// frame maps lon/lat into the plot rectangle. Longitudes are scaled by the
// cosine of the mid latitude so the map keeps its shape at city scale.
type frame struct {
	bound          orb.Bound
	kx             float64
	scale          float64
	x0, y0, x1, y1 float64
}

func newFrame(b orb.Bound, opts Options) frame {
	f := frame{bound: b}
	f.kx = math.Cos((b.Min.Lat() + b.Max.Lat()) / 2 * math.Pi / 180)

	plotW := float64(opts.Width) - marginLeft - marginRight
	plotH := float64(opts.Height) - marginTop - marginBottom
	spanX := (b.Max.Lon() - b.Min.Lon()) * f.kx
	spanY := b.Max.Lat() - b.Min.Lat()
	if spanX <= 0 {
		spanX = 1e-6
	}
	if spanY <= 0 {
		spanY = 1e-6
	}
	f.scale = math.Min(plotW/spanX, plotH/spanY)

	w, h := spanX*f.scale, spanY*f.scale
	f.x0 = marginLeft + (plotW-w)/2
	f.y0 = marginTop + (plotH-h)/2
	f.x1, f.y1 = f.x0+w, f.y0+h
	return f
}

func (f frame) project(p orb.Point) (float64, float64) {
	x := f.x0 + (p.Lon()-f.bound.Min.Lon())*f.kx*f.scale
	y := f.y1 - (p.Lat()-f.bound.Min.Lat())*f.scale
	return x, y
}

// Draw renders l onto a new image.
func Draw(l *layer.Layer, opts Options) (image.Image, error) {
	if opts.Width < 100 || opts.Height < 100 {
		return nil, eris.Errorf("render: canvas %dx%d is too small", opts.Width, opts.Height)
	}
	if opts.MaxLineWidth <= 0 {
		opts.MaxLineWidth = DefaultOptions().MaxLineWidth
	}
	if len(l.Features) == 0 {
		return nil, eris.New("render: layer has no features")
	}

	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, eris.Wrap(err, "render: parse font")
	}
	face := func(size float64) font.Face { return truetype.NewFace(ttf, &truetype.Options{Size: size}) }

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	f := newFrame(l.Bound(), opts)
	ramp := MagmaReversed()

	// Busiest segments are drawn last so they stay on top.
	features := slices.Clone(l.Features)
	slices.SortStableFunc(features, func(a, b layer.Feature) int { return cmp.Compare(a.Centrality, b.Centrality) })

	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	for _, feat := range features {
		width := feat.Weight * opts.MaxLineWidth
		if width <= 0 || len(feat.Geometry) < 2 {
			continue
		}
		dc.SetColor(ramp.At(feat.Weight))
		dc.SetLineWidth(width)
		for i, p := range feat.Geometry {
			x, y := f.project(p)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
	}

	drawAxes(dc, f, face(12))
	drawColorBar(dc, f, ramp, l.Min, l.Max, face(12))
	drawTitle(dc, opts, face(18))
	return dc.Image(), nil
}

// WritePNG renders l and saves it to path.
func WritePNG(path string, l *layer.Layer, opts Options) error {
	img, err := Draw(l, opts)
	if err != nil {
		return err
	}
	return eris.Wrapf(gg.SavePNG(path, img), "render: save %s", path)
}

func drawTitle(dc *gg.Context, opts Options, face font.Face) {
	dc.SetFontFace(face)
	dc.SetRGB(0, 0, 0)
	lines := strings.Split(opts.Title, "\n")
	for i, line := range lines {
		dc.DrawStringAnchored(line, float64(opts.Width)/2, 28+float64(i)*24, 0.5, 0.5)
	}
}

func drawAxes(dc *gg.Context, f frame, face font.Face) {
	dc.SetFontFace(face)
	dc.SetRGB(0.2, 0.2, 0.2)
	dc.SetLineWidth(1)
	dc.DrawRectangle(f.x0, f.y0, f.x1-f.x0, f.y1-f.y0)
	dc.Stroke()

	b := f.bound
	for _, lon := range ticks(b.Min.Lon(), b.Max.Lon(), 5) {
		x, _ := f.project(orb.Point{lon, b.Min.Lat()})
		dc.DrawLine(x, f.y1, x, f.y1+5)
		dc.Stroke()
		dc.DrawStringAnchored(formatTick(lon), x, f.y1+16, 0.5, 0.5)
	}
	for _, lat := range ticks(b.Min.Lat(), b.Max.Lat(), 5) {
		_, y := f.project(orb.Point{b.Min.Lon(), lat})
		dc.DrawLine(f.x0-5, y, f.x0, y)
		dc.Stroke()
		dc.DrawStringAnchored(formatTick(lat), f.x0-8, y, 1, 0.5)
	}

	dc.DrawStringAnchored("Longitude [°]", (f.x0+f.x1)/2, f.y1+42, 0.5, 0.5)
	dc.Push()
	cx, cy := f.x0-70, (f.y0+f.y1)/2
	dc.RotateAbout(gg.Radians(-90), cx, cy)
	dc.DrawStringAnchored("Latitude [°]", cx, cy, 0.5, 0.5)
	dc.Pop()
}

func drawColorBar(dc *gg.Context, f frame, ramp *Ramp, lo, hi float64, face font.Face) {
	x := f.x1 + barGap
	top, bottom := f.y0, f.y1
	height := bottom - top

	for y := 0.0; y < height; y++ {
		dc.SetColor(ramp.At(1 - y/height))
		dc.DrawRectangle(x, top+y, barWidth, 1)
		dc.Fill()
	}
	dc.SetRGB(0.2, 0.2, 0.2)
	dc.SetLineWidth(1)
	dc.DrawRectangle(x, top, barWidth, height)
	dc.Stroke()

	dc.SetFontFace(face)
	values := []float64{lo}
	if hi > lo {
		values = ticks(lo, hi, 5)
	}
	for _, v := range values {
		y := bottom
		if hi > lo {
			y = bottom - (v-lo)/(hi-lo)*height
		}
		dc.DrawLine(x+barWidth, y, x+barWidth+4, y)
		dc.Stroke()
		dc.DrawStringAnchored(formatTick(v), x+barWidth+8, y, 0, 0.5)
	}

	dc.Push()
	cx, cy := x+barWidth+95, (top+bottom)/2
	dc.RotateAbout(gg.Radians(-90), cx, cy)
	dc.DrawStringAnchored("centrality", cx, cy, 0.5, 0.5)
	dc.Pop()
}

// ticks returns round values covering [lo, hi], about n of them.
func ticks(lo, hi float64, n int) []float64 {
	if hi <= lo || n < 1 {
		return []float64{lo}
	}
	step := niceStep((hi - lo) / float64(n))
	var out []float64
	for v := math.Ceil(lo/step) * step; v <= hi+step*1e-9; v += step {
		out = append(out, math.Round(v/step)*step)
	}
	return out
}

// niceStep rounds raw up to 1, 2 or 5 times a power of ten.
func niceStep(raw float64) float64 {
	exp := math.Pow(10, math.Floor(math.Log10(raw)))
	switch frac := raw / exp; {
	case frac <= 1:
		return exp
	case frac <= 2:
		return 2 * exp
	case frac <= 5:
		return 5 * exp
	default:
		return 10 * exp
	}
}

func formatTick(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
