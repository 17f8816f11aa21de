package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/fogleman/gg"
)

const (
	marginTop    = 48.0
	marginRight  = 24.0
	marginBottom = 96.0
	marginLeft   = 88.0
	gridLines    = 5
	legendRow    = 18.0
)

var (
	background = color.White
	ink        = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	grid       = color.RGBA{R: 0xe5, G: 0xe5, B: 0xe5, A: 0xff}
	palette    = []color.RGBA{
		{R: 0x63, G: 0x6e, B: 0xfa, A: 0xff},
		{R: 0xef, G: 0x55, B: 0x3b, A: 0xff},
		{R: 0x00, G: 0xcc, B: 0x96, A: 0xff},
		{R: 0xab, G: 0x63, B: 0xfa, A: 0xff},
		{R: 0xff, G: 0xa1, B: 0x5a, A: 0xff},
		{R: 0x19, G: 0xd3, B: 0xf3, A: 0xff},
		{R: 0xff, G: 0x66, B: 0x92, A: 0xff},
		{R: 0xb6, G: 0xe8, B: 0x80, A: 0xff},
	}
)

func seriesColor(i int) color.Color { return palette[i%len(palette)] }

// plot is the drawing area of one chart.
type plot struct {
	dc         *gg.Context
	x, y, w, h float64
	lo, hi     float64
}

// scale maps a value onto the value axis length.
func (p plot) scale(v, length float64) float64 {
	return (v - p.lo) / (p.hi - p.lo) * length
}

// draw renders c into a PNG of the given size.
func draw(c Chart, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if c.empty() {
		return nil, ErrEmptyChart
	}
	titleFace, err := face(18)
	if err != nil {
		return nil, err
	}
	labelFace, err := face(11)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(background)
	dc.Clear()

	dc.SetFontFace(titleFace)
	dc.SetColor(ink)
	dc.DrawStringAnchored(c.Title, float64(width)/2, marginTop/2, 0.5, 0.5)
	dc.SetFontFace(labelFace)

	lo, hi := c.valueRange()
	p := plot{
		dc: dc,
		x:  marginLeft,
		y:  marginTop,
		w:  float64(width) - marginLeft - marginRight,
		h:  float64(height) - marginTop - marginBottom,
		lo: lo,
		hi: hi,
	}
	if p.w <= 0 || p.h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d leaves no plot area", ErrInvalidSize, width, height)
	}

	p.axes(c)
	switch c.Kind {
	case KindBar, KindHistogram, KindGroupedBar:
		p.bars(c)
	case KindHBar:
		p.hbars(c)
	case KindLine:
		p.lines(c)
	case KindBox:
		p.boxes(c)
	}
	if len(c.Series) > 1 {
		p.legend(c)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func formatTick(v float64) string {
	switch {
	case math.Abs(v) >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 1, 64) + "M"
	case math.Abs(v) >= 1e4:
		return strconv.FormatFloat(v/1e3, 'f', 0, 64) + "k"
	case v == math.Trunc(v):
		return strconv.FormatFloat(v, 'f', 0, 64)
	default:
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
}

// axes draws grid lines, tick labels, category labels and axis titles.
func (p plot) axes(c Chart) {
	dc := p.dc
	horizontal := c.Kind == KindHBar
	dc.SetLineWidth(1)
	for i := 0; i <= gridLines; i++ {
		v := p.lo + (p.hi-p.lo)*float64(i)/gridLines
		dc.SetColor(grid)
		if horizontal {
			x := p.x + p.scale(v, p.w)
			dc.DrawLine(x, p.y, x, p.y+p.h)
			dc.Stroke()
			dc.SetColor(ink)
			dc.DrawStringAnchored(formatTick(v), x, p.y+p.h+12, 0.5, 0.5)
		} else {
			y := p.y + p.h - p.scale(v, p.h)
			dc.DrawLine(p.x, y, p.x+p.w, y)
			dc.Stroke()
			dc.SetColor(ink)
			dc.DrawStringAnchored(formatTick(v), p.x-6, y, 1, 0.5)
		}
	}

	dc.SetColor(ink)
	dc.DrawLine(p.x, p.y+p.h, p.x+p.w, p.y+p.h)
	dc.DrawLine(p.x, p.y, p.x, p.y+p.h)
	dc.Stroke()

	n := float64(len(c.Categories))
	for i, cat := range c.Categories {
		if horizontal {
			slot := p.h / n
			dc.DrawStringAnchored(cat, p.x-6, p.y+slot*(float64(i)+0.5), 1, 0.5)
			continue
		}
		slot := p.w / n
		x := p.x + slot*(float64(i)+0.5)
		y := p.y + p.h + 10
		if len(c.Categories) > 8 {
			dc.Push()
			dc.RotateAbout(gg.Radians(-45), x, y)
			dc.DrawStringAnchored(cat, x, y, 1, 0.5)
			dc.Pop()
			continue
		}
		dc.DrawStringAnchored(cat, x, y, 0.5, 1)
	}

	if c.XLabel != "" {
		dc.DrawStringAnchored(c.XLabel, p.x+p.w/2, p.y+p.h+marginBottom-16, 0.5, 0.5)
	}
	if c.YLabel != "" {
		dc.Push()
		dc.RotateAbout(gg.Radians(-90), 16, p.y+p.h/2)
		dc.DrawStringAnchored(c.YLabel, 16, p.y+p.h/2, 0.5, 0.5)
		dc.Pop()
	}
}

func (p plot) bars(c Chart) {
	dc := p.dc
	slot := p.w / float64(len(c.Categories))
	gap := slot * 0.2
	if c.Kind == KindHistogram {
		gap = 1
	}
	groups := max(len(c.Series), 1)
	barW := (slot - gap) / float64(groups)
	zero := p.y + p.h - p.scale(0, p.h)
	for si, s := range c.Series {
		dc.SetColor(seriesColor(si))
		for i, v := range s.Values {
			if i >= len(c.Categories) {
				break
			}
			x := p.x + slot*float64(i) + gap/2 + barW*float64(si)
			top := p.y + p.h - p.scale(v, p.h)
			dc.DrawRectangle(x, math.Min(top, zero), barW, math.Abs(zero-top))
			dc.Fill()
		}
	}
}

func (p plot) hbars(c Chart) {
	dc := p.dc
	slot := p.h / float64(len(c.Categories))
	barH := slot * 0.8
	zero := p.x + p.scale(0, p.w)
	for si, s := range c.Series {
		dc.SetColor(seriesColor(si))
		for i, v := range s.Values {
			if i >= len(c.Categories) {
				break
			}
			y := p.y + slot*float64(i) + (slot-barH)/2
			end := p.x + p.scale(v, p.w)
			dc.DrawRectangle(math.Min(zero, end), y, math.Abs(end-zero), barH)
			dc.Fill()
		}
	}
}

func (p plot) lines(c Chart) {
	dc := p.dc
	slot := p.w / float64(len(c.Categories))
	dc.SetLineWidth(2)
	for si, s := range c.Series {
		dc.SetColor(seriesColor(si))
		for i, v := range s.Values {
			if i >= len(c.Categories) {
				break
			}
			x := p.x + slot*(float64(i)+0.5)
			y := p.y + p.h - p.scale(v, p.h)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
		for i, v := range s.Values {
			if i >= len(c.Categories) {
				break
			}
			dc.DrawCircle(p.x+slot*(float64(i)+0.5), p.y+p.h-p.scale(v, p.h), 3.5)
			dc.Fill()
		}
	}
}

func (p plot) boxes(c Chart) {
	dc := p.dc
	slot := p.w / float64(len(c.Categories))
	boxW := slot * 0.5
	y := func(v float64) float64 { return p.y + p.h - p.scale(v, p.h) }
	dc.SetLineWidth(1.5)
	for i, b := range c.Boxes {
		if i >= len(c.Categories) {
			break
		}
		cx := p.x + slot*(float64(i)+0.5)
		col := palette[i%len(palette)]

		dc.SetColor(col)
		dc.DrawLine(cx, y(b.Max), cx, y(b.Q3))
		dc.DrawLine(cx, y(b.Q1), cx, y(b.Min))
		dc.DrawLine(cx-boxW/4, y(b.Max), cx+boxW/4, y(b.Max))
		dc.DrawLine(cx-boxW/4, y(b.Min), cx+boxW/4, y(b.Min))
		dc.Stroke()

		dc.SetRGBA(float64(col.R)/255, float64(col.G)/255, float64(col.B)/255, 0.35)
		dc.DrawRectangle(cx-boxW/2, y(b.Q3), boxW, math.Max(y(b.Q1)-y(b.Q3), 1))
		dc.FillPreserve()
		dc.SetColor(col)
		dc.Stroke()

		dc.DrawLine(cx-boxW/2, y(b.Median), cx+boxW/2, y(b.Median))
		dc.Stroke()
	}
}

func (p plot) legend(c Chart) {
	dc := p.dc
	x := p.x + p.w - 140
	for i, s := range c.Series {
		y := p.y + 8 + legendRow*float64(i)
		dc.SetColor(seriesColor(i))
		dc.DrawRectangle(x, y-5, 10, 10)
		dc.Fill()
		dc.SetColor(ink)
		dc.DrawStringAnchored(s.Name, x+16, y, 0, 0.5)
	}
}
