// Package render draws dashboard charts as PNG images.
package render

// Kind selects how a Chart is drawn.
type Kind int

const (
	// KindBar draws one vertical bar per category.
	KindBar Kind = iota
	// KindHBar draws one horizontal bar per category.
	KindHBar
	// KindHistogram draws adjacent bars with no gaps.
	KindHistogram
	// KindGroupedBar draws one bar per series within each category.
	KindGroupedBar
	// KindLine draws each series as a line with point markers.
	KindLine
	// KindBox draws a box and whiskers per category from Boxes.
	KindBox
)

func (k Kind) String() string {
	switch k {
	case KindBar:
		return "bar"
	case KindHBar:
		return "hbar"
	case KindHistogram:
		return "histogram"
	case KindGroupedBar:
		return "grouped_bar"
	case KindLine:
		return "line"
	case KindBox:
		return "box"
	default:
		return "unknown"
	}
}

// Series is one named row of values aligned with Chart.Categories.
type Series struct {
	Name   string
	Values []float64
}

// Box is a five-number summary drawn by KindBox.
type Box struct {
	Min, Q1, Median, Q3, Max float64
}

// Chart describes what to draw, independent of image size.
type Chart struct {
	Kind       Kind
	Title      string
	XLabel     string
	YLabel     string
	Categories []string
	Series     []Series
	Boxes      []Box
}

// empty reports whether the chart has nothing to plot.
func (c Chart) empty() bool {
	if len(c.Categories) == 0 {
		return true
	}
	if c.Kind == KindBox {
		return len(c.Boxes) == 0
	}
	for _, s := range c.Series {
		if len(s.Values) > 0 {
			return false
		}
	}
	return true
}

// valueRange returns the lower and upper bound of the value axis.
func (c Chart) valueRange() (float64, float64) {
	lo, hi := 0.0, 0.0
	first := true
	see := func(v float64) {
		if first {
			lo, hi, first = v, v, false
			return
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if c.Kind == KindBox {
		for _, b := range c.Boxes {
			see(b.Min)
			see(b.Max)
		}
	} else {
		for _, s := range c.Series {
			for _, v := range s.Values {
				see(v)
			}
		}
	}
	// Bars grow from zero; lines and boxes fit the data.
	switch c.Kind {
	case KindBar, KindHBar, KindHistogram, KindGroupedBar:
		lo = min(lo, 0)
		hi = max(hi, 0)
	}
	if lo == hi {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.05
	if c.Kind == KindLine || c.Kind == KindBox {
		lo -= pad
	}
	return lo, hi + pad
}
