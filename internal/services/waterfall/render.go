package waterfall

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"budgetlens/internal/models"
)

// ErrNoData is returned when every bar is empty and there is nothing to draw
var ErrNoData = errors.New("waterfall has no data")

// RenderOptions sizes the rendered chart
type RenderOptions struct {
	Title  string
	Width  int
	Height int
}

// DefaultRenderOptions returns a 1000x500 chart
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Title: "Cash flow", Width: 1000, Height: 500}
}

// valueRange returns the lowest and highest balance touched by any bar,
// always including zero.
func valueRange(bars []models.WaterfallBar) (low, high float64) {
	for _, b := range bars {
		low = math.Min(low, math.Min(b.Start, b.End))
		high = math.Max(high, math.Max(b.Start, b.End))
	}
	return low, high
}

// RenderPNG draws bars as floating boxes spanning start..end over a value
// axis fixed to the range of the bars.
func RenderPNG(bars []models.WaterfallBar, opts RenderOptions) ([]byte, error) {
	low, high := valueRange(bars)
	if high-low == 0 {
		return nil, ErrNoData
	}
	n := float64(len(bars))

	ticks := make([]chart.Tick, 0, len(bars))
	for i, b := range bars {
		ticks = append(ticks, chart.Tick{Value: float64(i) + 0.5, Label: b.Name})
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: n},
			Ticks: ticks,
			Style: chart.Style{
				FontSize:  9,
				FontColor: chart.ColorBlack,
			},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: low, Max: high},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
			Style: chart.Style{
				FontColor: chart.ColorBlack,
			},
		},
		Series: []chart.Series{
			// Invisible series spanning the full range so the axes render.
			chart.ContinuousSeries{
				XValues: []float64{0, n},
				YValues: []float64{low, high},
				Style: chart.Style{
					StrokeColor: drawing.ColorTransparent,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{drawBars(bars, low, high)}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render waterfall chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// drawBars returns a chart element that paints one box per bar inside the
// canvas, using the same value range as the y axis.
func drawBars(bars []models.WaterfallBar, low, high float64) chart.Renderable {
	return func(r chart.Renderer, canvas chart.Box, defaults chart.Style) {
		slot := float64(canvas.Width()) / float64(len(bars))
		toY := func(v float64) int {
			return canvas.Bottom - int(math.Round((v-low)/(high-low)*float64(canvas.Height())))
		}

		for i, b := range bars {
			left := canvas.Left + int(float64(i)*slot+slot*0.2)
			right := canvas.Left + int(float64(i+1)*slot-slot*0.2)
			top, bottom := toY(math.Max(b.Start, b.End)), toY(math.Min(b.Start, b.End))
			if bottom-top < 1 {
				bottom = top + 1
			}

			color := hexColor(b.Color)
			chart.Draw.Box(r, chart.Box{Top: top, Left: left, Right: right, Bottom: bottom}, chart.Style{
				FillColor:   color,
				StrokeColor: color,
				StrokeWidth: 1,
			})
		}
	}
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
