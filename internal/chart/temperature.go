package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"weather-snapshot/internal/models"
)

const (
	hourLayout  = "2006-01-02T15:04"
	legendLabel = "Temperature (°C)"
	tickFormat  = "2006-01-02 15:04"
)

// tab:red from the matplotlib default palette
var lineColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}

// TemperatureSeries pairs each hourly timestamp with its temperature, keeping input
// order. X values are Unix seconds of the wall-clock time read as UTC. Hours with no
// reading keep their slot with a NaN Y; a series with no readings at all is an error.
func TemperatureSeries(hourly *models.Hourly) (plotter.XYs, error) {
	if hourly == nil {
		return nil, fmt.Errorf("%w: response has no hourly block", models.ErrParse)
	}
	if len(hourly.Time) == 0 {
		return nil, fmt.Errorf("%w: hourly.time is empty", models.ErrParse)
	}
	if len(hourly.Time) != len(hourly.Temperature2m) {
		return nil, fmt.Errorf("%w: hourly.time has %d entries but hourly.temperature_2m has %d",
			models.ErrParse, len(hourly.Time), len(hourly.Temperature2m))
	}

	xys := make(plotter.XYs, len(hourly.Time))
	readings := 0
	for i, raw := range hourly.Time {
		ts, err := parseHour(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: hourly.time[%d]: %w", models.ErrParse, i, err)
		}

		temp := hourly.Temperature2m[i]
		if !math.IsNaN(temp) {
			readings++
		}

		xys[i].X = float64(ts.Unix())
		xys[i].Y = temp
	}

	if readings == 0 {
		return nil, fmt.Errorf("%w: hourly.temperature_2m has no readings", models.ErrParse)
	}

	return xys, nil
}

// segments splits series at missing readings so the line is not drawn across gaps.
func segments(series plotter.XYs) []plotter.XYs {
	var out []plotter.XYs
	start := -1
	for i, pt := range series {
		if math.IsNaN(pt.Y) {
			if start >= 0 {
				out = append(out, series[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, series[start:])
	}
	return out
}

func parseHour(s string) (time.Time, error) {
	if ts, err := time.Parse(hourLayout, s); err == nil {
		return ts, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	// keep the wall clock, drop the offset
	return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), 0, time.UTC), nil
}

type Renderer struct {
	Width  vg.Length
	Height vg.Length
}

func NewRenderer() *Renderer {
	return &Renderer{
		Width:  10 * vg.Inch,
		Height: 5 * vg.Inch,
	}
}

// Render draws series as a line, broken where readings are missing, and returns PNG bytes.
func (r *Renderer) Render(series plotter.XYs, place string) ([]byte, error) {
	p := plot.New()

	p.Title.Text = "Hourly Temperature Forecast - " + place
	p.X.Label.Text = "Time"
	p.Y.Label.Text = legendLabel

	p.X.Tick.Marker = plot.TimeTicks{Format: tickFormat}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	p.Add(plotter.NewGrid())

	segs := segments(series)
	if len(segs) == 0 {
		return nil, fmt.Errorf("%w: no temperature readings to draw", models.ErrRender)
	}

	for i, seg := range segs {
		line, err := plotter.NewLine(seg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", models.ErrRender, err)
		}
		line.LineStyle.Color = lineColor
		line.LineStyle.Width = vg.Points(2)

		p.Add(line)
		if i == 0 {
			p.Legend.Add(legendLabel, line)
		}
	}
	p.Legend.Top = true

	// leading or trailing gaps still belong on the time axis
	for _, pt := range series {
		p.X.Min = math.Min(p.X.Min, pt.X)
		p.X.Max = math.Max(p.X.Max, pt.X)
	}

	w, err := p.WriterTo(r.Width, r.Height, "png")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrRender, err)
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%w: encode png: %w", models.ErrRender, err)
	}

	return buf.Bytes(), nil
}
