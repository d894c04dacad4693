package chart

import (
	"bytes"
	"encoding/json"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"

	"weather-snapshot/internal/models"
)

func unix(s string) float64 {
	ts, err := time.Parse("2006-01-02T15:04", s)
	if err != nil {
		panic(err)
	}
	return float64(ts.Unix())
}

func TestTemperatureSeries_Example(t *testing.T) {
	hourly := &models.Hourly{
		Time:          []string{"2025-07-28T00:00", "2025-07-28T01:00"},
		Temperature2m: []float64{21.5, 20.9},
	}

	series, err := TemperatureSeries(hourly)
	require.NoError(t, err)
	require.Len(t, series, 2)

	assert.Equal(t, unix("2025-07-28T00:00"), series[0].X)
	assert.Equal(t, 21.5, series[0].Y)
	assert.Equal(t, unix("2025-07-28T01:00"), series[1].X)
	assert.Equal(t, 20.9, series[1].Y)
}

func TestTemperatureSeries_KeepsOrderAndLength(t *testing.T) {
	start := time.Date(2025, time.July, 28, 0, 0, 0, 0, time.UTC)
	hourly := &models.Hourly{}
	for i := 0; i < 168; i++ {
		hourly.Time = append(hourly.Time, start.Add(time.Duration(i)*time.Hour).Format("2006-01-02T15:04"))
		hourly.Temperature2m = append(hourly.Temperature2m, float64(i%24))
	}

	series, err := TemperatureSeries(hourly)
	require.NoError(t, err)
	require.Len(t, series, len(hourly.Time))

	for i := 1; i < len(series); i++ {
		assert.Equal(t, series[i-1].X+3600, series[i].X)
		assert.Equal(t, hourly.Temperature2m[i], series[i].Y)
	}
}

func TestTemperatureSeries_RFC3339(t *testing.T) {
	hourly := &models.Hourly{
		Time:          []string{"2025-07-28T00:00:00-04:00"},
		Temperature2m: []float64{18},
	}

	series, err := TemperatureSeries(hourly)
	require.NoError(t, err)
	assert.Equal(t, unix("2025-07-28T00:00"), series[0].X)
}

func TestTemperatureSeries_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		hourly *models.Hourly
	}{
		{"no hourly block", nil},
		{"empty", &models.Hourly{}},
		{"length mismatch", &models.Hourly{
			Time:          []string{"2025-07-28T00:00", "2025-07-28T01:00"},
			Temperature2m: []float64{21.5},
		}},
		{"missing temperatures", &models.Hourly{
			Time: []string{"2025-07-28T00:00"},
		}},
		{"only missing readings", &models.Hourly{
			Time:          []string{"2025-07-28T00:00", "2025-07-28T01:00"},
			Temperature2m: []float64{math.NaN(), math.NaN()},
		}},
		{"bad timestamp", &models.Hourly{
			Time:          []string{"yesterday"},
			Temperature2m: []float64{21.5},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TemperatureSeries(tt.hourly)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrParse)
		})
	}
}

func TestRenderer_Render(t *testing.T) {
	series, err := TemperatureSeries(&models.Hourly{
		Time:          []string{"2025-07-28T00:00", "2025-07-28T01:00", "2025-07-28T02:00"},
		Temperature2m: []float64{21.5, 20.9, 20.1},
	})
	require.NoError(t, err)

	data, err := NewRenderer().Render(series, "Pittsburgh")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	// 10x5 inches at the default 96 dpi
	assert.Equal(t, 960, img.Bounds().Dx())
	assert.Equal(t, 480, img.Bounds().Dy())
}

func TestRenderer_RenderSinglePoint(t *testing.T) {
	series, err := TemperatureSeries(&models.Hourly{
		Time:          []string{"2025-07-28T00:00"},
		Temperature2m: []float64{21.5},
	})
	require.NoError(t, err)

	data, err := NewRenderer().Render(series, "Pittsburgh")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestTemperatureSeries_MissingReadingKeepsSlot(t *testing.T) {
	var hourly models.Hourly
	err := json.Unmarshal([]byte(`{"time":["2025-07-28T00:00","2025-07-28T01:00","2025-07-28T02:00"],`+
		`"temperature_2m":[21.5,null,20.9]}`), &hourly)
	require.NoError(t, err)

	series, err := TemperatureSeries(&hourly)
	require.NoError(t, err)
	require.Len(t, series, 3)

	assert.Equal(t, 21.5, series[0].Y)
	assert.True(t, math.IsNaN(series[1].Y))
	assert.Equal(t, unix("2025-07-28T01:00"), series[1].X)
	assert.Equal(t, 20.9, series[2].Y)
}

func TestSegments(t *testing.T) {
	nan := math.NaN()
	series := plotter.XYs{{X: 0, Y: nan}, {X: 1, Y: 21.5}, {X: 2, Y: 21}, {X: 3, Y: nan}, {X: 4, Y: 20.9}, {X: 5, Y: nan}}

	segs := segments(series)
	require.Len(t, segs, 2)
	assert.Equal(t, plotter.XYs{{X: 1, Y: 21.5}, {X: 2, Y: 21}}, segs[0])
	assert.Equal(t, plotter.XYs{{X: 4, Y: 20.9}}, segs[1])

	assert.Empty(t, segments(plotter.XYs{{X: 0, Y: nan}}))
}

func TestRenderer_RenderWithGap(t *testing.T) {
	series, err := TemperatureSeries(&models.Hourly{
		Time:          []string{"2025-07-28T00:00", "2025-07-28T01:00", "2025-07-28T02:00", "2025-07-28T03:00"},
		Temperature2m: []float64{21.5, math.NaN(), 20.9, 20.1},
	})
	require.NoError(t, err)

	data, err := NewRenderer().Render(series, "Pittsburgh")
	require.NoError(t, err)

	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestRenderer_RenderNoReadings(t *testing.T) {
	_, err := NewRenderer().Render(plotter.XYs{{X: 0, Y: math.NaN()}}, "Pittsburgh")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrRender)
}
