package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raxnet/patrol/internal/export/types"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// FileName is the image the exporter writes.
const FileName = "leaderboard.png"

// Chart dimensions and styling constants.
const (
	// maxBars is the number of top members drawn.
	maxBars = 20
	// barWidth is the width of a single bar in pixels.
	barWidth = 40
	// barSlot is the horizontal room reserved per bar.
	barSlot = 60
	// minWidth is the narrowest chart rendered.
	minWidth = 1024
	// chartHeight is the height of the chart in pixels.
	chartHeight = 600
	// titleFontSize sets the size of the chart title text.
	titleFontSize = 14.0
	// xAxisFontSize sets the size of x-axis labels.
	xAxisFontSize = 9.0
	// xAxisRotation angles x-axis labels to prevent overlap.
	xAxisRotation = 45.0
	// padding adds space around the chart.
	padding = 40
)

// ErrNoRecords is returned when there is nothing to draw.
var ErrNoRecords = errors.New("no records to chart")

// Exporter renders the top of a leaderboard as a PNG bar chart.
type Exporter struct {
	outDir string
}

// New creates a new chart exporter instance.
func New(outDir string) *Exporter {
	return &Exporter{outDir: outDir}
}

// Export draws the points of the highest ranked members to leaderboard.png.
func (e *Exporter) Export(records []*types.Record) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	graph := Build(records)

	file, err := os.Create(filepath.Join(e.outDir, FileName))
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer file.Close()

	if err := graph.Render(chart.PNG, file); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return nil
}

// Build creates the bar chart for the first records.
func Build(records []*types.Record) *chart.BarChart {
	if len(records) > maxBars {
		records = records[:maxBars]
	}

	bars := make([]chart.Value, 0, len(records))
	var highest int64
	for _, record := range records {
		label := record.Name
		if label == "" {
			label = shorten(record.UserRef)
		}

		bars = append(bars, chart.Value{
			Value: float64(record.Points),
			Label: fmt.Sprintf("#%d %s", record.Rank, label),
			Style: chart.Style{
				FillColor:   tierColor(record.Tier),
				StrokeColor: tierColor(record.Tier),
			},
		})
		highest = max(highest, record.Points)
	}

	return &chart.BarChart{
		Title:      "Leaderboard Points",
		TitleStyle: chart.Style{FontSize: titleFontSize},
		Background: chart.Style{
			Padding: chart.Box{Top: padding, Left: padding, Right: padding, Bottom: padding},
		},
		Width:    max(minWidth, len(bars)*barSlot+2*padding),
		Height:   chartHeight,
		BarWidth: barWidth,
		XAxis: chart.Style{
			FontSize:            xAxisFontSize,
			TextRotationDegrees: xAxisRotation,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(max(highest, 1)) * 1.1},
		},
		Bars: bars,
	}
}

// tierColor maps a member tier to its bar color.
func tierColor(tier string) drawing.Color {
	switch tier {
	case "Elite":
		return chart.ColorRed
	case "Veteran":
		return chart.ColorOrange
	case "Trusted":
		return chart.ColorGreen
	default:
		return chart.ColorBlue
	}
}

// shorten trims a hashed reference to something that fits under a bar.
func shorten(ref string) string {
	if len(ref) > 8 {
		return ref[:8]
	}
	return ref
}
