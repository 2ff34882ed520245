package store

import (
	"context"
	"time"

	"github.com/mgilbir/barsmith/chart"
)

// ExampleSuffix ends the id of every seeded example project.
const ExampleSuffix = "_example"

// Example is a bundled example project.
type Example struct {
	Name   string
	Config chart.Config
}

// Examples returns the bundled example projects: a Nature-styled gene
// expression chart and an IEEE-styled algorithm comparison.
func Examples() []Example {
	return []Example{
		{
			Name: "Nature期刊示例",
			Config: chart.Config{
				Chart: chart.ChartSettings{
					Type:          chart.Simple,
					Title:         "Gene Expression Levels",
					XAxis:         chart.Axis{Label: "Genes", Range: [2]float64{0, 100}},
					YAxis:         chart.Axis{Label: "Expression", Unit: "FPKM", Range: [2]float64{0, 50}},
					ShowValue:     true,
					ValuePosition: chart.ValueTop,
					Bars: []chart.Bar{
						{Name: "GAPDH", Value: chart.Scalar(45.2)},
						{Name: "ACTB", Value: chart.Scalar(38.7)},
						{Name: "TUBB", Value: chart.Scalar(29.1)},
						{Name: "RPL13A", Value: chart.Scalar(33.8)},
					},
				},
				Style: chart.Style{
					Theme:           "nature",
					BackgroundColor: chart.Transparent,
					FontFamily:      "times",
					FontSize:        12,
				},
			},
		},
		{
			Name: "IEEE会议示例",
			Config: chart.Config{
				Chart: chart.ChartSettings{
					Type:          chart.Simple,
					Title:         "Algorithm Performance Comparison",
					XAxis:         chart.Axis{Label: "Algorithms", Range: [2]float64{0, 100}},
					YAxis:         chart.Axis{Label: "Accuracy", Unit: "%", Range: [2]float64{0, 100}, UsePercent: true},
					ShowValue:     true,
					ValuePosition: chart.ValueTop,
					Bars: []chart.Bar{
						{Name: "CNN", Value: chart.Scalar(0.94)},
						{Name: "RNN", Value: chart.Scalar(0.87)},
						{Name: "SVM", Value: chart.Scalar(0.82)},
						{Name: "RF", Value: chart.Scalar(0.79)},
					},
				},
				Style: chart.Style{
					Theme:           "ieee",
					BackgroundColor: chart.Transparent,
					FontFamily:      "arial",
					FontSize:        11,
				},
			},
		},
	}
}

// Seed writes the example projects into s, replacing earlier copies, and
// returns their ids.
func Seed(ctx context.Context, s Store) ([]string, error) {
	now := time.Now()
	var ids []string
	for _, ex := range Examples() {
		id := SanitizeName(ex.Name) + ExampleSuffix
		cfg := stamp(ex.Config, ex.Name, now)
		cfg.Metadata.IsExample = true
		if err := s.Put(ctx, id, cfg); err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
