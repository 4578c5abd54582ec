package chartjs

import (
	"math"
)

const (
	ColorToday    = "#4a65ba"
	ColorTomorrow = "#73e69b"
)

// NewChart is a stepped line chart over labels with a price axis.
func NewChart(title string, labels []string) Chart {
	chart := Chart{
		Type: "line",
		Data: ChartData{
			Labels:   labels,
			Datasets: []ChartDataset{},
		},
		Options: ChartOptions{
			Responsive: true,
			Plugins: ChartPlugins{
				Legend: ChartLegend{Display: true},
				Title:  ChartTitle{Display: false},
			},
			Scales: map[string]ChartScale{
				"x": {Type: "category", Display: true},
				"y": {
					Type:     "linear",
					Display:  true,
					Position: "left",
					Title:    ChartScaleTitle{Display: true, Text: "€/kWh"}},
			},
		},
	}

	if title != "" {
		chart.Options.Plugins.Title = ChartTitle{Display: true, Text: title}
	}

	return chart
}

// AddDataset appends a stepped series. data must have one value per label.
func (c *Chart) AddDataset(label, color string, data []*float64) {
	c.Data.Datasets = append(c.Data.Datasets, ChartDataset{
		Label:       label,
		Data:        data,
		BorderWidth: 2,
		BorderColor: color,
		Stepped:     "after",
		PointRadius: 0,
	})
}

func (cs ChartScale) WithTitle(title string) ChartScale {
	cs.Title.Text = title
	return cs
}

func (cs ChartScale) WithMinAndMax(min, max float64) ChartScale {
	cs.Min = &min
	cs.Max = &max
	return cs
}

func FixedFloat64(num float64, precision int) *float64 {
	p := math.Pow(10, float64(precision))
	rounded := math.Round(num * p)
	result := rounded / p
	return &result
}
