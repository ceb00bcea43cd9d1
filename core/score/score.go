// Package score computes the eco score and dashboard view of a user's consumption.
package score

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/consumption"
)

// chartPoints is the number of most recent electricity readings plotted.
const chartPoints = 6

var ErrInvalidQuantity = core.NewValidationError(errors.New("consumption quantities cannot be negative"))

// Weights are the penalty applied per unit of each resource.
type Weights struct {
	Baseline    float64
	Electricity float64 // per kWh
	Water       float64 // per unit
	Waste       float64 // per bag
}

var DefaultWeights = Weights{
	Baseline:    100,
	Electricity: 0.2,
	Water:       0.1,
	Waste:       0.3,
}

func WeightsFromConfig(conf core.ScoreConfig) Weights {
	return Weights{
		Baseline:    conf.Baseline,
		Electricity: conf.ElectricityWeight,
		Water:       conf.WaterWeight,
		Waste:       conf.WasteWeight,
	}
}

type (
	Metric struct {
		Title string  `json:"title"`
		Value float64 `json:"value"`
		Icon  string  `json:"icon"`
	}

	Dataset struct {
		Data []float64 `json:"data"`
	}

	ChartData struct {
		Labels   []string  `json:"labels"`
		Datasets []Dataset `json:"datasets"`
	}

	Dashboard struct {
		EcoScore   int       `json:"eco_score"`
		KeyMetrics []Metric  `json:"key_metrics"`
		ChartData  ChartData `json:"chart_data"`
	}
)

// Compute builds the dashboard of records. It is pure: the same records always give the same dashboard.
func Compute(weights Weights, records []consumption.Record) (Dashboard, error) {
	var (
		electricity, water, waste float64
		readings                  []consumption.Record
	)
	for _, rec := range records {
		if rec.HasNegativeQuantity() {
			return Dashboard{}, ErrInvalidQuantity
		}
		switch rec.Resource {
		case consumption.Electricity:
			electricity += rec.Units
			readings = append(readings, rec)
		case consumption.Water:
			water += rec.Units
		case consumption.Waste:
			waste += rec.Bags()
		}
	}

	raw := weights.Baseline -
		electricity*weights.Electricity -
		water*weights.Water -
		waste*weights.Waste

	return Dashboard{
		EcoScore: int(math.Max(0, math.Round(raw))),
		KeyMetrics: []Metric{
			{Title: "Electricity", Value: electricity, Icon: "flash"},
			{Title: "Water", Value: water, Icon: "water"},
			{Title: "Waste", Value: waste, Icon: "trash"},
		},
		ChartData: chart(readings),
	}, nil
}

func chart(readings []consumption.Record) ChartData {
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Period.Before(readings[j].Period)
	})
	if len(readings) > chartPoints {
		readings = readings[len(readings)-chartPoints:]
	}

	labels := make([]string, 0, len(readings))
	data := make([]float64, 0, len(readings))
	for _, rec := range readings {
		labels = append(labels, rec.Period.Format("Jan"))
		data = append(data, rec.Units)
	}
	return ChartData{Labels: labels, Datasets: []Dataset{{Data: data}}}
}
