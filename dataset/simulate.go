package dataset

import (
	"math"
	"math/rand/v2"
	"time"
)

// SimulatePanel generates a synthetic calendar panel with one daily wave
// target column "y" and one wave past covariate column "temp" per entity.
// Each entity gets its own amplitude, bias, and covariate phase so per-entity
// scaling matters. Timestamps are evenly spaced and end just before the time
// returned by nowFunc; rows are laid out contiguously per entity.
func SimulatePanel(entityIDs []string, rowsPerEntity int, interval time.Duration, seed uint64, nowFunc func() time.Time) *Panel {
	r := rand.New(rand.NewPCG(seed, seed))

	start := time.Unix(nowFunc().Unix()/60*60, 0).UTC().Add(-time.Duration(rowsPerEntity) * interval)
	t := make([]time.Time, rowsPerEntity)
	for j := range t {
		t[j] = start.Add(interval * time.Duration(j))
	}

	n := len(entityIDs) * rowsPerEntity
	ids := make([]string, 0, n)
	times := make([]time.Time, 0, n)
	target := make([]float64, 0, n)
	temp := make([]float64, 0, n)

	const daySec = 86400.0
	for i, id := range entityIDs {
		amp := 10.0 * float64(i+1)
		bias := 100.0 * float64(i)
		phase := 3600.0 * float64(i)

		for j := 0; j < rowsPerEntity; j++ {
			sec := float64(t[j].Unix())
			y := amp*math.Sin(2.0*math.Pi*sec/daySec) + r.NormFloat64()*amp/20.0 + bias
			cov := 5.0*math.Sin(2.0*math.Pi*(sec+phase)/daySec) + 20.0

			ids = append(ids, id)
			times = append(times, t[j])
			target = append(target, y)
			temp = append(temp, cov)
		}
	}

	p, _ := NewPanel("id", ids)
	p.SetCalendarTime("ts", times)
	p.AddColumn("y", target)
	p.AddColumn("temp", temp)
	return p
}
