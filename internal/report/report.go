// Package report converts measured byte totals into energy, CO₂ and a letter
// grade. Everything here is a pure function over a MeasurementResult; the
// measurement engine itself never computes emissions.
package report

import (
	"math"
	"time"

	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/model"
)

// Sustainable Web Design-ish model constants.
const (
	// KWhPerGB is the energy cost per GB of data transferred.
	KWhPerGB = 0.81

	// GridIntensity is gCO2e per kWh (global average grid).
	GridIntensity = 442.0
)

// VisitReport holds the derived figures for one visit.
type VisitReport struct {
	Bytes     int64   `json:"bytes"`
	MB        float64 `json:"mb"`
	GB        float64 `json:"gb"`
	EnergyKWh float64 `json:"energy_kwh"`
	CO2Grams  float64 `json:"co2_g"`
	Grade     string  `json:"grade"`
}

// Report is the full presentation-ready result for one measured URL.
type Report struct {
	URL         string      `json:"url"`
	Mode        model.Mode  `json:"mode"`
	Downgraded  bool        `json:"downgraded"`
	FirstVisit  VisitReport `json:"first_visit"`
	ReturnVisit VisitReport `json:"return_visit"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// EnergyAndCO2 returns the estimated kWh and gCO2e for a byte count.
func EnergyAndCO2(bytes int64) (energyKWh, co2Grams float64) {
	gb := float64(bytes) / (1024 * 1024 * 1024)
	energyKWh = gb * KWhPerGB
	co2Grams = energyKWh * GridIntensity
	return energyKWh, co2Grams
}

// Grade maps CO₂ grams per page view to a letter grade. The thresholds are
// applied to the value rounded to two decimal places.
func Grade(co2Grams float64) string {
	rounded := math.Round(co2Grams*100) / 100
	switch {
	case rounded <= 0.20:
		return "A"
	case rounded <= 0.70:
		return "B"
	case rounded <= 1.10:
		return "C"
	case rounded <= 1.60:
		return "D"
	default:
		return "F"
	}
}

// GradeDescription returns a one-line human explanation for a letter grade.
func GradeDescription(letter string) string {
	descriptions := map[string]string{
		"A": "Excellent – ultra-light page, great for performance and the planet.",
		"B": "Good – efficient overall, with room for a bit more optimization.",
		"C": "Okay – around average; optimizations would make a real impact.",
		"D": "Heavy – likely room to trim assets, images, and scripts.",
		"F": "Very heavy – urgently needs performance and sustainability work.",
	}
	return descriptions[letter]
}

// ForVisit derives a VisitReport from a byte count.
func ForVisit(bytes int64) VisitReport {
	energy, co2 := EnergyAndCO2(bytes)
	return VisitReport{
		Bytes:     bytes,
		MB:        float64(bytes) / (1024 * 1024),
		GB:        float64(bytes) / (1024 * 1024 * 1024),
		EnergyKWh: energy,
		CO2Grams:  co2,
		Grade:     Grade(co2),
	}
}

// Build assembles the full report for a measurement. downgraded should be
// true when browser mode was requested but the run fell back to HTTP mode.
func Build(res *model.MeasurementResult, downgraded bool) *Report {
	return &Report{
		URL:         res.URL,
		Mode:        res.Mode,
		Downgraded:  downgraded,
		FirstVisit:  ForVisit(res.FirstVisit.TotalBytes),
		ReturnVisit: ForVisit(res.ReturnVisit.TotalBytes),
		GeneratedAt: time.Now().UTC(),
	}
}
