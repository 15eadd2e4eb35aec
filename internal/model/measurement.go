package model

import "net/http"

// Mode identifies the measurement strategy that produced a result.
type Mode string

const (
	// ModeBrowser means a real headless browser observed the network traffic.
	ModeBrowser Mode = "browser"

	// ModeHTTP means byte totals were approximated from plain HTTP requests
	// and Cache-Control semantics.
	ModeHTTP Mode = "http"
)

// Visit distinguishes the cold-cache first load from the warm-cache return load.
type Visit string

const (
	VisitFirst  Visit = "first"
	VisitReturn Visit = "return"
)

// Resource is a single network response that contributed bytes to a visit.
// Headers are kept as http.Header so lookups stay case-insensitive.
type Resource struct {
	URL         string      `json:"url"`
	ByteSize    int64       `json:"byte_size"`
	Headers     http.Header `json:"headers,omitempty"`
	SourceVisit Visit       `json:"source_visit"`
}

// VisitMeasurement is the byte total for one page load plus the resources
// that produced it. TotalBytes equals the sum of resource sizes, after the
// return-visit safety floor has been applied.
type VisitMeasurement struct {
	TotalBytes int64      `json:"total_bytes"`
	Resources  []Resource `json:"resources,omitempty"`
	Mode       Mode       `json:"mode"`
}

// SumResources recomputes the byte total from the resource list.
func (vm *VisitMeasurement) SumResources() int64 {
	var total int64
	for _, r := range vm.Resources {
		total += r.ByteSize
	}
	return total
}

// MeasurementResult is the unified output of one measurement run. Both
// visits always share the same mode; a run never mixes strategies.
type MeasurementResult struct {
	URL         string           `json:"url"`
	FirstVisit  VisitMeasurement `json:"first_visit"`
	ReturnVisit VisitMeasurement `json:"return_visit"`
	Mode        Mode             `json:"mode"`
}
