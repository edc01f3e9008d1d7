package models

import "time"

// ClientMetricsSnapshot summarises client-side telemetry for the console.
type ClientMetricsSnapshot struct {
	APIRequestsTotal     uint64            `json:"apiRequestsTotal"`
	AverageAPIRequestMs  float64           `json:"averageApiRequestMs"`
	FailuresByKind       map[string]uint64 `json:"failuresByKind"`
	GuardRejections      uint64            `json:"guardRejections"`
	CacheHitRatio        float64           `json:"cacheHitRatio"`
	ConsoleRequestsTotal uint64            `json:"consoleRequestsTotal"`
	Goroutines           int               `json:"goroutines"`
	GeneratedAt          time.Time         `json:"generatedAt"`
}
