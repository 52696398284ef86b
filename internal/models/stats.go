package models

import "time"

// DailyErrorCount is the number of records on one calendar day
type DailyErrorCount struct {
	Date  time.Time `json:"date"`
	Count int64     `json:"count"`
}

// ErrorCategoryStat is the count for one dashboard display category
type ErrorCategoryStat struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// ErrorTypeCount is a raw grouping row keyed by error type.
// ErrorType is nil when the stored key is missing.
type ErrorTypeCount struct {
	ErrorType *string `json:"error_type"`
	Count     int64   `json:"count"`
}

// ChartData is the shape consumed by the dashboard bar chart
type ChartData struct {
	Labels []string `json:"labels"`
	Counts []int64  `json:"counts"`
}
