/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics.go
Description: Run metrics persistence. Writes one timestamped JSON file per run under
<dir>/<kind>/ so successive runs can be compared.
*/

package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RunMetrics are the timings and counts of one pipeline run
type RunMetrics struct {
	RunID       string        `json:"run_id"`
	StartedAt   time.Time     `json:"started_at"`
	Sources     int           `json:"sources"`
	Records     int           `json:"records"`
	Fields      int           `json:"fields"`
	Individuals int           `json:"individuals"`
	Skipped     int           `json:"skipped"`
	Recovered   int           `json:"recovered"`
	Bytes       int           `json:"bytes"`
	FetchTime   time.Duration `json:"fetch_time_ns"`
	InferTime   time.Duration `json:"infer_time_ns"`
	CoerceTime  time.Duration `json:"coerce_time_ns"`
	RenderTime  time.Duration `json:"render_time_ns"`
	TotalTime   time.Duration `json:"total_time_ns"`
}

// WriteMetricsResult writes a result to dir/kind with timestamp, kind and version in the name
func WriteMetricsResult(dir, kind, version string, result interface{}) (string, error) {
	metricsDir := filepath.Join(dir, kind)
	if err := os.MkdirAll(metricsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create metrics directory: %w", err)
	}

	// 2024-06-11_01-30-00.000_render_v1.0.0.json
	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	filePath := filepath.Join(metricsDir, fmt.Sprintf("%s_%s_v%s.json", timestamp, kind, version))

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write metrics file: %w", err)
	}
	return filePath, nil
}
