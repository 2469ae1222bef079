package driver

import "time"

// ArtifactReport describes one rendered and written artifact
type ArtifactReport struct {
	Template string
	Path     string
	Encoding string
	Bytes    int
	DryRun   bool
	Duration time.Duration
}

// Report is the outcome of a successful Run, in artifact order
type Report struct {
	Artifacts []ArtifactReport
	Duration  time.Duration
}

// TotalBytes sums the bytes written across all artifacts
func (r *Report) TotalBytes() int {
	total := 0
	for _, a := range r.Artifacts {
		total += a.Bytes
	}
	return total
}
