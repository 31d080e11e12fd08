package worker

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const barWidth = 30

// Snapshot is a point-in-time view of a Progress.
type Snapshot struct {
	Completed int
	Total     int
	Failed    int
	Elapsed   time.Duration
}

// Succeeded is the number of completed tasks without error.
func (s Snapshot) Succeeded() int {
	return s.Completed - s.Failed
}

// Rate is completed tasks per second.
func (s Snapshot) Rate() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Completed) / s.Elapsed.Seconds()
}

// ETA estimates the remaining time from the current rate.
func (s Snapshot) ETA() time.Duration {
	rate := s.Rate()
	if s.Completed == 0 || rate <= 0 {
		return 0
	}
	return time.Duration(float64(s.Total-s.Completed)/rate) * time.Second
}

// Progress tracks batch progress and optionally draws a bar on a terminal.
type Progress struct {
	startTime time.Time
	output    io.Writer
	total     int
	completed int
	failed    int
	mu        sync.RWMutex
	enabled   bool
}

// NewProgress creates a progress tracker that draws to stderr when enabled.
func NewProgress(total int, enabled bool) *Progress {
	return &Progress{
		total:     total,
		startTime: time.Now(),
		output:    os.Stderr,
		enabled:   enabled,
	}
}

// Update records the completion of a task.
func (p *Progress) Update(completed, total, failed int) {
	p.mu.Lock()
	p.completed = completed
	p.total = total
	p.failed = failed
	p.mu.Unlock()

	if p.enabled {
		p.Print()
	}
}

// Callback returns a ProgressFunc suitable for use with Pool.Config.
func (p *Progress) Callback() ProgressFunc {
	return p.Update
}

// Snapshot returns the current counters.
func (p *Progress) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return Snapshot{
		Completed: p.completed,
		Total:     p.total,
		Failed:    p.failed,
		Elapsed:   time.Since(p.startTime),
	}
}

// Print redraws the progress line.
func (p *Progress) Print() {
	fmt.Fprint(p.output, "\r"+renderLine(p.Snapshot())+"          ")
}

// Done prints the final progress and a newline.
func (p *Progress) Done() {
	if p.enabled {
		p.Print()
		fmt.Fprintln(p.output)
	}
}

// Summary returns a one-line summary of the completed work.
func (p *Progress) Summary() string {
	s := p.Snapshot()
	return fmt.Sprintf("Recolored %d/%d textures (%d failed) in %s (%.1f textures/sec)",
		s.Succeeded(), s.Total, s.Failed, formatDuration(s.Elapsed), s.Rate())
}

func renderLine(s Snapshot) string {
	ratio := 1.0
	if s.Total > 0 {
		ratio = float64(s.Completed) / float64(s.Total)
	}
	filled := int(ratio * barWidth)
	if filled > barWidth {
		filled = barWidth
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s%s] %d/%d textures",
		strings.Repeat("█", filled), strings.Repeat("░", barWidth-filled), s.Completed, s.Total)
	if s.Failed > 0 {
		fmt.Fprintf(&b, " (%d failed)", s.Failed)
	}
	fmt.Fprintf(&b, " - %.1f textures/sec", s.Rate())
	if eta := s.ETA(); eta > 0 && s.Completed < s.Total {
		fmt.Fprintf(&b, " - ETA: %s", formatDuration(eta))
	}
	if s.Completed == s.Total {
		fmt.Fprintf(&b, " - Done in %s", formatDuration(s.Elapsed))
	}
	return b.String()
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", hours, mins)
}
