package utils

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ProgressPrinter renders upload progress as a single console line. Its
// Update method is a ProgressCallback.
type ProgressPrinter struct {
	out         io.Writer
	description string
	startTime   time.Time
	lastPrint   time.Time
	uploaded    int64
	total       int64
	finished    bool
	lastLineLen int
	mu          sync.Mutex
}

// NewProgressPrinter creates a printer writing to out
func NewProgressPrinter(out io.Writer, description string) *ProgressPrinter {
	return &ProgressPrinter{
		out:         out,
		description: description,
		startTime:   time.Now(),
	}
}

// Update records progress and redraws at most every 200ms, or when the
// upload completes
func (pp *ProgressPrinter) Update(uploaded, total int64, percentage float64) {
	pp.mu.Lock()
	defer pp.mu.Unlock()

	pp.uploaded = uploaded
	pp.total = total

	now := time.Now()
	if now.Sub(pp.lastPrint) > 200*time.Millisecond || uploaded >= total {
		pp.printProgress()
		pp.lastPrint = now
	}
}

// printProgress displays the current progress
func (pp *ProgressPrinter) printProgress() {
	if pp.total <= 0 {
		return
	}

	percentage := float64(pp.uploaded) / float64(pp.total) * 100

	elapsed := time.Since(pp.startTime)
	var speed string
	if elapsed.Seconds() > 0.1 {
		bytesPerSec := float64(pp.uploaded) / elapsed.Seconds()
		speed = fmt.Sprintf(" %s/s", formatBytes(int64(bytesPerSec)))
	}

	barWidth := 40
	filled := int(percentage * float64(barWidth) / 100)
	if filled > barWidth {
		filled = barWidth
	}

	bar := "[" + strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled) + "]"

	line := fmt.Sprintf("%s %s %.1f%% (%s/%s)%s",
		pp.description,
		bar,
		percentage,
		formatBytes(pp.uploaded),
		formatBytes(pp.total),
		speed)

	// Clear previous line if it was longer
	if pp.lastLineLen > len(line) {
		fmt.Fprintf(pp.out, "\r%s\r", strings.Repeat(" ", pp.lastLineLen))
	}

	fmt.Fprintf(pp.out, "\r%s", line)
	pp.lastLineLen = len(line)
}

// Finish ends the progress line. It is safe to call more than once.
func (pp *ProgressPrinter) Finish() {
	pp.mu.Lock()
	defer pp.mu.Unlock()

	if pp.finished {
		return
	}
	pp.finished = true
	if pp.lastLineLen > 0 {
		pp.printProgress()
		fmt.Fprintln(pp.out)
	}
}

// FormatBytes formats bytes in human readable format
func FormatBytes(bytes int64) string {
	return formatBytes(bytes)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%dB", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
