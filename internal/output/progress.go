package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// DownloadProgress renders a single updating progress line per file.
type DownloadProgress struct {
	mu       sync.Mutex
	out      io.Writer
	interval time.Duration
	now      func() time.Time
	last     time.Time
	current  string
	started  time.Time
}

// NewDownloadProgress writes progress to out at most every 100ms.
func NewDownloadProgress(out io.Writer) *DownloadProgress {
	return &DownloadProgress{out: out, interval: 100 * time.Millisecond, now: time.Now}
}

// Update records written of total bytes for name. It matches the download
// progress callback signature.
func (p *DownloadProgress) Update(name string, written, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if name != p.current {
		if p.current != "" {
			fmt.Fprintln(p.out)
		}
		p.current = name
		p.started = now
		p.last = time.Time{}
	}
	done := total > 0 && written >= total
	if !done && now.Sub(p.last) < p.interval {
		return
	}
	p.last = now

	line := fmt.Sprintf("\rDownloading %s: %s", name, HumanBytes(written))
	if total > 0 {
		line += fmt.Sprintf(" / %s (%d%%)", HumanBytes(total), written*100/total)
	}
	if elapsed := now.Sub(p.started).Seconds(); elapsed > 0 {
		line += fmt.Sprintf(" %s/s", HumanBytes(int64(float64(written)/elapsed)))
	}
	fmt.Fprint(p.out, line)
}

// Finish terminates the current progress line.
func (p *DownloadProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != "" {
		fmt.Fprintln(p.out)
		p.current = ""
	}
}

// HumanBytes formats n with binary units.
func HumanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
