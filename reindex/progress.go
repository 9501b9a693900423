package reindex

import (
	"fmt"
	"io"
	"time"
)

// progressReporter writes line-based status as chunk batches complete.
// Reports are throttled to one line per interval chunks so a large corpus
// does not flood the writer; completion always reports.
type progressReporter struct {
	writer    io.Writer
	total     int
	interval  int
	done      int
	batches   int
	sinceLast int
	begun     time.Time
}

func newProgressReporter(writer io.Writer, total, interval int) *progressReporter {
	if interval <= 0 {
		interval = 1
	}
	return &progressReporter{
		writer:   writer,
		total:    total,
		interval: interval,
		begun:    time.Now(),
	}
}

// BatchDone records a completed batch of n chunks and reports when the
// throttle interval has been crossed or the run is complete.
func (p *progressReporter) BatchDone(n int) {
	p.done += n
	if p.done > p.total {
		p.done = p.total
	}
	p.batches++
	p.sinceLast += n

	if p.sinceLast < p.interval && p.done < p.total {
		return
	}
	p.sinceLast = 0

	fmt.Fprintf(p.writer, "reindexed %d/%d chunks (%.1f%%), %d batches, %.1f chunks/sec\n",
		p.done, p.total, p.percent(), p.batches, p.rate())
}

// Elapsed returns how long the run has been going.
func (p *progressReporter) Elapsed() time.Duration {
	return time.Since(p.begun)
}

func (p *progressReporter) percent() float64 {
	if p.total == 0 {
		return 100.0
	}
	return float64(p.done) / float64(p.total) * 100.0
}

func (p *progressReporter) rate() float64 {
	elapsed := time.Since(p.begun).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(p.done) / elapsed
}
