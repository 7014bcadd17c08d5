package logging

// ProgressReporter logs row progress for long-running table work every
// interval rows.
type ProgressReporter struct {
	table    string
	total    int64
	current  int64
	interval int64
}

// NewProgressReporter creates a new progress reporter. A non-positive
// interval disables intermediate reports.
func NewProgressReporter(table string, total, interval int64) *ProgressReporter {
	return &ProgressReporter{
		table:    table,
		total:    total,
		interval: interval,
	}
}

// Update advances the counter and logs when an interval boundary is crossed.
func (p *ProgressReporter) Update(rows int64) {
	old := p.current
	p.current += rows

	if p.interval <= 0 {
		return
	}
	if p.current/p.interval > old/p.interval {
		var pct float64
		if p.total > 0 {
			pct = float64(p.current) / float64(p.total) * 100
		}
		Info().
			Str("table", p.table).
			Int64("rows", p.current).
			Int64("total", p.total).
			Float64("percent", pct).
			Msg("Processing rows")
	}
}

// Current returns the number of rows processed so far.
func (p *ProgressReporter) Current() int64 {
	return p.current
}
