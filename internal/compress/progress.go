// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compress

// ProgressFunc receives completion percentages in [0, 100]. It may be nil.
type ProgressFunc func(percent int)

// report calls fn when it is non-nil.
func report(fn ProgressFunc, percent int) {
	if fn != nil {
		fn(percent)
	}
}

// progress guards a ProgressFunc so the caller only ever sees increasing
// values within [0, 100].
type progress struct {
	fn   ProgressFunc
	last int
}

func newProgress(fn ProgressFunc) *progress {
	return &progress{fn: fn, last: -1}
}

func (p *progress) report(percent int) {
	percent = min(max(percent, 0), 100)
	if percent <= p.last {
		return
	}
	p.last = percent
	report(p.fn, percent)
}

// span returns a ProgressFunc that maps a nested operation's 0-100 onto
// [lo, hi] of this progress.
func (p *progress) span(lo, hi int) ProgressFunc {
	return func(percent int) {
		percent = min(max(percent, 0), 100)
		p.report(lo + (hi-lo)*percent/100)
	}
}
