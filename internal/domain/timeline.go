package domain

import (
	"slices"
)

// Interval is a half-open span of years [Start, End). An ongoing interval
// has no End of its own; its length is measured up to the reference year
// supplied at computation time, but the Ongoing flag is preserved so
// callers can display it as "present".
type Interval struct {
	Start   int  `json:"start"`
	End     int  `json:"end,omitempty"`
	Ongoing bool `json:"ongoing,omitempty"`
}

// EffectiveEnd returns the end year used for length computations.
func (iv Interval) EffectiveEnd(referenceYear int) int {
	if iv.Ongoing {
		return referenceYear
	}
	return iv.End
}

// Years returns the length of the interval. Zero-length, inverted and
// unstarted intervals have length zero.
func (iv Interval) Years(referenceYear int) int {
	if iv.Start <= 0 {
		return 0
	}
	end := iv.EffectiveEnd(referenceYear)
	if end <= iv.Start {
		return 0
	}
	return end - iv.Start
}

// Span is one maximal non-overlapping stretch of a Timeline.
type Span struct {
	Start   int  `json:"start"`
	End     int  `json:"end"`
	Ongoing bool `json:"ongoing,omitempty"`
}

// Years returns the span's length.
func (s Span) Years() int { return s.End - s.Start }

// Timeline is the union of a set of intervals.
type Timeline struct {
	Spans []Span `json:"spans,omitempty"`

	// RawYears sums each interval's length individually.
	RawYears int `json:"raw_years"`

	// UniqueYears is the length of the union.
	UniqueYears int `json:"unique_years"`

	// HasOverlap is true when some year was counted more than once in RawYears.
	HasOverlap bool `json:"has_overlap"`
}

// MergeIntervals reduces intervals to a Timeline. Intervals that overlap or
// touch are merged; intervals of zero or negative length are dropped and
// contribute to neither RawYears nor UniqueYears. The input slice is not
// modified.
func MergeIntervals(intervals []Interval, referenceYear int) Timeline {
	type bounded struct {
		start, end int
		ongoing    bool
	}

	valid := make([]bounded, 0, len(intervals))
	raw := 0
	for _, iv := range intervals {
		years := iv.Years(referenceYear)
		if years == 0 {
			continue
		}
		raw += years
		valid = append(valid, bounded{
			start:   iv.Start,
			end:     iv.EffectiveEnd(referenceYear),
			ongoing: iv.Ongoing,
		})
	}

	if len(valid) == 0 {
		return Timeline{}
	}

	slices.SortFunc(valid, func(a, b bounded) int {
		if a.start != b.start {
			return a.start - b.start
		}
		return a.end - b.end
	})

	spans := make([]Span, 0, len(valid))
	current := Span{Start: valid[0].start, End: valid[0].end, Ongoing: valid[0].ongoing}
	for _, iv := range valid[1:] {
		if iv.start <= current.End {
			switch {
			case iv.end > current.End:
				current.End = iv.end
				current.Ongoing = iv.ongoing
			case iv.end == current.End:
				current.Ongoing = current.Ongoing || iv.ongoing
			}
			continue
		}
		spans = append(spans, current)
		current = Span{Start: iv.start, End: iv.end, Ongoing: iv.ongoing}
	}
	spans = append(spans, current)

	unique := 0
	for _, s := range spans {
		unique += s.Years()
	}

	return Timeline{
		Spans:       spans,
		RawYears:    raw,
		UniqueYears: unique,
		HasOverlap:  raw > unique,
	}
}

// WeightedInterval attaches a multiplier to an interval.
type WeightedInterval struct {
	Interval Interval
	Weight   float64
}

// WeightedUniqueYears sums covered years once each, weighting every year by
// the largest multiplier among the intervals covering it. With all weights
// equal to one the result equals MergeIntervals(...).UniqueYears.
func WeightedUniqueYears(intervals []WeightedInterval, referenceYear int) float64 {
	type bounded struct {
		start, end int
		weight     float64
	}

	valid := make([]bounded, 0, len(intervals))
	bounds := make([]int, 0, 2*len(intervals))
	for _, wi := range intervals {
		if wi.Interval.Years(referenceYear) == 0 || wi.Weight <= 0 {
			continue
		}
		b := bounded{
			start:  wi.Interval.Start,
			end:    wi.Interval.EffectiveEnd(referenceYear),
			weight: wi.Weight,
		}
		valid = append(valid, b)
		bounds = append(bounds, b.start, b.end)
	}
	if len(valid) == 0 {
		return 0
	}

	slices.Sort(bounds)
	bounds = slices.Compact(bounds)

	total := 0.0
	for i := 0; i+1 < len(bounds); i++ {
		lo, hi := bounds[i], bounds[i+1]
		best := 0.0
		for _, b := range valid {
			if b.start <= lo && b.end >= hi && b.weight > best {
				best = b.weight
			}
		}
		total += float64(hi-lo) * best
	}
	return total
}
