package summary

import (
	"fmt"
	"math"
	"sort"
	"time"

	"weathernow/datasource"
	"weathernow/models"
)

const dateKeyLayout = "2006-01-02"

// NoonWindow is the inclusive range of local hours treated as "around noon"
// when picking a day's representative sample
type NoonWindow struct {
	From int
	To   int
}

// Contains reports whether hour lies in the window
func (w NoonWindow) Contains(hour int) bool {
	return hour >= w.From && hour <= w.To
}

// MaxDays is the most daily summaries Summarize ever returns
const MaxDays = 5

// Options controls the summarization policy
type Options struct {
	NoonWindow   NoonWindow
	Days         int    // maximum number of daily summaries, clamped to 1..MaxDays
	FallbackIcon string // used when the representative sample has no icon
}

// DefaultOptions returns the standard policy: noon window [11,14], five days,
// "01d" fallback icon
func DefaultOptions() Options {
	return Options{
		NoonWindow:   NoonWindow{From: 11, To: 14},
		Days:         MaxDays,
		FallbackIcon: "01d",
	}
}

// dayLimit treats an unset or oversized Days as MaxDays
func (o Options) dayLimit() int {
	if o.Days <= 0 || o.Days > MaxDays {
		return MaxDays
	}
	return o.Days
}

type localSample struct {
	local  time.Time // UTC representation of the offset-shifted timestamp
	sample models.ForecastSample
}

type dayBucket struct {
	key     string
	samples []localSample
}

// Summarize collapses 3-hour forecast samples into at most opts.Days daily
// summaries, ascending by local date. Samples are grouped by the calendar date
// of dt + timezone offset read as UTC.
func Summarize(p models.ForecastPayload, opts Options) ([]models.DailySummary, error) {
	if p.List == nil {
		return nil, fmt.Errorf("%w: forecast list is absent", datasource.ErrInvalidPayload)
	}

	buckets := make(map[string]*dayBucket)
	order := make([]*dayBucket, 0, 6)
	for i, s := range p.List {
		if s.Main == nil || s.Main.TempMin == nil || s.Main.TempMax == nil {
			return nil, fmt.Errorf("%w: sample %d has no temperature range", datasource.ErrInvalidPayload, i)
		}
		local := time.Unix(s.Dt+p.City.Timezone, 0).UTC()
		key := local.Format(dateKeyLayout)

		b, ok := buckets[key]
		if !ok {
			b = &dayBucket{key: key}
			buckets[key] = b
			order = append(order, b)
		}
		b.samples = append(b.samples, localSample{local: local, sample: s})
	}

	sort.Slice(order, func(i, j int) bool { return order[i].key < order[j].key })
	if limit := opts.dayLimit(); len(order) > limit {
		order = order[:limit]
	}

	days := make([]models.DailySummary, 0, len(order))
	for _, b := range order {
		days = append(days, summarizeDay(b, opts))
	}
	return days, nil
}

func summarizeDay(b *dayBucket, opts Options) models.DailySummary {
	rep := representative(b.samples, opts.NoonWindow)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range b.samples {
		lo = math.Min(lo, *s.sample.Main.TempMin)
		hi = math.Max(hi, *s.sample.Main.TempMax)
	}

	day := models.DailySummary{
		DateKey: b.key,
		Weekday: rep.local.Format("Mon"),
		Min:     round(lo),
		Max:     round(hi),
		Icon:    opts.FallbackIcon,
	}
	if len(rep.sample.Weather) > 0 {
		day.Description = rep.sample.Weather[0].Description
		if icon := rep.sample.Weather[0].Icon; icon != "" {
			day.Icon = icon
		}
	}
	return day
}

// representative returns the first sample inside the noon window, or the
// middle sample when none qualifies. samples is never empty.
func representative(samples []localSample, window NoonWindow) localSample {
	for _, s := range samples {
		if window.Contains(s.local.Hour()) {
			return s
		}
	}
	return samples[len(samples)/2]
}
