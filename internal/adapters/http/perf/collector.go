// Package perf keeps a bounded in-memory record of request and query timings.
package perf

import (
	"math"
	"sort"
	"sync"
	"time"
)

// DefaultRingSize is the default number of entries kept.
const DefaultRingSize = 10000

// Kind distinguishes request entries from store query entries.
type Kind uint8

const (
	KindRequest Kind = iota
	KindQuery
)

// Entry is one timing record.
type Entry struct {
	Kind     Kind
	Label    string // "GET /trainer/schedule" or "SELECT member"
	Status   int    // HTTP status; queries use 500 for a failed statement
	Duration time.Duration
	At       time.Time
}

// Collector is a fixed-size ring of entries. When full the oldest entry is overwritten.
// Aggregation happens only in Report.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	total   int64
}

// NewCollector creates a collector holding up to size entries.
// size <= 0 uses DefaultRingSize.
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record stores e. A nil Collector discards it.
func (c *Collector) Record(e Entry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries[c.next] = e
	c.next = (c.next + 1) % len(c.entries)
	c.total++
	c.mu.Unlock()
}

// Total returns how many entries were ever recorded, including overwritten ones.
func (c *Collector) Total() int64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Stat aggregates the timings of one label.
type Stat struct {
	Label string
	Count int
	Avg   time.Duration
	Max   time.Duration
	Errs  int // entries with a 5xx status
}

// Report summarises the entries recorded since a point in time.
type Report struct {
	Requests       int
	P50, P95, P99  time.Duration
	SlowestRoutes  []Stat
	SlowestQueries []Stat
}

// Report aggregates entries newer than since, keeping the topN slowest labels by average.
// POST: Collector state is unchanged
func (c *Collector) Report(since time.Time, topN int) Report {
	if c == nil {
		return Report{}
	}
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	c.mu.Unlock()

	var durations []time.Duration
	routes := make(map[string]*accum)
	queries := make(map[string]*accum)
	for _, e := range buf {
		if e.At.IsZero() || e.At.Before(since) {
			continue
		}
		bucket := queries
		if e.Kind == KindRequest {
			bucket = routes
			durations = append(durations, e.Duration)
		}
		a, ok := bucket[e.Label]
		if !ok {
			a = &accum{}
			bucket[e.Label] = a
		}
		a.add(e)
	}

	rep := Report{
		Requests:       len(durations),
		SlowestRoutes:  slowest(routes, topN),
		SlowestQueries: slowest(queries, topN),
	}
	if len(durations) > 0 {
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
		rep.P50 = percentile(durations, 50)
		rep.P95 = percentile(durations, 95)
		rep.P99 = percentile(durations, 99)
	}
	return rep
}

type accum struct {
	count int
	sum   time.Duration
	max   time.Duration
	errs  int
}

func (a *accum) add(e Entry) {
	a.count++
	a.sum += e.Duration
	if e.Duration > a.max {
		a.max = e.Duration
	}
	if e.Status >= 500 {
		a.errs++
	}
}

// percentile interpolates the p-th percentile of sorted.
func percentile(sorted []time.Duration, p float64) time.Duration {
	idx := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return time.Duration(float64(sorted[lo])*(1-frac) + float64(sorted[hi])*frac)
}

func slowest(stats map[string]*accum, n int) []Stat {
	out := make([]Stat, 0, len(stats))
	for label, a := range stats {
		out = append(out, Stat{
			Label: label,
			Count: a.count,
			Avg:   a.sum / time.Duration(a.count),
			Max:   a.max,
			Errs:  a.errs,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Avg != out[j].Avg {
			return out[i].Avg > out[j].Avg
		}
		return out[i].Label < out[j].Label
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
