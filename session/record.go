// Package session accumulates per-session speaking statistics from the
// classification stream.
package session

import (
	"fmt"
	"math"
	"strings"
	"time"

	"hush/zone"
)

// Each drop out of the optimal zone costs DropPenalty points, up to
// MaxDropPenalty.
const (
	DropPenalty    = 5
	MaxDropPenalty = 80
)

// Event is one entry of the transition history.
type Event struct {
	State     zone.State `json:"state"`
	Time      time.Time  `json:"timestamp"`
	Intensity int        `json:"intensity"`
}

// Record is the summary of one session. Durations are whole seconds.
type Record struct {
	ID               string    `json:"id"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	TotalDuration    int       `json:"total_duration"`
	GreenZoneTime    int       `json:"green_zone_time"`
	PeakIntensity    int       `json:"peak_intensity"`
	DropCount        int       `json:"drop_count"`
	ConsistencyScore int       `json:"consistency_score"`
	Transitions      []Event   `json:"transitions"`
}

// ConsistencyScore rewards staying in the optimal zone. A session that
// never reached it scores 0 whatever the drop count.
func ConsistencyScore(drops, greenSeconds int) int {
	if greenSeconds <= 0 {
		return 0
	}
	penalty := min(drops*DropPenalty, MaxDropPenalty)
	return max(0, 100-penalty)
}

// SuccessRate is the share of the session spent in the optimal zone, in
// percent.
func (r Record) SuccessRate() float64 {
	if r.TotalDuration <= 0 {
		return 0
	}
	return float64(r.GreenZoneTime) / float64(r.TotalDuration) * 100
}

// StateCounts counts transition events per state. Every state is present
// in the result so it can be fed directly to a bar chart.
func (r Record) StateCounts() map[zone.State]int {
	counts := make(map[zone.State]int, len(zone.States))
	for _, s := range zone.States {
		counts[s] = 0
	}
	for _, ev := range r.Transitions {
		counts[ev.State]++
	}
	return counts
}

// Summary renders the record as a short multi-line text, used for the
// clipboard and the session log.
func (r Record) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s\n", r.StartTime.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Total time:   %s\n", FormatClock(r.TotalDuration))
	fmt.Fprintf(&b, "Green zone:   %s (%s)\n", FormatClock(r.GreenZoneTime), FormatPercent(r.SuccessRate()))
	fmt.Fprintf(&b, "Peak:         %d\n", r.PeakIntensity)
	fmt.Fprintf(&b, "Drops:        %d\n", r.DropCount)
	fmt.Fprintf(&b, "Consistency:  %d/100", r.ConsistencyScore)
	return b.String()
}

// FormatClock renders seconds as MM:SS. Minutes are not wrapped at 60.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatPercent renders a percentage rounded to an integer, e.g. "87%".
func FormatPercent(p float64) string {
	if math.IsNaN(p) || p < 0 {
		p = 0
	}
	return fmt.Sprintf("%d%%", int(math.Round(p)))
}
