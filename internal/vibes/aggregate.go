// Package vibes computes rollup statistics over a venue's vibe reports.
package vibes

import (
	"math"
	"time"

	"github.com/vibecheck/vibecheck/internal/model"
)

// queueRanks maps the 4-point queue scale onto ordinal ranks so the
// categorical values can be averaged and mapped back.
var queueRanks = map[model.QueueLength]int{
	model.QueueNone:   1,
	model.QueueShort:  2,
	model.QueueLong:   3,
	model.QueueInsane: 4,
}

var queueByRank = map[int]model.QueueLength{
	1: model.QueueNone,
	2: model.QueueShort,
	3: model.QueueLong,
	4: model.QueueInsane,
}

// Aggregate recomputes the rollup for one venue from its full non-flagged
// report history. Callers must exclude flagged reports; nothing is filtered
// here. An empty list yields the zero snapshot, never an error.
func Aggregate(reports []*model.VibeReport) model.VenueAggregate {
	return aggregateAt(time.Now(), reports)
}

func aggregateAt(now time.Time, reports []*model.VibeReport) model.VenueAggregate {
	agg := model.VenueAggregate{TotalVibes: len(reports)}
	if len(reports) == 0 {
		return agg
	}

	oneHourAgo := now.Add(-time.Hour)

	var (
		vibeSum, vibeN   int
		queueSum, queueN int
		coverSum         float64
		coverN           int
		genreCounts      = map[string]int{}
		topGenre         string
		topGenreCount    int
		last             time.Time
	)

	for _, r := range reports {
		if !r.SubmittedAt.Before(oneHourAgo) {
			agg.VibesLastHour++
		}
		if r.VibeLevel > 0 {
			vibeSum += r.VibeLevel
			vibeN++
		}
		if r.QueueLength != nil {
			if rank, ok := queueRanks[*r.QueueLength]; ok {
				queueSum += rank
				queueN++
			}
		}
		if r.CoverCharge != nil {
			coverSum += *r.CoverCharge
			coverN++
		}
		if r.MusicGenre != nil && *r.MusicGenre != "" {
			genreCounts[*r.MusicGenre]++
			// Strictly-greater keeps the first-encountered genre on ties.
			if genreCounts[*r.MusicGenre] > topGenreCount {
				topGenre = *r.MusicGenre
				topGenreCount = genreCounts[*r.MusicGenre]
			}
		}
		if r.SubmittedAt.After(last) {
			last = r.SubmittedAt
		}
	}

	if vibeN > 0 {
		v := round2(float64(vibeSum) / float64(vibeN))
		agg.AverageVibeLevel = &v
	}
	if queueN > 0 {
		mean := float64(queueSum) / float64(queueN)
		// Midpoint ties round toward the busier label.
		rank := int(math.Floor(mean + 0.5))
		q := queueByRank[rank]
		agg.AverageQueueLength = &q
	}
	if coverN > 0 {
		c := round2(coverSum / float64(coverN))
		agg.AverageCoverCharge = &c
	}
	if topGenreCount > 0 {
		g := topGenre
		agg.MostCommonMusicGenre = &g
	}
	if !last.IsZero() {
		t := last
		agg.LastVibeReportAt = &t
	}
	return agg
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
