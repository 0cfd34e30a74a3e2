// Package merge consolidates per-epoch archive alerts into one alert per
// object with a deduplicated detection history.
package merge

import (
	"sort"

	"ztf-alert-lab/internal/domain"
)

// Merge groups alerts by object identifier and consolidates each group
// into one MergedAlert. Output is sorted ascending by object identifier.
// Inputs are never mutated; every output is freshly allocated.
func Merge(alerts []domain.Alert) []domain.MergedAlert {
	groups := make(map[string][]domain.Alert)
	for _, a := range alerts {
		groups[a.ObjectID] = append(groups[a.ObjectID], a)
	}

	order := make([]string, 0, len(groups))
	for objectID := range groups {
		order = append(order, objectID)
	}
	sort.Strings(order)

	merged := make([]domain.MergedAlert, 0, len(order))
	for _, objectID := range order {
		merged = append(merged, mergeGroup(groups[objectID]))
	}
	return merged
}

// mergeGroup consolidates the alerts for a single object.
func mergeGroup(group []domain.Alert) domain.MergedAlert {
	if len(group) == 1 {
		a := group[0].Clone()
		return domain.MergedAlert{
			ObjectID:       a.ObjectID,
			Candidate:      a.Candidate,
			PrevCandidates: a.PrevCandidates,
			JDStartHist:    a.JDStartHist,
		}
	}

	// Latest alert: maximum current-candidate JD. On equal JD the first
	// maximal element in input order wins.
	latestIdx := 0
	for i, a := range group {
		if a.Candidate.JD > group[latestIdx].Candidate.JD {
			latestIdx = i
		}
	}

	minStart := group[0].JDStartHist
	for _, a := range group[1:] {
		if a.JDStartHist < minStart {
			minStart = a.JDStartHist
		}
	}

	latest := group[latestIdx].Clone()

	// Seed with the latest alert's full window, current candidate
	// included, so a value-equal detection arriving in another alert's
	// window can never re-enter the history.
	history := latest.PrevCandidates
	seen := make(map[domain.DetectionKey]struct{}, len(history)+1)
	seen[latest.Candidate.Key()] = struct{}{}
	for _, d := range history {
		seen[d.Key()] = struct{}{}
	}

	// Remaining alerts, most recent first. Stable sort keeps input order
	// on equal timestamps.
	rest := make([]domain.Alert, 0, len(group)-1)
	for i, a := range group {
		if i != latestIdx {
			rest = append(rest, a)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return rest[i].Candidate.JD > rest[j].Candidate.JD
	})

	// Walk each alert's history plus its current candidate; prepend
	// anything not yet present by value.
	for _, a := range rest {
		walk := make([]domain.Detection, 0, len(a.PrevCandidates)+1)
		walk = append(walk, a.PrevCandidates...)
		walk = append(walk, a.Candidate)

		for _, d := range walk {
			key := d.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			history = append([]domain.Detection{d.Clone()}, history...)
		}
	}

	return domain.MergedAlert{
		ObjectID:       latest.ObjectID,
		Candidate:      latest.Candidate,
		PrevCandidates: history,
		JDStartHist:    minStart,
	}
}
