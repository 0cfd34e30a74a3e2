// Package features reduces merged alert histories into per-object summary
// statistics.
package features

import (
	"sort"

	"ztf-alert-lab/internal/domain"
)

// Extract computes one FeatureRecord per merged alert: the mean of each
// requested field over all true detections, plus the peak (brightest)
// epoch per filter band as a modified Julian date. When fields is empty
// the default field set (ra, dec, distnr) is used. Rows are sorted
// ascending by object identifier.
//
// A nil value in the output means the statistic is undefined for the
// object: no true detection carried the field, or the band is empty.
func Extract(merged []domain.MergedAlert, fields []string) domain.FeatureTable {
	if len(fields) == 0 {
		fields = domain.DefaultFeatureFields
	}
	cols := make([]string, len(fields))
	copy(cols, fields)

	table := domain.FeatureTable{Fields: cols}
	for _, m := range merged {
		table.Rows = append(table.Rows, extractOne(m, cols))
	}

	sort.Slice(table.Rows, func(i, j int) bool {
		return table.Rows[i].ObjectID < table.Rows[j].ObjectID
	})
	return table
}

func extractOne(m domain.MergedAlert, fields []string) domain.FeatureRecord {
	detections := trueDetections(m)

	rec := domain.FeatureRecord{
		ObjectID: m.ObjectID,
		Means:    make(map[string]*float64, len(fields)),
		PeakMJD:  make(map[string]*float64, len(domain.FilterBands)),
	}

	for _, field := range fields {
		rec.Means[field] = fieldMean(detections, field)
	}
	for _, fid := range domain.FilterBands {
		rec.PeakMJD[domain.FilterNames[fid]] = peakMJD(detections, fid)
	}
	return rec
}

// trueDetections builds the full history (previous candidates plus the
// current candidate, counted once even if merging already placed it in
// the stored history) and keeps only genuine detections.
func trueDetections(m domain.MergedAlert) []domain.Detection {
	history := make([]domain.Detection, 0, len(m.PrevCandidates)+1)
	history = append(history, m.PrevCandidates...)

	currentKey := m.Candidate.Key()
	present := false
	for _, d := range m.PrevCandidates {
		if d.Key() == currentKey {
			present = true
			break
		}
	}
	if !present {
		history = append(history, m.Candidate)
	}

	var detections []domain.Detection
	for _, d := range history {
		if d.IsDetection() {
			detections = append(detections, d)
		}
	}
	return detections
}

// fieldMean returns the arithmetic mean of the named field over the
// detections that have it populated, or nil when none do.
func fieldMean(detections []domain.Detection, field string) *float64 {
	var sum float64
	var n int
	for _, d := range detections {
		if v := d.FieldValue(field); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}

// peakMJD returns the modified Julian date of the brightest (minimum
// magnitude) detection in the band, or nil when the band has none.
// Ties keep the first occurrence in iteration order; post-merge history
// order is not canonical, so equal-magnitude ties are arbitrary but
// deterministic for a given input.
func peakMJD(detections []domain.Detection, fid int) *float64 {
	var best *domain.Detection
	for i, d := range detections {
		if d.FID != fid {
			continue
		}
		if best == nil || *d.Magpsf < *best.Magpsf {
			best = &detections[i]
		}
	}
	if best == nil {
		return nil
	}
	mjd := best.JD - domain.JDOffsetMJD
	return &mjd
}
