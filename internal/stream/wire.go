package stream

import (
	"encoding/json"
	"fmt"

	"ztf-alert-lab/internal/domain"
)

// wireCandidate mirrors the archive's candidate mapping. jdstarthist is
// only meaningful on the current candidate; previous candidates carry it
// too but it is ignored there.
type wireCandidate struct {
	JD          float64  `json:"jd"`
	FID         int      `json:"fid"`
	RA          float64  `json:"ra"`
	Dec         float64  `json:"dec"`
	Magpsf      *float64 `json:"magpsf"`
	Sigmapsf    *float64 `json:"sigmapsf"`
	Distnr      *float64 `json:"distnr"`
	RB          *float64 `json:"rb"`
	JDStartHist *float64 `json:"jdstarthist"`
}

func (w wireCandidate) detection() domain.Detection {
	return domain.Detection{
		JD:       w.JD,
		FID:      w.FID,
		RA:       w.RA,
		Dec:      w.Dec,
		Magpsf:   w.Magpsf,
		Sigmapsf: w.Sigmapsf,
		Distnr:   w.Distnr,
		RB:       w.RB,
	}
}

// wireAlert mirrors one archive alert record.
type wireAlert struct {
	ObjectID      string          `json:"objectId"`
	Candidate     wireCandidate   `json:"candidate"`
	PrvCandidates []wireCandidate `json:"prv_candidates"`
}

// decodeAlert converts a raw archive record into a domain alert.
func decodeAlert(data json.RawMessage) (domain.Alert, error) {
	var w wireAlert
	if err := json.Unmarshal(data, &w); err != nil {
		return domain.Alert{}, fmt.Errorf("decode alert: %w", err)
	}
	if w.ObjectID == "" {
		return domain.Alert{}, fmt.Errorf("decode alert: missing objectId")
	}

	a := domain.Alert{
		ObjectID:  w.ObjectID,
		Candidate: w.Candidate.detection(),
	}
	if w.Candidate.JDStartHist != nil {
		a.JDStartHist = *w.Candidate.JDStartHist
	} else {
		a.JDStartHist = w.Candidate.JD
	}

	a.PrevCandidates = make([]domain.Detection, 0, len(w.PrvCandidates))
	for _, prv := range w.PrvCandidates {
		a.PrevCandidates = append(a.PrevCandidates, prv.detection())
	}
	return a, nil
}
