package domain

// Detection represents a single observational measurement from the archive.
// A detection with a nil Magpsf is a non-detection upper limit.
type Detection struct {
	JD       float64  // Julian date of the observation
	FID      int      // filter band identifier (1=g, 2=r, 3=i)
	RA       float64  // right ascension, degrees
	Dec      float64  // declination, degrees
	Magpsf   *float64 // PSF-fit magnitude (nil for upper limits)
	Sigmapsf *float64 // 1-sigma magnitude uncertainty
	Distnr   *float64 // distance to nearest reference source, arcsec
	RB       *float64 // real-bogus score
}

// DetectionKey is a comparable value identity for a Detection.
// Optional fields are encoded as (present, value) pairs so that nil and
// zero remain distinct.
type DetectionKey struct {
	JD          float64
	FID         int
	RA          float64
	Dec         float64
	HasMagpsf   bool
	Magpsf      float64
	HasSigmapsf bool
	Sigmapsf    float64
	HasDistnr   bool
	Distnr      float64
	HasRB       bool
	RB          float64
}

// Key returns the value identity used for deduplication during merging.
func (d Detection) Key() DetectionKey {
	k := DetectionKey{
		JD:  d.JD,
		FID: d.FID,
		RA:  d.RA,
		Dec: d.Dec,
	}
	if d.Magpsf != nil {
		k.HasMagpsf = true
		k.Magpsf = *d.Magpsf
	}
	if d.Sigmapsf != nil {
		k.HasSigmapsf = true
		k.Sigmapsf = *d.Sigmapsf
	}
	if d.Distnr != nil {
		k.HasDistnr = true
		k.Distnr = *d.Distnr
	}
	if d.RB != nil {
		k.HasRB = true
		k.RB = *d.RB
	}
	return k
}

// IsDetection reports whether the record is a genuine detection rather
// than a non-detection upper limit.
func (d Detection) IsDetection() bool {
	return d.Magpsf != nil
}

// FieldValue returns a pointer to the named scalar field, or nil when the
// field is absent on this detection. Unknown field names return nil.
func (d Detection) FieldValue(name string) *float64 {
	switch name {
	case "jd":
		v := d.JD
		return &v
	case "ra":
		v := d.RA
		return &v
	case "dec":
		v := d.Dec
		return &v
	case "magpsf":
		return d.Magpsf
	case "sigmapsf":
		return d.Sigmapsf
	case "distnr":
		return d.Distnr
	case "rb":
		return d.RB
	}
	return nil
}

// Clone returns a deep copy of the detection.
func (d Detection) Clone() Detection {
	c := d
	c.Magpsf = cloneFloat(d.Magpsf)
	c.Sigmapsf = cloneFloat(d.Sigmapsf)
	c.Distnr = cloneFloat(d.Distnr)
	c.RB = cloneFloat(d.RB)
	return c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Alert is one archive record for one object at one epoch: the current
// detection plus the detection history the archive accumulated up to that
// epoch.
type Alert struct {
	ObjectID       string
	Candidate      Detection
	PrevCandidates []Detection // ordered as received from the archive
	JDStartHist    float64     // earliest epoch contributing to this alert's window
}

// Clone returns a deep copy of the alert.
func (a Alert) Clone() Alert {
	c := a
	c.Candidate = a.Candidate.Clone()
	c.PrevCandidates = make([]Detection, len(a.PrevCandidates))
	for i, d := range a.PrevCandidates {
		c.PrevCandidates[i] = d.Clone()
	}
	return c
}

// MergedAlert is the consolidated alert for one object identifier.
// PrevCandidates holds the deduplicated union of every detection seen for
// the object across all contributing alerts; consumers must treat its
// order as unspecified.
type MergedAlert struct {
	ObjectID       string
	Candidate      Detection
	PrevCandidates []Detection
	JDStartHist    float64 // minimum history start across contributing alerts
}
