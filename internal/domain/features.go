package domain

// JDOffsetMJD converts a Julian date to a modified Julian date.
const JDOffsetMJD = 2400000.5

// FilterBands lists the archive filter identifiers in canonical order.
var FilterBands = []int{1, 2, 3}

// FilterNames maps filter identifiers to band names.
var FilterNames = map[int]string{
	1: "g",
	2: "r",
	3: "i",
}

// DefaultFeatureFields are the mean columns extracted when the caller does
// not request a specific field set.
var DefaultFeatureFields = []string{"ra", "dec", "distnr"}

// FeatureRecord holds the summary statistics for one object.
// A nil value means the statistic is undefined for the object (no
// contributing detections), which is distinct from zero.
type FeatureRecord struct {
	ObjectID string
	Means    map[string]*float64 // keyed by requested field name
	PeakMJD  map[string]*float64 // keyed by band name (g, r, i)
}

// FeatureTable is the tabular pipeline output: one row per object,
// sorted ascending by object identifier.
type FeatureTable struct {
	Fields []string // mean column order
	Rows   []FeatureRecord
}

// Columns returns the full column order: mean fields followed by the
// per-band peak epoch columns.
func (t FeatureTable) Columns() []string {
	cols := make([]string, 0, len(t.Fields)+len(FilterBands))
	cols = append(cols, t.Fields...)
	for _, fid := range FilterBands {
		cols = append(cols, "peak_mjd_"+FilterNames[fid])
	}
	return cols
}

// Value returns the named column value for a record, or nil when the
// statistic is undefined.
func (r FeatureRecord) Value(column string) *float64 {
	if v, ok := r.Means[column]; ok {
		return v
	}
	for _, name := range FilterNames {
		if column == "peak_mjd_"+name {
			return r.PeakMJD[name]
		}
	}
	return nil
}
