package archive

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptyQuery is returned when a query selects neither objects nor an
// epoch range.
var ErrEmptyQuery = errors.New("query requires object identifiers or an epoch range")

// JDRange is a half-open Julian date interval [Gt, Lt).
type JDRange struct {
	Gt float64 `json:"$gt"`
	Lt float64 `json:"$lt"`
}

// Query describes one archive stream query: by object identifiers, by
// epoch range, or both, with an optional filter on candidate fields.
type Query struct {
	ObjectIDs []string
	JDRange   *JDRange
	Candidate map[string]any
}

// NewObjectQuery builds a query selecting alerts for the given object
// identifiers. The candidate filter may be nil.
func NewObjectQuery(objectIDs []string, candidate map[string]any) (Query, error) {
	if len(objectIDs) == 0 {
		return Query{}, ErrEmptyQuery
	}
	return Query{ObjectIDs: objectIDs, Candidate: candidate}, nil
}

// NewEpochQuery builds a query selecting alerts within [startDate, endDate)
// given as calendar date strings. The candidate filter may be nil.
func NewEpochQuery(startDate, endDate string, candidate map[string]any) (Query, error) {
	startJD, err := ParseDateToJD(startDate)
	if err != nil {
		return Query{}, fmt.Errorf("start date: %w", err)
	}
	endJD, err := ParseDateToJD(endDate)
	if err != nil {
		return Query{}, fmt.Errorf("end date: %w", err)
	}
	return Query{JDRange: &JDRange{Gt: startJD, Lt: endJD}, Candidate: candidate}, nil
}

// Validate checks that at least one selection mode is present.
func (q Query) Validate() error {
	if len(q.ObjectIDs) == 0 && q.JDRange == nil {
		return ErrEmptyQuery
	}
	return nil
}

// MarshalJSON encodes the query in the archive endpoint's shape. The
// candidate filter is always present, as an empty object when unset; the
// empty map is built per call so marshalling never shares state between
// queries.
func (q Query) MarshalJSON() ([]byte, error) {
	payload := make(map[string]any, 3)
	if len(q.ObjectIDs) > 0 {
		payload["objectId"] = q.ObjectIDs
	}
	if q.JDRange != nil {
		payload["jd"] = q.JDRange
	}
	if q.Candidate != nil {
		payload["candidate"] = q.Candidate
	} else {
		payload["candidate"] = map[string]any{}
	}
	return json.Marshal(payload)
}
