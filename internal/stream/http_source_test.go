package stream

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://archive.test/api/ztf/archive/v3"

func newMockedSource(t *testing.T) *HTTPSource {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
	return NewHTTPSource(testBaseURL, "secret-token")
}

const alertJSON = `{
	"objectId": "ZTF20aaaaaaa",
	"candidate": {"jd": 2459002.5, "fid": 1, "ra": 120.5, "dec": -30.25, "magpsf": 18.2, "jdstarthist": 2458998.5},
	"prv_candidates": [
		{"jd": 2459001.5, "fid": 2, "ra": 120.5, "dec": -30.25, "magpsf": 18.9},
		{"jd": 2459000.5, "fid": 1, "ra": 120.5, "dec": -30.25}
	]
}`

func TestHTTPSource_SingleChunk(t *testing.T) {
	source := newMockedSource(t)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/stream/tok/chunk",
		httpmock.NewStringResponder(http.StatusOK,
			fmt.Sprintf(`{"alerts": [%s], "chunk": 7, "remaining": {"chunks": 0}}`, alertJSON)))

	acked := false
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+"/stream/tok/chunk/7/acknowledge",
		func(req *http.Request) (*http.Response, error) {
			acked = true
			assert.Equal(t, "bearer secret-token", req.Header.Get("Authorization"))
			return httpmock.NewStringResponse(http.StatusOK, "{}"), nil
		})

	alerts, err := source.GetAlerts(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.True(t, acked)

	a := alerts[0]
	assert.Equal(t, "ZTF20aaaaaaa", a.ObjectID)
	assert.Equal(t, 2459002.5, a.Candidate.JD)
	assert.Equal(t, 1, a.Candidate.FID)
	require.NotNil(t, a.Candidate.Magpsf)
	assert.Equal(t, 18.2, *a.Candidate.Magpsf)
	assert.Equal(t, 2458998.5, a.JDStartHist)
	require.Len(t, a.PrevCandidates, 2)
	// Second history entry has no magpsf: a non-detection upper limit.
	assert.Nil(t, a.PrevCandidates[1].Magpsf)
}

func TestHTTPSource_PaginatesUntilNoChunksRemain(t *testing.T) {
	source := newMockedSource(t)

	chunkCalls := 0
	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/stream/tok/chunk",
		func(*http.Request) (*http.Response, error) {
			chunkCalls++
			remaining := 1
			if chunkCalls >= 2 {
				remaining = 0
			}
			body := fmt.Sprintf(`{"alerts": [%s], "chunk": %d, "remaining": {"chunks": %d}}`,
				alertJSON, chunkCalls, remaining)
			return httpmock.NewStringResponse(http.StatusOK, body), nil
		})
	httpmock.RegisterResponder(http.MethodPost, `=~/stream/tok/chunk/\d+/acknowledge$`,
		httpmock.NewStringResponder(http.StatusOK, "{}"))

	alerts, err := source.GetAlerts(context.Background(), "tok")
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
	assert.Equal(t, 2, chunkCalls)
}

func TestHTTPSource_LockedMapsToNotReady(t *testing.T) {
	source := newMockedSource(t)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/stream/tok/chunk",
		httpmock.NewStringResponder(http.StatusLocked, `{"detail": "stream is being built"}`))

	_, err := source.GetAlerts(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrStreamNotReady)
}

func TestHTTPSource_OtherStatusMapsToStreamFailure(t *testing.T) {
	source := newMockedSource(t)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/stream/tok/chunk",
		httpmock.NewStringResponder(http.StatusBadGateway, "bad gateway"))

	_, err := source.GetAlerts(context.Background(), "tok")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStreamFailure)
	assert.NotErrorIs(t, err, ErrStreamNotReady)
}

func TestHTTPSource_MalformedAlertIsStreamFailure(t *testing.T) {
	source := newMockedSource(t)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/stream/tok/chunk",
		httpmock.NewStringResponder(http.StatusOK,
			`{"alerts": [{"candidate": {"jd": 1}}], "chunk": 1, "remaining": {"chunks": 0}}`))

	_, err := source.GetAlerts(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrStreamFailure)
}
