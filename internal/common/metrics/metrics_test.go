package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordScore(t *testing.T) {
	before := testutil.ToFloat64(MatchScoresTotal.WithLabelValues("rest", TransportREST))

	RecordScore("rest", TransportREST, 100)

	assert.Equal(t, before+1, testutil.ToFloat64(MatchScoresTotal.WithLabelValues("rest", TransportREST)))
}

func TestRecordScoreError(t *testing.T) {
	before := testutil.ToFloat64(MatchScoreErrors.WithLabelValues(TransportAgent, "PARSE_ERROR"))
	RecordScoreError(TransportAgent, "PARSE_ERROR")
	assert.Equal(t, before+1, testutil.ToFloat64(MatchScoreErrors.WithLabelValues(TransportAgent, "PARSE_ERROR")))
}

func TestTrackJob(t *testing.T) {
	const task = "metrics-test-task"

	done := TrackJob(task)
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsActive.WithLabelValues(task)))
	done("")
	assert.Equal(t, 0.0, testutil.ToFloat64(WorkerJobsActive.WithLabelValues(task)))
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues(task)))

	failed := TrackJob(task)
	failed("PROFILE_NOT_FOUND")
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsFailed.WithLabelValues(task, "PROFILE_NOT_FOUND")))
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues(task)))
}
