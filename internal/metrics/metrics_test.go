package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.CredentialChecked(true)
	m.CredentialChecked(false)
	m.CredentialChecked(false)
	m.JobStarted()
	m.PollCycle()
	m.PollCycle()
	m.Downloaded(2048)
	m.JobFinished("veo-2.0-generate-001", "success", 42*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("valid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.validations.WithLabelValues("invalid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.pollCycles))
	assert.Equal(t, 2048.0, testutil.ToFloat64(m.downloadBytes))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeJobs))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues("veo-2.0-generate-001", "success")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.jobDuration))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CredentialChecked(true)
		m.JobStarted()
		m.PollCycle()
		m.Downloaded(1)
		m.JobFinished("m", "error", time.Second)
	})
}
