package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/internal/types"
)

func TestRecordOutcome(t *testing.T) {
	m := New()
	m.RecordOutcome(models.CookiePolicyType, nil)
	m.RecordOutcome(models.CookiePolicyType, nil)
	m.RecordOutcome(models.CookiePolicyType, types.NewError(types.KindSchemaViolation, "decode", errors.New("bad json")))
	m.RecordOutcome(models.TermsOfServiceType, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.generations.WithLabelValues("cookie_policy", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues("cookie_policy", "schema_violation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues("terms_of_service", "unknown")))
}

func TestObserveStage(t *testing.T) {
	m := New()
	m.ObserveStage(models.PrivacyPolicyType, "RETRIEVING", 25*time.Millisecond)
	m.ObserveRetrieved(models.PrivacyPolicyType, "law", 12)

	assert.Equal(t, 1, testutil.CollectAndCount(m.stageDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(m.retrieved))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordOutcome(models.PrivacyPolicyType, nil)
	m.ObserveStage(models.PrivacyPolicyType, "GENERATING", time.Second)
	m.ObserveRetrieved(models.PrivacyPolicyType, "example", 0)
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteToTextfile("/nonexistent/metrics.prom"))
}

func TestWriteToTextfile(t *testing.T) {
	m := New()
	m.RecordOutcome(models.AcceptableUsePolicyType, nil)

	path := filepath.Join(t.TempDir(), "compligen.prom")
	require.NoError(t, m.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `compligen_generations_total{doc_type="acceptable_use_policy",outcome="ok"} 1`))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "invariant_violation", Outcome(types.Errorf(types.KindInvariantViolation, "repair", "x")))
}
