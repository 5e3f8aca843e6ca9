package observability

import (
	"testing"

	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCounter struct {
	total float64
}

func (c *recordingCounter) Add(delta float64, _ ...observability.Label) { c.total += delta }

func (c *recordingCounter) Bind(...observability.Label) observability.BoundCounter {
	return observability.NopCounter().Bind()
}

func TestNew_DefaultsToNop(t *testing.T) {
	tel := New(nil, nil, nil, nil)

	require.NotNil(t, tel.Tracer())
	require.NotNil(t, tel.Logger())
	assert.NotPanics(t, func() {
		tel.Metrics().Counter(observability.MUsecaseRequests).Add(1)
		tel.Metrics().Histogram(observability.MUsecaseDuration).Observe(1)
	})
}

func TestNew_ResolvesRegisteredInstruments(t *testing.T) {
	c := &recordingCounter{}
	tel := New(nil, nil,
		map[observability.MetricKey]observability.Counter{observability.MLowStock: c, observability.MHTTPRequests: nil},
		nil,
	)

	tel.Metrics().Counter(observability.MLowStock).Add(2)
	tel.Metrics().Counter(observability.MHTTPRequests).Add(5)
	tel.Metrics().Histogram(observability.MUsecaseDuration).Observe(1)

	assert.InDelta(t, 2.0, c.total, 0.0001)
}
