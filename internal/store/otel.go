package store

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/factionboard/missionstore/internal/store"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// metrics are recorded against the global OTel meter (no-op unless the
// host process installs a provider).
type metrics struct {
	ops           metric.Int64Counter
	cacheHits     metric.Int64Counter
	cacheMisses   metric.Int64Counter
	fallbacks     metric.Int64Counter
	conflicts     metric.Int64Counter
	validations   metric.Int64Counter
	writeFailures metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	m := meter()
	out := &metrics{}
	var err error

	out.ops, err = m.Int64Counter(
		"store.operations",
		metric.WithDescription("Board operations persisted"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating operations counter: %w", err)
	}

	out.cacheHits, err = m.Int64Counter(
		"store.cache.hits",
		metric.WithDescription("Loads served from the session cache"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache hit counter: %w", err)
	}

	out.cacheMisses, err = m.Int64Counter(
		"store.cache.misses",
		metric.WithDescription("Loads that had to read a backend"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache miss counter: %w", err)
	}

	out.fallbacks, err = m.Int64Counter(
		"store.backend.fallbacks",
		metric.WithDescription("Remote grid failures recovered via the local file"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fallback counter: %w", err)
	}

	out.conflicts, err = m.Int64Counter(
		"store.save.conflicts",
		metric.WithDescription("Saves rejected under the check-revision policy"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating conflict counter: %w", err)
	}

	out.validations, err = m.Int64Counter(
		"store.validation.failures",
		metric.WithDescription("Operations rejected before any state change"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating validation counter: %w", err)
	}

	out.writeFailures, err = m.Int64Counter(
		"store.write.failures",
		metric.WithDescription("Backend writes that reported an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating write failure counter: %w", err)
	}

	return out, nil
}
