package metrics

import (
	coremetrics "github.com/evsim/powertrain/core/metrics"
)

// FromConfig assembles the sinks the configuration enables. With nothing
// enabled it returns a NopSink.
func FromConfig(cfg coremetrics.Config) (coremetrics.Sink, error) {
	var sinks coremetrics.MultiSink
	if cfg.PrometheusEnabled {
		p, err := NewPromSink()
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, p)
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, NewInfluxSinkWithFallback(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket))
	}
	if len(sinks) == 0 {
		return coremetrics.NopSink{}, nil
	}
	return sinks, nil
}
