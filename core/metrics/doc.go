// Package metrics defines the sink interface that receives a RunReport after
// every conversion. Sinks are created from configuration through a registry;
// the infra/metrics package registers the prometheus and influx
// implementations. Several configured sinks are combined with NewMultiSink.
package metrics
