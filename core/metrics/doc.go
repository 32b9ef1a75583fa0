// Package metrics defines the sinks that observe rostering runs. Sinks such
// as PromSink and InfluxSink (see infra/metrics) record one SolveEvent per
// solve and can be combined with NewMultiSink. NewMetricsSink builds a
// MultiSink automatically when several sinks are configured.
package metrics
