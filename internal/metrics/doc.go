// Package metrics exposes Prometheus counters for alarms, challenges and RPCs.
//
// Every Metrics value owns its registry, so several daemons can live in one
// process (tests) without duplicate registration. A nil *Metrics is valid and
// records nothing.
package metrics
