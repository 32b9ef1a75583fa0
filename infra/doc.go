// Package infra contains technical adapters such as metrics exporters, run
// log stores and error reporting. These packages should depend only on the
// interfaces defined in the core packages.
package infra
