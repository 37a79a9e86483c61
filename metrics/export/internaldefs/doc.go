// Package internaldefs holds the shared metric name table consumed by the
// Prometheus and OTel exporters. It is internal to the exporters; callers
// should not depend on it directly.
package internaldefs
