package internaldefs

import (
	rotor "github.com/rotorauth/rotor"
)

// CounterDef maps a [rotor.MetricID] to its exported counter name.
type CounterDef struct {
	ID   rotor.MetricID
	Name string
	Help string
}

// HistogramDef maps a [rotor.MetricID] to its exported histogram name.
type HistogramDef struct {
	ID   rotor.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: rotor.MetricIssueSuccess, Name: "rotor_issue_success_total", Help: "Successfully issued token pairs."},
	{ID: rotor.MetricIssueFailure, Name: "rotor_issue_failure_total", Help: "Issuance attempts that released no pair."},
	{ID: rotor.MetricLoginSuccess, Name: "rotor_login_success_total", Help: "Successful login attempts."},
	{ID: rotor.MetricLoginFailure, Name: "rotor_login_failure_total", Help: "Failed login attempts."},
	{ID: rotor.MetricLoginRateLimited, Name: "rotor_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: rotor.MetricRegisterSuccess, Name: "rotor_register_success_total", Help: "Successful registrations."},
	{ID: rotor.MetricRegisterFailure, Name: "rotor_register_failure_total", Help: "Failed registrations."},
	{ID: rotor.MetricRotateSuccess, Name: "rotor_rotate_success_total", Help: "Successful rotations."},
	{ID: rotor.MetricRotateFailure, Name: "rotor_rotate_failure_total", Help: "Rejected rotations."},
	{ID: rotor.MetricRotateRateLimited, Name: "rotor_rotate_rate_limited_total", Help: "Rate-limited rotation attempts."},
	{ID: rotor.MetricReuseDetected, Name: "rotor_reuse_detected_total", Help: "Rotations rejected on a consumed refresh token."},
	{ID: rotor.MetricReplayDetected, Name: "rotor_replay_detected_total", Help: "Lost consume races, the strongest replay signal."},
	{ID: rotor.MetricRevokedRejected, Name: "rotor_revoked_rejected_total", Help: "Rotations rejected on a revoked record."},
	{ID: rotor.MetricExpiredRejected, Name: "rotor_expired_rejected_total", Help: "Rotations rejected on an expired record."},
	{ID: rotor.MetricPairMismatch, Name: "rotor_pair_mismatch_total", Help: "Rotations rejected by the jti binding check."},
	{ID: rotor.MetricNotYetExpired, Name: "rotor_not_yet_expired_total", Help: "Rotations attempted before access-token expiry."},
	{ID: rotor.MetricRevocation, Name: "rotor_revocation_total", Help: "Administrative revocations."},
}

// HistogramDefs lists every exported histogram in a stable order.
var HistogramDefs = []HistogramDef{
	{ID: rotor.MetricValidateLatency, Name: "rotor_validate_latency_ms", Help: "ValidateAccess latency distribution."},
}

// HistogramBounds holds the le labels for the latency histogram, in
// milliseconds. The final bucket is unbounded.
var HistogramBounds = []string{
	"5",
	"10",
	"25",
	"50",
	"100",
	"250",
	"500",
	"+Inf",
}

// HistogramBoundSuffix holds instrument-name-safe suffixes for the same
// buckets, used by exporters that cannot carry an le label.
var HistogramBoundSuffix = []string{
	"5",
	"10",
	"25",
	"50",
	"100",
	"250",
	"500",
	"inf",
}

// NormalizeBuckets pads or truncates a snapshot bucket slice to the fixed
// bucket count so exporters never index out of range.
func NormalizeBuckets(buckets []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(buckets); i++ {
		out[i] = buckets[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form both
// exposition formats expect.
func CumulativeBuckets(buckets [8]uint64) [8]uint64 {
	var out [8]uint64
	var sum uint64
	for i := 0; i < len(buckets); i++ {
		sum += buckets[i]
		out[i] = sum
	}
	return out
}
