// File: utils/constants.go
package utils

import "time"

// FlowSnapshotPrefix is the prefix used for Redis flow snapshot keys.
const FlowSnapshotPrefix = "flowSession:"

// FlowSnapshotTTL is the time-to-live for persisted flow snapshots.
const FlowSnapshotTTL = 24 * time.Hour

// VerifySignalPrefix is the prefix for side-channel verification signals.
const VerifySignalPrefix = "verifySignal:"

// VerifyTokenPrefix is the prefix for verification link tokens.
const VerifyTokenPrefix = "verifyToken:"

// VerifiedEmailPrefix is the prefix for verified-address records.
const VerifiedEmailPrefix = "verifiedEmail:"

// VerifyCooldownPrefix is the prefix for resend rate-limit keys.
const VerifyCooldownPrefix = "verifyCooldown:"
