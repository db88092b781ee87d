// Package domain models multi-hazard risk fusion over satellite and weather
// sensor snapshots.
//
// # Signal Sources
//
// A [SensorSnapshot] bundles everything known about one location at one
// moment: satellite analysis (thermal statistics, NDVI/NDWI index arrays, a
// data-quality tag), the current weather observation, an hourly historical
// weather series, and precomputed rate-of-change deltas over 1/3/6/12 hour
// windows. Snapshots are ephemeral per-request inputs; nothing in this
// package persists them.
//
// # Data Quality Conventions
//
// Upstream satellite collectors tag every snapshot:
//
//	REAL_SIGNAL / REAL_SATELLITE_DATA  →  live downlink, fully trusted
//	STALE_OR_ZERO                      →  last-known frame replayed, or all-zero bands
//	ZERO_SIGNAL                        →  no usable frame at all
//	CORRUPTED_STREAM                   →  checksum or decode failure mid-pass
//
// The three degraded tags trigger the integrity penalty: the satellite branch
// is withdrawn from the fused score and the final confidence is halved. A
// blind sensor must never masquerade as corroborating evidence, but it is
// also never an error: the engine still answers, with reduced confidence.
//
// # Risk Fusion
//
// Each hazard (fire, flood, cyclone) is scored by two independent branches,
// each clipped to [0,1], then fused as a weighted sum:
//
//	fire:    sat 0.6 / weather 0.4   HIGH > 0.70   MEDIUM > 0.35
//	flood:   sat 0.3 / weather 0.7   HIGH > 0.65   MEDIUM > 0.30
//	cyclone: sat 0.2 / weather 0.8   HIGH > 0.60   MEDIUM > 0.30
//
// When both branches exceed 0.6 and the signal is nominal, a 1.2× synergy
// boost is applied and capped at 1.0. Confirmed thermal hotspot detections
// floor the fire confidence at 0.8 before the integrity penalty. The weights,
// cutoffs, boost, and penalty are operationally tuned constants; changing
// them is a product decision, not a refactor.
//
// Hazard-level fusion emits LOW, MEDIUM, or HIGH only. CRITICAL is reserved
// for the alert escalation cascade downstream.
//
// # Zones
//
// A [Zone] is a user-defined polygon geofence (≥3 vertices, lat/lon order)
// with a severity threshold and recipient list. Point membership uses ray
// casting with half-open edge comparisons, so a point on a shared vertex is
// counted by exactly one of the adjacent edges. Zones are owned by an
// external store; this package only reads snapshots of them.
package domain
