package domain

import (
	"context"
	"time"
)

// Zone is a user-defined polygon geofence with a severity threshold and
// notification targets. Zones are owned by an external store; the engine
// only reads snapshots of the active set and never mutates them.
type Zone struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Polygon              []Geo     `json:"polygon"`
	SeverityThreshold    RiskLevel `json:"severity_threshold"`
	NotificationChannels []string  `json:"notification_channels,omitempty"`
	RecipientEmails      []string  `json:"recipient_emails,omitempty"`
	Active               bool      `json:"active"`
	CreatedAt            time.Time `json:"created_at"`
}

// Contains reports whether the point lies inside the zone polygon.
// Polygons need at least three vertices; anything smaller contains nothing.
func (z Zone) Contains(lat, lon float64) bool {
	return ContainsPoint(lat, lon, z.Polygon)
}

// MeetsThreshold reports whether a risk level clears the zone's severity gate.
func (z Zone) MeetsThreshold(level RiskLevel) bool {
	return level.Rank() >= z.SeverityThreshold.Rank()
}

// ContainsPoint runs the ray-casting test: a horizontal ray from the point
// crosses the polygon boundary an odd number of times iff the point is
// inside. Edge comparisons are half-open ((latI > lat) != (latJ > lat)), so a
// crossing at a shared vertex is counted by exactly one adjacent edge and
// horizontal edges drop out of the count entirely.
func ContainsPoint(lat, lon float64, polygon []Geo) bool {
	if len(polygon) < 3 {
		return false
	}
	inside := false
	j := len(polygon) - 1
	for i := range polygon {
		pi, pj := polygon[i], polygon[j]
		if (pi.Lat > lat) != (pj.Lat > lat) {
			crossing := (lat-pi.Lat)*(pj.Lon-pi.Lon)/(pj.Lat-pi.Lat) + pi.Lon
			if lon < crossing {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// MatchZones filters a zone snapshot down to the active zones containing the
// point. The slice is read-only during iteration; callers coordinate zone
// administration via copy-on-write or their own store lock.
func MatchZones(lat, lon float64, zones []Zone) []Zone {
	var matched []Zone
	for _, z := range zones {
		if z.Active && z.Contains(lat, lon) {
			matched = append(matched, z)
		}
	}
	return matched
}

// ZoneStore supplies the current active-zone set.
type ZoneStore interface {
	ActiveZones(ctx context.Context) ([]Zone, error)
}

// SubscriberStore resolves the e-mail addresses subscribed to a zone name.
type SubscriberStore interface {
	SubscribersForZone(ctx context.Context, zoneName string) ([]string, error)
}
