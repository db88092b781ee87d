package alert

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sdars/hazard-engine/internal/domain"
)

// Channel is a notification delivery channel.
type Channel string

const (
	ChannelSystem Channel = "SYSTEM"
	ChannelEmail  Channel = "EMAIL"
	ChannelSMS    Channel = "SMS"
	ChannelPush   Channel = "PUSH"
)

// Alert is one lifecycle-managed alert. It is created in the active list and
// moves to history exactly once, on acknowledgment.
type Alert struct {
	ID                   string                  `json:"id"`
	CreatedAt            time.Time               `json:"created_at"`
	Hazard               domain.Hazard           `json:"hazard"`
	Severity             domain.RiskLevel        `json:"severity"`
	Title                string                  `json:"title"`
	Message              string                  `json:"message"`
	Location             domain.Geo              `json:"location"`
	LocationName         string                  `json:"location_name,omitempty"`
	Confidence           float64                 `json:"confidence"`
	Channels             []Channel               `json:"channels"`
	MatchedZones         []domain.Zone           `json:"matched_zones,omitempty"`
	AdditionalRecipients []string                `json:"additional_recipients,omitempty"`
	Prediction           domain.PredictionBundle `json:"prediction"`

	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedBy string     `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
}

// HasChannel reports whether the alert targets the given channel.
func (a *Alert) HasChannel(c Channel) bool {
	for _, ch := range a.Channels {
		if ch == c {
			return true
		}
	}
	return false
}

// severityCascade maps the prediction onto an alert severity. Rules are
// evaluated top-down; a rule fires when either the confidence clears its
// floor or the overall risk level already carries its label. An explicit
// override bypasses the cascade entirely.
var severityCascade = []struct {
	minConfidence float64
	level         domain.RiskLevel
}{
	{0.9, domain.RiskCritical},
	{0.7, domain.RiskHigh},
	{0.5, domain.RiskMedium},
}

func deriveSeverity(confidence float64, overall domain.RiskLevel) domain.RiskLevel {
	for _, rule := range severityCascade {
		if confidence >= rule.minConfidence || overall == rule.level {
			return rule.level
		}
	}
	return domain.RiskLow
}

// channelTable assigns delivery channels by severity. Severities not listed
// get the base SYSTEM+EMAIL pair.
var channelTable = map[domain.RiskLevel][]Channel{
	domain.RiskCritical: {ChannelSystem, ChannelEmail, ChannelSMS, ChannelPush},
	domain.RiskHigh:     {ChannelSystem, ChannelEmail, ChannelPush},
}

func channelsFor(severity domain.RiskLevel) []Channel {
	base, ok := channelTable[severity]
	if !ok {
		base = []Channel{ChannelSystem, ChannelEmail}
	}
	out := make([]Channel, len(base))
	copy(out, base)
	return out
}

// newAlertID builds a time-ordered, hazard-tagged token, e.g.
// ALERT-20250615-103000-FIR-1a2b3c4d. Unique within process lifetime.
func newAlertID(now time.Time, hazard domain.Hazard) string {
	tag := strings.ToUpper(string(hazard))
	if len(tag) > 3 {
		tag = tag[:3]
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ALERT-%s-%s-%s", now.UTC().Format("20060102-150405"), tag, suffix)
}

// composeContent renders the human-facing title and message for a prediction.
func composeContent(bundle domain.PredictionBundle, severity domain.RiskLevel) (title, message string) {
	place := bundle.LocationName
	if place == "" {
		place = fmt.Sprintf("%.4f, %.4f", bundle.Location.Lat, bundle.Location.Lon)
	}
	assessment := bundle.Assessment(bundle.PrimaryThreat)

	title = fmt.Sprintf("%s %s risk at %s", severity, strings.ToUpper(string(bundle.PrimaryThreat)), place)

	var b strings.Builder
	fmt.Fprintf(&b, "%s risk detected at %s (confidence %.0f%%).", strings.ToUpper(string(bundle.PrimaryThreat)), place, assessment.Confidence*100)
	for _, reason := range assessment.Reasons {
		b.WriteString("\n- ")
		b.WriteString(reason)
	}
	return title, b.String()
}
