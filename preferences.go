package forgedeck

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"time"
)

// Settings keys written by the property inspector.
const (
	SettingServerIndex      = "serverIdx"
	SettingResetTimeout     = "resetTimeout"
	SettingRefreshFrequency = "refreshFrequency"
)

// Settings is the raw settings object the host stores for a context.
type Settings map[string]any

// Preferences is the parsed, per-context view of [Settings].
type Preferences struct {
	// ServerIndex is the persisted position in the server list.
	ServerIndex int `json:"server_index"`

	// ResetTimeout is how long, in seconds, a dial override survives without
	// further rotation.
	ResetTimeout float64 `json:"reset_timeout"`

	// RefreshFrequency is the delay, in seconds, between polls.
	RefreshFrequency float64 `json:"refresh_frequency"`
}

// ParsePreferences reads the known keys from s. Missing or malformed values
// become zero; parsing never fails.
func ParsePreferences(s Settings) Preferences {
	return Preferences{
		ServerIndex:      SafeParseInt(s[SettingServerIndex]),
		ResetTimeout:     SafeParseFloat(s[SettingResetTimeout]),
		RefreshFrequency: SafeParseFloat(s[SettingRefreshFrequency]),
	}
}

// ResetTimeoutDuration returns ResetTimeout as a duration.
func (p Preferences) ResetTimeoutDuration() time.Duration {
	return secondsToDuration(p.ResetTimeout)
}

// RefreshInterval returns RefreshFrequency as a duration.
func (p Preferences) RefreshInterval() time.Duration {
	return secondsToDuration(p.RefreshFrequency)
}

// Settings renders p back into the inspector's key layout.
func (p Preferences) Settings() Settings {
	return Settings{
		SettingServerIndex:      p.ServerIndex,
		SettingResetTimeout:     p.ResetTimeout,
		SettingRefreshFrequency: p.RefreshFrequency,
	}
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	// cap well below the int64 range
	if s > math.MaxInt32 {
		s = math.MaxInt32
	}
	return time.Duration(s * float64(time.Second))
}

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// SafeParseInt converts v to an int, returning 0 when it cannot.
//
// Numbers are truncated toward zero. Strings are parsed from their leading
// integer prefix after trimming whitespace, so "3.7" and "3 servers" both
// yield 3.
func SafeParseInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return truncFinite(n)
	case json.Number:
		return SafeParseInt(string(n))
	case string:
		m := intPrefix.FindString(trimLeft(n))
		if m == "" {
			return 0
		}
		i, err := strconv.Atoi(m)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

// SafeParseFloat converts v to a float64, returning 0 when it cannot.
// Strings are parsed from their leading decimal prefix; NaN and infinities
// become 0.
func SafeParseFloat(v any) float64 {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		return SafeParseFloat(string(n))
	case string:
		m := floatPrefix.FindString(trimLeft(n))
		if m == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func truncFinite(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

func trimLeft(s string) string {
	for i, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			continue
		}
		return s[i:]
	}
	return ""
}
