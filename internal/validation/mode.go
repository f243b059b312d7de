package validation

import (
	"encoding/json"
	"strings"
)

// Mode selects which appointment rule set applies.
type Mode int

const (
	ModeCreate Mode = iota
	ModeSchedule
	ModeCancel
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeCancel:
		return "cancel"
	default:
		return "schedule"
	}
}

// ParseMode maps a mode name to a Mode. Anything unrecognised falls back to
// ModeSchedule.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "create":
		return ModeCreate
	case "cancel":
		return ModeCancel
	default:
		return ModeSchedule
	}
}

func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Mode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*m = ParseMode(s)
	return nil
}
