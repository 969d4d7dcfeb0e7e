package models

import (
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// FlexID normalizes ids that arrive as either JSON numbers or strings,
// depending on which backend endpoint produced them.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = FlexID(cast.ToString(raw))
	return nil
}

func (f FlexID) String() string {
	return string(f)
}

// timestampLayouts covers the formats the backend emits for check-in/out
// times. The first one (no zone) is what the access controller writes.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339,
	time.RFC3339Nano,
}

func ParseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ActivityRecord is one card-tap session as the backend reports it.
// Field names follow the backend wire contract. Class and user are
// denormalized display names; only the room carries its id.
type ActivityRecord struct {
	ID         FlexID `json:"id"`
	CardUID    string `json:"kartuUid"`
	RoomID     FlexID `json:"ruanganId"`
	RoomName   string `json:"ruanganNama"`
	ClassName  string `json:"kelasNama"`
	Username   string `json:"userUsername"`
	CheckInAt  string `json:"timestampMasuk"`
	CheckOutAt string `json:"timestampKeluar"`
}

func (r *ActivityRecord) CheckInTime() (time.Time, bool) {
	return ParseTimestamp(r.CheckInAt)
}

func (r *ActivityRecord) CheckOutTime() (time.Time, bool) {
	return ParseTimestamp(r.CheckOutAt)
}

// IsCheckedOut reports whether the session has a meaningful check-out.
// The backend signals "never checked out" two ways: an absent value, or
// the year-1 epoch placeholder. A check-out equal to the check-in also
// counts as still inside: the controller registers the first tap under
// both fields, so a same-instant pair is an open session, not a
// zero-length visit.
func (r *ActivityRecord) IsCheckedOut() bool {
	if r.CheckOutAt == "" {
		return false
	}
	out, ok := r.CheckOutTime()
	if !ok || out.Year() <= 1 {
		return false
	}
	if in, ok := r.CheckInTime(); ok {
		return !out.Equal(in)
	}
	return r.CheckOutAt != r.CheckInAt
}

// DurationMinutes returns the session length for checked-out records.
func (r *ActivityRecord) DurationMinutes() (float64, bool) {
	if !r.IsCheckedOut() {
		return 0, false
	}
	in, inOK := r.CheckInTime()
	out, outOK := r.CheckOutTime()
	if !inOK || !outOK {
		return 0, false
	}
	return out.Sub(in).Minutes(), true
}
