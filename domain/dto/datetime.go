package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"taskhub/pkg/datetime"
)

// FlexibleTime accepts an RFC 3339 string, a bare date, a local
// date-time or epoch milliseconds.
type FlexibleTime struct {
	time.Time
}

func (ft *FlexibleTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		t, err := datetime.Parse(s)
		if err != nil {
			return err
		}
		ft.Time = t
		return nil
	}

	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return datetime.ErrInvalidTime
	}
	ft.Time = datetime.FromMillis(ms)
	return nil
}

func (ft FlexibleTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(datetime.Format(ft.Time))
}
