package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// EventDTO is the wire shape of the events REST endpoint.
type EventDTO struct {
	Id         FlexibleId `json:"id"`
	Title      string     `json:"title"`
	Date       string     `json:"date"`
	RangeStart string     `json:"range_start,omitempty"`
	RangeEnd   string     `json:"range_end,omitempty"`
	StartTime  string     `json:"start_time,omitempty"`
	EndTime    string     `json:"end_time,omitempty"`
	Address    string     `json:"address,omitempty"`
	Details    string     `json:"details,omitempty"`
	Photo      string     `json:"photo,omitempty"`
}

// EventsResponse is the body returned by GET /events.
type EventsResponse struct {
	Events []EventDTO `json:"events"`
}

// FlexibleId accepts both numeric and string ids. The upstream store uses
// integer keys, other sources use opaque strings.
type FlexibleId string

func (id *FlexibleId) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleId(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("event id must be a string or number: %w", err)
	}
	*id = FlexibleId(n.String())
	return nil
}

func (id FlexibleId) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func ToDTO(e Event) EventDTO {
	return EventDTO{
		Id:         FlexibleId(e.Id),
		Title:      e.Title,
		Date:       e.Date,
		RangeStart: e.RangeStart,
		RangeEnd:   e.RangeEnd,
		StartTime:  e.StartTime,
		EndTime:    e.EndTime,
		Address:    e.Address,
		Details:    e.Details,
		Photo:      e.Photo,
	}
}

func FromDTO(d EventDTO) Event {
	return Event{
		Id:         string(d.Id),
		Title:      d.Title,
		Date:       d.Date,
		RangeStart: d.RangeStart,
		RangeEnd:   d.RangeEnd,
		StartTime:  d.StartTime,
		EndTime:    d.EndTime,
		Address:    d.Address,
		Details:    d.Details,
		Photo:      d.Photo,
	}
}

func ToDTOs(events []Event) []EventDTO {
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, ToDTO(e))
	}
	return dtos
}
