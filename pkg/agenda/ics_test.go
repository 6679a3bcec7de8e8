package agenda

import (
	"bytes"
	"errors"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/lovelog/lovelog/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToICS(t *testing.T) {
	stamp := time.Date(2025, 2, 25, 8, 0, 0, 0, time.UTC)

	t.Run("should render single-day and ranged events as all-day entries", func(t *testing.T) {
		// given
		events := []event.Event{
			{Id: "11", Title: "Arcade Battle Date", Date: "2025-02-25", StartTime: "17:00", EndTime: "20:00", Address: "Pier 39"},
			ranged("5", "2025-03-01", "2025-03-03"),
		}

		// when
		body, err := ToICS(events, stamp)

		// then
		require.NoError(t, err)
		cal, err := ics.ParseCalendar(bytes.NewReader([]byte(body)))
		require.NoError(t, err)
		vevents := cal.Events()
		require.Len(t, vevents, 2)

		assert.Equal(t, "11@lovelog", vevents[0].Id())
		assert.Equal(t, "Arcade Battle Date", vevents[0].GetProperty(ics.ComponentPropertySummary).Value)
		assert.Equal(t, "20250225", vevents[0].GetProperty(ics.ComponentPropertyDtStart).Value)
		assert.Equal(t, "20250226", vevents[0].GetProperty(ics.ComponentPropertyDtEnd).Value)
		assert.Equal(t, "Pier 39", vevents[0].GetProperty(ics.ComponentPropertyLocation).Value)
		assert.Contains(t, vevents[0].GetProperty(ics.ComponentPropertyDescription).Value, "17:00 - 20:00")

		assert.Equal(t, "20250301", vevents[1].GetProperty(ics.ComponentPropertyDtStart).Value)
		assert.Equal(t, "20250304", vevents[1].GetProperty(ics.ComponentPropertyDtEnd).Value)
	})

	t.Run("should render empty calendar", func(t *testing.T) {
		body, err := ToICS(nil, stamp)

		require.NoError(t, err)
		assert.Contains(t, body, "BEGIN:VCALENDAR")
		assert.NotContains(t, body, "BEGIN:VEVENT")
	})

	t.Run("should report malformed dates like BuildIndex", func(t *testing.T) {
		testCases := []struct {
			name  string
			bad   event.Event
			field string
		}{
			{name: "date", bad: singleDay("7", "25.02.2025"), field: "date"},
			{name: "range start", bad: ranged("7", "2025-13-01", "2025-13-03"), field: "range start"},
			{name: "range end", bad: ranged("7", "2025-03-01", "soon"), field: "range end"},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := ToICS([]event.Event{tc.bad}, stamp)

				var dataErr *DataError
				require.True(t, errors.As(err, &dataErr))
				assert.Equal(t, "7", dataErr.EventId)
				assert.Equal(t, tc.field, dataErr.Field)

				_, indexErr := BuildIndex([]event.Event{tc.bad})
				var indexDataErr *DataError
				require.True(t, errors.As(indexErr, &indexDataErr))
				assert.Equal(t, indexDataErr.Field, dataErr.Field)
			})
		}
	})
}
