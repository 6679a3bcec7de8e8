package agenda

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/lovelog/lovelog/internal/test_utils"
	"github.com/lovelog/lovelog/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleDay(id, d string) event.Event {
	return event.Event{Id: id, Title: "event " + id, Date: d}
}

func ranged(id, start, end string) event.Event {
	return event.Event{Id: id, Title: "event " + id, Date: start, RangeStart: start, RangeEnd: end}
}

func seededEvents(t *testing.T) []event.Event {
	t.Helper()
	fixture, err := test_utils.LoadFixture("events.json")
	require.NoError(t, err)
	var resp event.EventsResponse
	require.NoError(t, json.Unmarshal(fixture, &resp))
	events := make([]event.Event, 0, len(resp.Events))
	for _, dto := range resp.Events {
		events = append(events, event.FromDTO(dto))
	}
	return events
}

func TestBuildIndex(t *testing.T) {
	t.Run("empty input gives empty index", func(t *testing.T) {
		idx, err := BuildIndex(nil)

		require.NoError(t, err)
		assert.Empty(t, idx.ItemsByDate)
		assert.Empty(t, idx.MarkedDates)
		assert.NotNil(t, idx.ItemsByDate)
		assert.NotNil(t, idx.MarkedDates)
	})

	t.Run("single-day event is filed and marked on its date only", func(t *testing.T) {
		e := singleDay("11", "2025-02-25")

		idx, err := BuildIndex([]event.Event{e})

		require.NoError(t, err)
		assert.Equal(t, map[string][]event.Event{"2025-02-25": {e}}, idx.ItemsByDate)
		assert.Equal(t, map[string]Mark{"2025-02-25": {Direct: true}}, idx.MarkedDates)
	})

	t.Run("ranged event is filed once and marks its whole span", func(t *testing.T) {
		e := ranged("5", "2025-03-01", "2025-03-03")

		idx, err := BuildIndex([]event.Event{e})

		require.NoError(t, err)
		assert.Equal(t, map[string][]event.Event{"2025-03-01": {e}}, idx.ItemsByDate)
		assert.Equal(t, map[string]Mark{
			"2025-03-01": {Ranged: true},
			"2025-03-02": {Ranged: true},
			"2025-03-03": {Ranged: true},
		}, idx.MarkedDates)
	})

	t.Run("events sharing a key keep input order", func(t *testing.T) {
		a := singleDay("a", "2025-02-14")
		b := ranged("b", "2025-02-14", "2025-02-16")
		c := singleDay("c", "2025-02-14")

		idx, err := BuildIndex([]event.Event{a, b, c})

		require.NoError(t, err)
		assert.Equal(t, []event.Event{a, b, c}, idx.ItemsByDate["2025-02-14"])
	})

	t.Run("direct and ranged marks merge on shared dates", func(t *testing.T) {
		idx, err := BuildIndex([]event.Event{
			ranged("trip", "2025-02-03", "2025-02-05"),
			singleDay("dinner", "2025-02-04"),
		})

		require.NoError(t, err)
		assert.Equal(t, Mark{Ranged: true}, idx.MarkedDates["2025-02-03"])
		assert.Equal(t, Mark{Direct: true, Ranged: true}, idx.MarkedDates["2025-02-04"])
		assert.Equal(t, Mark{Ranged: true}, idx.MarkedDates["2025-02-05"])
	})

	t.Run("builds the seeded agenda", func(t *testing.T) {
		idx, err := BuildIndex(seededEvents(t))

		require.NoError(t, err)
		assert.Len(t, idx.ItemsByDate, 13)
		// 10 single days plus spans of 3 + 2 + 2 days
		assert.Len(t, idx.MarkedDates, 17)
		assert.NotContains(t, idx.ItemsByDate, "2025-02-04")
		assert.Equal(t, Mark{Ranged: true}, idx.MarkedDates["2025-02-04"])
		assert.Equal(t, Mark{Ranged: true}, idx.MarkedDates["2025-02-24"])
		assert.Equal(t, "Arcade Battle Date", idx.ItemsByDate["2025-02-25"][0].Title)
	})

	t.Run("malformed date fails the whole build", func(t *testing.T) {
		testCases := []struct {
			name  string
			bad   event.Event
			field string
		}{
			{name: "date", bad: singleDay("x", "25.02.2025"), field: "date"},
			{name: "range start", bad: ranged("x", "2025-13-01", "2025-13-03"), field: "range start"},
			{name: "range end", bad: ranged("x", "2025-03-01", "tomorrow"), field: "range end"},
			{name: "missing range end", bad: event.Event{Id: "x", Date: "2025-03-01", RangeStart: "2025-03-01"}, field: "range end"},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				idx, err := BuildIndex([]event.Event{singleDay("ok", "2025-02-25"), tc.bad})

				var dataErr *DataError
				require.True(t, errors.As(err, &dataErr))
				assert.Equal(t, "x", dataErr.EventId)
				assert.Equal(t, tc.field, dataErr.Field)
				assert.Nil(t, idx.ItemsByDate)
				assert.Nil(t, idx.MarkedDates)
			})
		}
	})

	t.Run("is deterministic across serialization round trips", func(t *testing.T) {
		events := seededEvents(t)
		payload, err := json.Marshal(event.EventsResponse{Events: event.ToDTOs(events)})
		require.NoError(t, err)
		var decoded event.EventsResponse
		require.NoError(t, json.Unmarshal(payload, &decoded))
		copied := make([]event.Event, 0, len(decoded.Events))
		for _, dto := range decoded.Events {
			copied = append(copied, event.FromDTO(dto))
		}

		first, err := BuildIndex(events)
		require.NoError(t, err)
		second, err := BuildIndex(copied)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}

func TestIndex_Preload(t *testing.T) {
	t.Run("fills gaps without touching existing entries", func(t *testing.T) {
		e := singleDay("1", "2025-02-25")
		idx, err := BuildIndex([]event.Event{e})
		require.NoError(t, err)

		idx.Preload(PreloadWindow(date(t, "2025-02-25"), 1, 2))

		assert.Equal(t, map[string][]event.Event{
			"2025-02-24": {},
			"2025-02-25": {e},
			"2025-02-26": {},
		}, idx.ItemsByDate)
		assert.Len(t, idx.MarkedDates, 1)
	})

	t.Run("keeps explicitly empty entries and is idempotent", func(t *testing.T) {
		idx := NewIndex()
		idx.ItemsByDate["2025-02-24"] = []event.Event{}
		window := PreloadWindow(date(t, "2025-02-25"), 3, 3)

		idx.Preload(window)
		once := idx.Clone()
		idx.Preload(window)

		assert.Equal(t, once, idx)
		assert.Len(t, idx.ItemsByDate, 6)
	})

	t.Run("works on zero index", func(t *testing.T) {
		var idx Index

		idx.Preload([]string{"2025-02-25"})

		assert.Equal(t, map[string][]event.Event{"2025-02-25": {}}, idx.ItemsByDate)
	})
}

func TestIndex_Clone(t *testing.T) {
	idx, err := BuildIndex([]event.Event{singleDay("1", "2025-02-25")})
	require.NoError(t, err)

	c := idx.Clone()
	c.ItemsByDate["2025-02-25"][0].Title = "changed"
	c.MarkedDates["2025-02-26"] = Mark{Direct: true}

	assert.Equal(t, "event 1", idx.ItemsByDate["2025-02-25"][0].Title)
	assert.NotContains(t, idx.MarkedDates, "2025-02-26")
}
