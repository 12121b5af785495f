package portfolio

import (
	"fmt"
	"time"

	"github.com/synthrisk/perilgen/pkg/core"
)

// GenerateStormEvents returns count tropical cyclone events named Cyclone A,
// Cyclone B and so on. Each event spans the window from five days to two
// days before the anchor, matching the lookback the time-series datetime
// fields count from.
func GenerateStormEvents(count int, anchor time.Time) []core.StormEvent {
	events := make([]core.StormEvent, 0, count)
	for i := 0; i < count; i++ {
		events = append(events, core.StormEvent{
			EventID:   newID("TC-EVENT"),
			Name:      fmt.Sprintf("Cyclone %c", 'A'+rune(i%26)),
			Type:      "Tropical Cyclone",
			StartDate: anchor.UTC().AddDate(0, 0, -5).Format("2006-01-02"),
			EndDate:   anchor.UTC().AddDate(0, 0, -2).Format("2006-01-02"),
		})
	}
	return events
}
