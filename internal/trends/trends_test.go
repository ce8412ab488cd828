package trends

import (
	"testing"

	"policybrief/internal/core"
)

func TestTrackerRecordAndTop(t *testing.T) {
	tr := NewTracker([]string{"senate", "tariff", "regulation"})

	tr.Record("2025-06-15", []core.Candidate{
		{Title: "Senate passes tariff bill", Description: "The tariff takes effect soon"},
		{Title: "Senate schedules vote", Description: "Floor debate continues"},
	})

	top := tr.Top("2025-06-15", 10)
	if len(top) != 2 {
		t.Fatalf("expected 2 keywords, got %d", len(top))
	}
	if top[0].Keyword != "senate" && top[0].Keyword != "tariff" {
		t.Errorf("unexpected top keyword %q", top[0].Keyword)
	}
	counts := map[string]int{}
	for _, kc := range top {
		counts[kc.Keyword] = kc.Count
	}
	if counts["senate"] != 2 {
		t.Errorf("senate count = %d, expected 2", counts["senate"])
	}
	if counts["tariff"] != 2 {
		t.Errorf("tariff count = %d, expected 2", counts["tariff"])
	}
}

func TestTrackerTiesBreakAlphabetically(t *testing.T) {
	tr := NewTracker([]string{"senate", "agency"})

	tr.Record("2025-06-15", []core.Candidate{
		{Title: "Senate questions agency", Description: "Oversight hearing held"},
	})

	top := tr.Top("2025-06-15", 10)
	if len(top) != 2 {
		t.Fatalf("expected 2 keywords, got %d", len(top))
	}
	if top[0].Keyword != "agency" || top[1].Keyword != "senate" {
		t.Errorf("tie order = %q, %q; expected agency before senate", top[0].Keyword, top[1].Keyword)
	}
}

func TestTrackerRecordReplacesDate(t *testing.T) {
	tr := NewTracker([]string{"senate", "tariff"})

	tr.Record("2025-06-15", []core.Candidate{
		{Title: "Senate passes tariff bill", Description: ""},
	})
	tr.Record("2025-06-15", []core.Candidate{
		{Title: "Tariff delayed", Description: ""},
	})

	top := tr.Top("2025-06-15", 10)
	if len(top) != 1 {
		t.Fatalf("expected 1 keyword after replacement, got %d", len(top))
	}
	if top[0].Keyword != "tariff" || top[0].Count != 1 {
		t.Errorf("got %q count %d, expected tariff count 1", top[0].Keyword, top[0].Count)
	}
}

func TestTrackerTopLimitsAndUnknownDate(t *testing.T) {
	tr := NewTracker([]string{"senate", "tariff", "regulation"})

	tr.Record("2025-06-15", []core.Candidate{
		{Title: "Senate tariff regulation update", Description: ""},
	})

	if top := tr.Top("2025-06-15", 2); len(top) != 2 {
		t.Errorf("expected limit of 2, got %d", len(top))
	}
	if top := tr.Top("1999-01-01", 5); top != nil {
		t.Errorf("unknown date returned %v", top)
	}
}
