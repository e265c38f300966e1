package entry

import (
	"github.com/de-tools/sales-atlas/pkg/adapters"
	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/services/entry"
	"github.com/de-tools/sales-atlas/pkg/services/gate"
)

func sessionView(id string, session *entry.Orchestrator) api.Session {
	week := session.Week()
	totals := session.Totals()
	rate := session.LaborRate()

	view := api.Session{
		ID:         id,
		State:      session.State().String(),
		HourlyRate: api.NewMoney(rate.Rate),
		RateSource: rate.Source.String(),
		Days:       adapters.MapDaysDomainToApi(session.Days(), totals, session.Providers()),
		Totals:     adapters.MapWeeklyTotalsDomainToApi(totals),
	}
	if !week.IsZero() {
		view.WeekStart = week.Key()
		view.WeekEnd = week.EndDate.Format(domain.DateLayout)
		view.WeekNumber = week.WeekNumber
	}
	if prompt, ok := session.Prompt(); ok {
		view.Prompt = promptView(prompt)
	}
	return view
}

func promptView(p gate.Prompt) *api.Prompt {
	view := &api.Prompt{
		Gate:          p.Gate.String(),
		ManualEntry:   p.ManualEntry,
		OffendingDays: p.OffendingDays,
	}
	if p.PreviousRate != nil {
		rate := api.NewMoney(*p.PreviousRate)
		view.PreviousRate = &rate
	}
	return view
}
