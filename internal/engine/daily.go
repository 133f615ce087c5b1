package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/array-sim/internal/economy"
)

// runDailyCycle charges upkeep and electricity, then pays the data dividend.
// Costs are all-or-nothing: a short treasury is emptied, never overdrawn.
func (s *Simulation) runDailyCycle() {
	upkeep := s.TotalUpkeep()
	electricity := s.TotalElectricityCost()
	total := upkeep + electricity

	if total > 0 {
		switch {
		case s.state.Credits >= total:
			s.state.Credits -= total
			if electricity > 0 {
				s.pushMessage(fmt.Sprintf("Paid upkeep %s cr + electricity %s cr (total %s).",
					credits(upkeep), credits(electricity), credits(total)))
			} else {
				s.pushMessage(fmt.Sprintf("Paid upkeep of %s credits.", credits(upkeep)))
			}
		default:
			s.state.Credits = 0
			s.pushMessage(fmt.Sprintf("Operating costs %s exceeded reserves; treasury depleted.", credits(total)))
			slog.Warn("treasury depleted", "owed", total)
		}
	}

	if passive := economy.PassiveIncome(s.state.Storage.Stored); passive > 0 {
		s.state.Credits += passive
		s.pushMessage(fmt.Sprintf("Passive data dividend +%s credits.", credits(passive)))
	}

	slog.Info("daily report",
		"credits", s.state.Credits,
		"upkeep", upkeep,
		"electricity", electricity,
		"stored", s.state.Storage.Stored,
		"jobs_on_board", len(s.state.Jobs),
	)
}
