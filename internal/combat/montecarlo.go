package combat

import "fmt"

// WinRateReport aggregates repeated resolutions of the same engagement.
type WinRateReport struct {
	Strategy            string          `json:"strategy"`
	Trials              int             `json:"trials"`
	AttackerWins        int             `json:"attacker_wins"`
	DefenderWins        int             `json:"defender_wins"`
	AttackerWinRate     float64         `json:"attacker_win_rate"`
	Outcomes            map[Outcome]int `json:"outcomes"`
	MeanAttackerLosses  float64         `json:"mean_attacker_losses"`
	MeanDefenderLosses  float64         `json:"mean_defender_losses"`
	MeanSectorsCaptured float64         `json:"mean_sectors_captured"`
	GroundOverrides     int             `json:"ground_overrides"`
}

// SimulateWinRate resolves the engagement trials times. A non-zero
// opts.Seed makes the whole run reproducible: trial i uses Seed+i. A caller
// supplied Roller is shared across trials.
func SimulateWinRate(strategy Strategy, attacker, defender Force, opts Options, trials int) (WinRateReport, error) {
	if trials <= 0 {
		return WinRateReport{}, fmt.Errorf("trials must be positive, got %d", trials)
	}

	report := WinRateReport{
		Strategy: strategy.Name(),
		Trials:   trials,
		Outcomes: map[Outcome]int{},
	}

	var attackerLosses, defenderLosses, sectors int
	baseSeed := opts.Seed

	for i := range trials {
		trial := opts
		if baseSeed != 0 {
			trial.Seed = baseSeed + int64(i)
		}

		result, err := strategy.Resolve(attacker, defender, trial)
		if err != nil {
			return WinRateReport{}, fmt.Errorf("trial %d: %w", i, err)
		}

		report.Outcomes[result.Outcome]++
		if result.Outcome.Winner() == SideAttacker {
			report.AttackerWins++
		} else {
			report.DefenderWins++
		}
		if result.GroundOverride {
			report.GroundOverrides++
		}
		attackerLosses += result.AttackerCasualties.Total()
		defenderLosses += result.DefenderCasualties.Total()
		sectors += result.SectorsCaptured
	}

	n := float64(trials)
	report.AttackerWinRate = float64(report.AttackerWins) / n
	report.MeanAttackerLosses = float64(attackerLosses) / n
	report.MeanDefenderLosses = float64(defenderLosses) / n
	report.MeanSectorsCaptured = float64(sectors) / n

	return report, nil
}
