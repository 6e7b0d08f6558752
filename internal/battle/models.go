package battle

import (
	"time"

	"empires-server/internal/coalition"
	"empires-server/internal/combat"

	"github.com/google/uuid"
)

// SimulateRequest resolves an engagement between two posted forces without
// touching any empire. Trials > 0 asks for a win-rate report instead of a
// single battle.
type SimulateRequest struct {
	Attacker combat.Force   `json:"attacker"`
	Defender combat.Force   `json:"defender"`
	Strategy string         `json:"strategy,omitempty"`
	Options  combat.Options `json:"options"`
	Trials   int            `json:"trials,omitempty"`
}

type SimulateResponse struct {
	Strategy string                `json:"strategy"`
	Result   *combat.BattleResult  `json:"result,omitempty"`
	Summary  string                `json:"summary,omitempty"`
	WinRate  *combat.WinRateReport `json:"win_rate,omitempty"`
	Cached   bool                  `json:"cached"`
}

// EngageRequest launches the authenticated empire's forces at a defender.
// The turn and the defender's stance come from server state. An empty
// AttackerStance falls back to the attacker's standing stance. Only an
// attacker retreat can be ordered, and Seed is reserved for admins.
type EngageRequest struct {
	DefenderID     int             `json:"defender_id"`
	AttackerStance combat.Stance   `json:"attacker_stance,omitempty"`
	Retreat        *combat.Retreat `json:"retreat,omitempty"`
	Seed           int64           `json:"seed,omitempty"`
}

// Report is a persisted battle between two empires.
type Report struct {
	ID                    uuid.UUID            `json:"id"`
	Turn                  int                  `json:"turn"`
	AttackerID            int                  `json:"attacker_id"`
	DefenderID            int                  `json:"defender_id"`
	Strategy              string               `json:"strategy"`
	Outcome               combat.Outcome       `json:"outcome"`
	SectorsCaptured       int                  `json:"sectors_captured"`
	CoalitionBonus        float64              `json:"coalition_bonus"`
	AttackerEffectiveness combat.Effectiveness `json:"attacker_effectiveness"`
	DefenderEffectiveness combat.Effectiveness `json:"defender_effectiveness"`
	Summary               string               `json:"summary"`
	Result                combat.BattleResult  `json:"result"`
	CreatedAt             time.Time            `json:"created_at"`
}

// DetectRequest runs coalition detection over a posted batch of attacks.
// Captured maps a target empire id to the sectors taken from it, and drives
// the territory distribution for that target's raid.
type DetectRequest struct {
	Attacks  []coalition.AttackRecord `json:"attacks"`
	Bosses   []coalition.BossStatus   `json:"bosses"`
	Captured map[int]int              `json:"captured,omitempty"`
}

// RaidReport is one detected raid with its rewards.
type RaidReport struct {
	Raid         coalition.Raid           `json:"raid"`
	Captured     int                      `json:"captured"`
	Distribution []coalition.Distribution `json:"distribution"`
	Rewards      coalition.Rewards        `json:"rewards"`
}
