package empire

import (
	"time"

	"empires-server/internal/coalition"
	"empires-server/internal/combat"
)

type Empire struct {
	ID              int                  `json:"id"`
	Name            string               `json:"name"`
	Sectors         int                  `json:"sectors"`
	Networth        float64              `json:"networth"`
	Effectiveness   combat.Effectiveness `json:"effectiveness"`
	Stance          combat.Stance        `json:"stance"`
	MaintenancePaid bool                 `json:"maintenance_paid"`
	IsBoss          bool                 `json:"is_boss"`
	Forces          combat.Force         `json:"forces"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

func (e *Empire) BossStatus() coalition.BossStatus {
	return coalition.BossStatus{EmpireID: e.ID, IsBoss: e.IsBoss}
}

// BattleUpdate is the state an empire is left in after one engagement.
type BattleUpdate struct {
	Forces        combat.Force
	Sectors       int
	Effectiveness combat.Effectiveness
}

// TurnReport summarizes one turn of effectiveness upkeep.
type TurnReport struct {
	Previous  int `json:"previous"`
	Turn      int `json:"turn"`
	Empires   int `json:"empires"`
	Recovered int `json:"recovered"`
	Penalized int `json:"penalized"`
}
