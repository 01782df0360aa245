package models

import "fmt"

// PeriodKind is the scope of a period header row
type PeriodKind int

const (
	PeriodNone PeriodKind = iota
	PeriodSeason
	PeriodWeek
)

// ParsePeriodKind maps a config value to a PeriodKind
func ParsePeriodKind(s string) (PeriodKind, error) {
	switch s {
	case "", "none":
		return PeriodNone, nil
	case "season":
		return PeriodSeason, nil
	case "week":
		return PeriodWeek, nil
	default:
		return PeriodNone, fmt.Errorf("unknown period %q", s)
	}
}

func (k PeriodKind) String() string {
	switch k {
	case PeriodSeason:
		return "season"
	case PeriodWeek:
		return "week"
	default:
		return "none"
	}
}

// Table returns the period header table name
func (k PeriodKind) Table() string {
	switch k {
	case PeriodSeason:
		return "player_seasons"
	case PeriodWeek:
		return "player_games"
	default:
		return ""
	}
}

// ForeignKey returns the column category rows use to reference the period
func (k PeriodKind) ForeignKey() string {
	switch k {
	case PeriodSeason:
		return "player_season_id"
	case PeriodWeek:
		return "player_game_id"
	default:
		return ""
	}
}

// PeriodKey is the composite natural key of a period row.
// Week is ignored for season periods.
type PeriodKey struct {
	PlayerID int64
	Season   int
	Week     int
}
