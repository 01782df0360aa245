package catalog

import (
	"nflstats/ingestion/internal/feed"
	"nflstats/ingestion/internal/models"
)

// Record fields that identify the period a row belongs to
const (
	SeasonField = "season"
	WeekField   = "week"
)

// PlayerFields are written to the players table by authoritative feeds
var PlayerFields = []feed.Field{
	feed.T(models.GsisID),
	feed.T(models.PfrID),
	feed.T(models.SmartID),
	feed.T(models.EsbID),
	feed.T("full_name"),
	feed.T("first_name"),
	feed.T("last_name"),
	feed.T("football_name"),
}

// Bio is the player_bio attribute set
var Bio = Attribute{
	Name:  "bio",
	Table: "player_bio",
	Fields: []feed.Field{
		feed.D("birth_date"),
		feed.I("height"),
		feed.I("weight"),
		feed.T("college"),
		feed.I("rookie_year"),
		feed.T("draft_club"),
		feed.I("draft_number"),
	},
}

// League is the player_league attribute set
var League = Attribute{
	Name:  "league",
	Table: "player_league",
	Fields: []feed.Field{
		feed.T("position"),
		feed.T("team"),
		feed.I("jersey_number"),
		feed.T("status"),
		feed.I("years_exp"),
	},
}

var seasonFields = []feed.Field{
	feed.T("team"),
	feed.T("season_type"),
	feed.I("games"),
}

var weekFields = []feed.Field{
	feed.T("team"),
	feed.T("opponent"),
	feed.T("season_type"),
}

// PeriodFields returns the non-key fields of the period header row
func PeriodFields(kind models.PeriodKind) []feed.Field {
	switch kind {
	case models.PeriodSeason:
		return seasonFields
	case models.PeriodWeek:
		return weekFields
	default:
		return nil
	}
}

// PeriodKeyFields returns the record fields that make up the period key
func PeriodKeyFields(kind models.PeriodKind) []feed.Field {
	switch kind {
	case models.PeriodSeason:
		return []feed.Field{feed.I(SeasonField)}
	case models.PeriodWeek:
		return []feed.Field{feed.I(SeasonField), feed.I(WeekField)}
	default:
		return nil
	}
}
