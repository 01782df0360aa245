package catalog

import (
	"fmt"
	"sort"

	"nflstats/ingestion/internal/models"
	"nflstats/ingestion/internal/repository"
)

var categories = map[string]*StatCategory{}

var attributes = map[string]Attribute{
	Bio.Name:    Bio,
	League.Name: League,
}

func register(c *StatCategory) {
	if _, dup := categories[c.Name()]; dup {
		panic("catalog: duplicate category " + c.Name())
	}
	categories[c.Name()] = c
}

func init() {
	week, season := models.PeriodWeek, models.PeriodSeason

	register(NewStatCategory("passing", "game_passing", week, passingFields))
	register(NewStatCategory("rushing", "game_rushing", week, rushingFields))
	register(NewStatCategory("receiving", "game_receiving", week, receivingFields))
	register(NewStatCategory("defense", "game_defense", week, defenseFields))
	register(NewStatCategory("kicking", "game_kicking", week, kickingFields))

	register(NewStatCategory("adv_passing", "game_adv_passing", week, advPassingFields))
	register(NewStatCategory("adv_rushing", "game_adv_rushing", week, advRushingFields))
	register(NewStatCategory("adv_receiving", "game_adv_receiving", week, advReceivingFields))
	register(NewStatCategory("adv_defense", "game_adv_defense", week, advDefenseFields))

	register(NewStatCategory("ngs_passing", "game_ngs_passing", week, ngsPassingFields))
	register(NewStatCategory("ngs_rushing", "game_ngs_rushing", week, ngsRushingFields))
	register(NewStatCategory("ngs_receiving", "game_ngs_receiving", week, ngsReceivingFields))

	register(NewStatCategory("season_adv_passing", "season_adv_passing", season, seasonAdvPassingFields))
	register(NewStatCategory("season_adv_rushing", "season_adv_rushing", season, seasonAdvRushingFields))
	register(NewStatCategory("season_adv_receiving", "season_adv_receiving", season, seasonAdvReceivingFields))
	register(NewStatCategory("season_adv_defense", "season_adv_defense", season, seasonAdvDefenseFields))
}

// Lookup returns the registered category with the given name
func Lookup(name string) (Category, error) {
	c, ok := categories[name]
	if !ok {
		return nil, fmt.Errorf("unknown category %q", name)
	}
	return c, nil
}

// LookupAttribute returns the attribute set with the given name
func LookupAttribute(name string) (Attribute, error) {
	a, ok := attributes[name]
	if !ok {
		return Attribute{}, fmt.Errorf("unknown attribute set %q", name)
	}
	return a, nil
}

// Names returns every registered category name, sorted
func Names() []string {
	names := make([]string, 0, len(categories))
	for n := range categories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TableDefs returns the DDL description of every category table, ordered by name
func TableDefs() []repository.TableDef {
	defs := make([]repository.TableDef, 0, len(categories))
	for _, n := range Names() {
		defs = append(defs, categories[n].TableDef())
	}
	return defs
}
