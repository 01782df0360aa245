package catalog

import "nflstats/ingestion/internal/feed"

// Weekly box score categories

var passingFields = []feed.Field{
	feed.I("completions"),
	feed.I("attempts"),
	feed.I("passing_yards"),
	feed.I("passing_tds"),
	feed.I("interceptions"),
	feed.I("sacks"),
	feed.I("sack_yards"),
	feed.I("sack_fumbles"),
	feed.I("sack_fumbles_lost"),
	feed.I("passing_air_yards"),
	feed.I("passing_yards_after_catch"),
	feed.I("passing_first_downs"),
	feed.F("passing_epa"),
	feed.I("passing_2pt_conversions"),
	feed.F("pacr"),
	feed.F("dakota"),
}

var rushingFields = []feed.Field{
	feed.I("carries"),
	feed.I("rushing_yards"),
	feed.I("rushing_tds"),
	feed.I("rushing_fumbles"),
	feed.I("rushing_fumbles_lost"),
	feed.I("rushing_first_downs"),
	feed.F("rushing_epa"),
	feed.I("rushing_2pt_conversions"),
}

var receivingFields = []feed.Field{
	feed.I("receptions"),
	feed.I("targets"),
	feed.I("receiving_yards"),
	feed.I("receiving_tds"),
	feed.I("receiving_fumbles"),
	feed.I("receiving_fumbles_lost"),
	feed.I("receiving_air_yards"),
	feed.I("receiving_yards_after_catch"),
	feed.I("receiving_first_downs"),
	feed.F("receiving_epa"),
	feed.I("receiving_2pt_conversions"),
	feed.F("racr"),
	feed.F("target_share"),
	feed.F("air_yards_share"),
	feed.F("wopr"),
}

var defenseFields = []feed.Field{
	feed.I("def_tackles"),
	feed.I("def_tackles_solo"),
	feed.I("def_tackle_assists"),
	feed.F("def_tackles_for_loss"),
	feed.I("def_fumbles_forced"),
	feed.F("def_sacks"),
	feed.I("def_qb_hits"),
	feed.I("def_interceptions"),
	feed.I("def_interception_yards"),
	feed.I("def_pass_defended"),
	feed.I("def_tds"),
	feed.I("def_fumbles"),
	feed.I("def_safety"),
}

var kickingFields = []feed.Field{
	feed.I("fg_made"),
	feed.I("fg_att"),
	feed.I("fg_missed"),
	feed.I("fg_blocked"),
	feed.I("fg_long"),
	feed.F("fg_pct"),
	feed.I("fg_made_0_19"),
	feed.I("fg_made_20_29"),
	feed.I("fg_made_30_39"),
	feed.I("fg_made_40_49"),
	feed.I("fg_made_50_59"),
	feed.I("fg_made_60_"),
	feed.I("pat_made"),
	feed.I("pat_att"),
	feed.I("pat_missed"),
	feed.I("pat_blocked"),
	feed.F("pat_pct"),
	feed.I("gwfg_made"),
	feed.I("gwfg_att"),
}

// Advanced (charted) categories, weekly

var advPassingFields = []feed.Field{
	feed.I("passing_drops"),
	feed.F("passing_drop_pct"),
	feed.I("passing_bad_throws"),
	feed.F("passing_bad_throw_pct"),
	feed.I("times_sacked"),
	feed.I("times_blitzed"),
	feed.I("times_hurried"),
	feed.I("times_hit"),
	feed.I("times_pressured"),
	feed.F("times_pressured_pct"),
}

var advRushingFields = []feed.Field{
	feed.I("carries"),
	feed.I("rushing_yards_before_contact"),
	feed.F("rushing_yards_before_contact_avg"),
	feed.I("rushing_yards_after_contact"),
	feed.F("rushing_yards_after_contact_avg"),
	feed.I("rushing_broken_tackles"),
}

var advReceivingFields = []feed.Field{
	feed.I("receiving_broken_tackles"),
	feed.I("receiving_drop"),
	feed.F("receiving_drop_pct"),
	feed.I("receiving_int"),
	feed.F("receiving_rat"),
}

var advDefenseFields = []feed.Field{
	feed.I("def_ints"),
	feed.I("def_targets"),
	feed.I("def_completions_allowed"),
	feed.F("def_completion_pct"),
	feed.I("def_yards_allowed"),
	feed.F("def_yards_allowed_per_cmp"),
	feed.F("def_yards_allowed_per_tgt"),
	feed.I("def_receiving_td_allowed"),
	feed.F("def_passer_rating_allowed"),
	feed.F("def_adot"),
	feed.I("def_air_yards_completed"),
	feed.I("def_yards_after_catch"),
	feed.I("def_times_blitzed"),
	feed.I("def_times_hurried"),
	feed.I("def_times_hitqb"),
	feed.F("def_sacks"),
	feed.I("def_pressures"),
	feed.I("def_tackles_combined"),
	feed.I("def_missed_tackles"),
	feed.F("def_missed_tackle_pct"),
}

// Advanced categories, season totals

var seasonAdvPassingFields = []feed.Field{
	feed.I("pass_attempts"),
	feed.I("throwaways"),
	feed.I("spikes"),
	feed.I("drops"),
	feed.F("drop_pct"),
	feed.I("bad_throws"),
	feed.F("bad_throw_pct"),
	feed.F("pocket_time"),
	feed.I("times_blitzed"),
	feed.I("times_hurried"),
	feed.I("times_hit"),
	feed.I("times_pressured"),
	feed.F("pressure_pct"),
	feed.I("on_tgt_throws"),
	feed.F("on_tgt_pct"),
	feed.I("rpo_plays"),
	feed.I("rpo_yards"),
	feed.I("pa_pass_att"),
	feed.I("pa_pass_yards"),
}

var seasonAdvRushingFields = []feed.Field{
	feed.I("att"),
	feed.I("yds"),
	feed.I("td"),
	feed.I("x1d"),
	feed.I("ybc"),
	feed.F("ybc_att"),
	feed.I("yac"),
	feed.F("yac_att"),
	feed.I("brk_tkl"),
	feed.F("att_br"),
}

var seasonAdvReceivingFields = []feed.Field{
	feed.I("tgt"),
	feed.I("rec"),
	feed.I("yds"),
	feed.I("td"),
	feed.I("x1d"),
	feed.I("ybc"),
	feed.F("ybc_r"),
	feed.I("yac"),
	feed.F("yac_r"),
	feed.F("adot"),
	feed.I("brk_tkl"),
	feed.F("rec_br"),
	feed.I("drop"),
	feed.F("drop_percent"),
	feed.I("int"),
	feed.F("rat"),
}

var seasonAdvDefenseFields = []feed.Field{
	feed.I("g"),
	feed.I("gs"),
	feed.I("int"),
	feed.I("tgt"),
	feed.I("cmp"),
	feed.F("cmp_percent"),
	feed.I("yds"),
	feed.F("yds_cmp"),
	feed.F("yds_tgt"),
	feed.I("td"),
	feed.F("rat"),
	feed.F("dadot"),
	feed.I("air"),
	feed.I("yac"),
	feed.I("bltz"),
	feed.I("hrry"),
	feed.I("qbkd"),
	feed.F("sk"),
	feed.I("prss"),
	feed.I("comb"),
	feed.I("m_tkl"),
	feed.F("m_tkl_percent"),
}

// Next Gen Stats categories, weekly

var ngsPassingFields = []feed.Field{
	feed.F("avg_time_to_throw"),
	feed.F("avg_completed_air_yards"),
	feed.F("avg_intended_air_yards"),
	feed.F("avg_air_yards_differential"),
	feed.F("aggressiveness"),
	feed.F("max_completed_air_distance"),
	feed.F("avg_air_yards_to_sticks"),
	feed.I("attempts"),
	feed.I("pass_yards"),
	feed.I("pass_touchdowns"),
	feed.I("interceptions"),
	feed.F("passer_rating"),
	feed.I("completions"),
	feed.F("completion_percentage"),
	feed.F("expected_completion_percentage"),
	feed.F("completion_percentage_above_expectation"),
	feed.F("avg_air_distance"),
	feed.F("max_air_distance"),
}

var ngsRushingFields = []feed.Field{
	feed.F("efficiency"),
	feed.F("percent_attempts_gte_eight_defenders"),
	feed.F("avg_time_to_los"),
	feed.I("rush_attempts"),
	feed.I("rush_yards"),
	feed.F("expected_rush_yards"),
	feed.F("rush_yards_over_expected"),
	feed.F("avg_rush_yards"),
	feed.F("rush_yards_over_expected_per_att"),
	feed.F("rush_pct_over_expected"),
	feed.I("rush_touchdowns"),
}

var ngsReceivingFields = []feed.Field{
	feed.F("avg_cushion"),
	feed.F("avg_separation"),
	feed.F("avg_intended_air_yards"),
	feed.F("percent_share_of_intended_air_yards"),
	feed.I("receptions"),
	feed.I("targets"),
	feed.F("catch_percentage"),
	feed.I("yards"),
	feed.I("rec_touchdowns"),
	feed.F("avg_yac"),
	feed.F("avg_expected_yac"),
	feed.F("avg_yac_above_expectation"),
}
