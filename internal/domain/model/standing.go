// Package model holds the domain types flowing through the pipeline stages:
// the flattened standing rows, the final projection and the form outcome
// arithmetic.
package model

import "strings"

// SanitizeColumnName rewrites a flattened column name into its columnar form
// by replacing every period with an underscore. Parquet reserves the period
// as its schema path separator, so dotted names cannot survive into the
// columnar tiers. The function is idempotent; names without periods pass
// through unchanged.
func SanitizeColumnName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

// Standing is one flattened standings row. The mapstructure tags carry the
// dot-joined key names used in the landing snapshots; the parquet tags carry
// the sanitized column names used in the columnar tiers.
type Standing struct {
	Rank            int32  `mapstructure:"rank" parquet:"name=rank, type=INT32"`
	TeamID          int32  `mapstructure:"team.id" parquet:"name=team_id, type=INT32"`
	TeamName        string `mapstructure:"team.name" parquet:"name=team_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	TeamLogo        string `mapstructure:"team.logo" parquet:"name=team_logo, type=BYTE_ARRAY, convertedtype=UTF8"`
	Points          int32  `mapstructure:"points" parquet:"name=points, type=INT32"`
	GoalsDiff       int32  `mapstructure:"goalsDiff" parquet:"name=goalsDiff, type=INT32"`
	Group           string `mapstructure:"group" parquet:"name=group, type=BYTE_ARRAY, convertedtype=UTF8"`
	Form            string `mapstructure:"form" parquet:"name=form, type=BYTE_ARRAY, convertedtype=UTF8"`
	Status          string `mapstructure:"status" parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8"`
	Description     string `mapstructure:"description" parquet:"name=description, type=BYTE_ARRAY, convertedtype=UTF8"`
	AllPlayed       int32  `mapstructure:"all.played" parquet:"name=all_played, type=INT32"`
	AllWin          int32  `mapstructure:"all.win" parquet:"name=all_win, type=INT32"`
	AllDraw         int32  `mapstructure:"all.draw" parquet:"name=all_draw, type=INT32"`
	AllLose         int32  `mapstructure:"all.lose" parquet:"name=all_lose, type=INT32"`
	AllGoalsFor     int32  `mapstructure:"all.goals.for" parquet:"name=all_goals_for, type=INT32"`
	AllGoalsAgainst int32  `mapstructure:"all.goals.against" parquet:"name=all_goals_against, type=INT32"`
	HomePlayed      int32  `mapstructure:"home.played" parquet:"name=home_played, type=INT32"`
	HomeWin         int32  `mapstructure:"home.win" parquet:"name=home_win, type=INT32"`
	HomeDraw        int32  `mapstructure:"home.draw" parquet:"name=home_draw, type=INT32"`
	HomeLose        int32  `mapstructure:"home.lose" parquet:"name=home_lose, type=INT32"`
	HomeGoalsFor    int32  `mapstructure:"home.goals.for" parquet:"name=home_goals_for, type=INT32"`
	HomeGoalsAgainst int32 `mapstructure:"home.goals.against" parquet:"name=home_goals_against, type=INT32"`
	AwayPlayed      int32  `mapstructure:"away.played" parquet:"name=away_played, type=INT32"`
	AwayWin         int32  `mapstructure:"away.win" parquet:"name=away_win, type=INT32"`
	AwayDraw        int32  `mapstructure:"away.draw" parquet:"name=away_draw, type=INT32"`
	AwayLose        int32  `mapstructure:"away.lose" parquet:"name=away_lose, type=INT32"`
	AwayGoalsFor    int32  `mapstructure:"away.goals.for" parquet:"name=away_goals_for, type=INT32"`
	AwayGoalsAgainst int32 `mapstructure:"away.goals.against" parquet:"name=away_goals_against, type=INT32"`
	Update          string `mapstructure:"update" parquet:"name=update, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// FinalStanding is the published projection of a Standing. Field order
// matches the published column order.
type FinalStanding struct {
	Rank            int32  `parquet:"name=rank, type=INT32"`
	TeamName        string `parquet:"name=team_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Points          int32  `parquet:"name=points, type=INT32"`
	GoalsDiff       int32  `parquet:"name=goalsDiff, type=INT32"`
	AllPlayed       int32  `parquet:"name=all_played, type=INT32"`
	AllWin          int32  `parquet:"name=all_win, type=INT32"`
	AllDraw         int32  `parquet:"name=all_draw, type=INT32"`
	AllLose         int32  `parquet:"name=all_lose, type=INT32"`
	AllGoalsFor     int32  `parquet:"name=all_goals_for, type=INT32"`
	AllGoalsAgainst int32  `parquet:"name=all_goals_against, type=INT32"`
	Form            string `parquet:"name=form, type=BYTE_ARRAY, convertedtype=UTF8"`
	FormPoints      int32  `parquet:"name=form_points, type=INT32"`
}

// FinalColumns lists the published column names in output order.
var FinalColumns = []string{
	"rank",
	"team_name",
	"points",
	"goalsDiff",
	"all_played",
	"all_win",
	"all_draw",
	"all_lose",
	"all_goals_for",
	"all_goals_against",
	"form",
	"form_points",
}

// ToFinal projects the standing into its published form, deriving the form
// points column. The projection fails when the form string contains an
// outcome other than W, D or L.
func (s Standing) ToFinal() (FinalStanding, error) {
	formPoints, err := FormPoints(s.Form)
	if err != nil {
		return FinalStanding{}, err
	}
	return FinalStanding{
		Rank:            s.Rank,
		TeamName:        s.TeamName,
		Points:          s.Points,
		GoalsDiff:       s.GoalsDiff,
		AllPlayed:       s.AllPlayed,
		AllWin:          s.AllWin,
		AllDraw:         s.AllDraw,
		AllLose:         s.AllLose,
		AllGoalsFor:     s.AllGoalsFor,
		AllGoalsAgainst: s.AllGoalsAgainst,
		Form:            s.Form,
		FormPoints:      formPoints,
	}, nil
}
