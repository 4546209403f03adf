// Package entity defines the wire-level shapes returned by the API-Football
// standings endpoint. Only the fields the pipeline navigates are typed; the
// standing rows themselves stay as raw maps so that every field the API
// returns survives into the landing snapshot.
package entity

// StandingsEnvelope is the top-level response document of the standings
// endpoint.
type StandingsEnvelope struct {
	Get        string                 `json:"get"`
	Parameters map[string]interface{} `json:"parameters"`
	Errors     interface{}            `json:"errors"`
	Results    int                    `json:"results"`
	Response   []StandingsResponse    `json:"response"`
}

// StandingsResponse is one element of the response array, wrapping a league.
type StandingsResponse struct {
	League League `json:"league"`
}

// League carries the league metadata and the standings tables. Standings is
// a list of tables (one per group or stage); each table is a list of rows
// kept as raw maps.
type League struct {
	ID        int                        `json:"id"`
	Name      string                     `json:"name"`
	Country   string                     `json:"country"`
	Logo      string                     `json:"logo"`
	Flag      string                     `json:"flag"`
	Season    int                        `json:"season"`
	Standings [][]map[string]interface{} `json:"standings"`
}
