package command

// TypeHeader is the first envelope of every trace.
const TypeHeader = "header"

// Header identifies the match a trace was recorded from.
type Header struct {
	MatchID string   `json:"match_id"`
	Seed    int64    `json:"seed"`
	Teams   []string `json:"teams"`
}
