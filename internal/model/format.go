package model

import (
	"encoding/json"
	"fmt"
)

// FormatSpec describes a game's shape: how many players, how many teams,
// and the opaque parameter payload forwarded verbatim to the platform.
type FormatSpec struct {
	PlayerCount int
	TeamCount   int
	Payload     json.RawMessage
}

// PlayersPerTeam returns the even team split size.
func (f FormatSpec) PlayersPerTeam() int {
	if f.TeamCount == 0 {
		return 0
	}
	return f.PlayerCount / f.TeamCount
}

// String renders the format in its compact config encoding.
func (f FormatSpec) String() string {
	return fmt.Sprintf("%dx%d$$%s", f.PlayerCount, f.TeamCount, string(f.Payload))
}
