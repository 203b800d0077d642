package model

import "time"

// AttemptResult tags the outcome of one game-creation attempt.
type AttemptResult string

const (
	AttemptCreated AttemptResult = "created"
	AttemptFailed  AttemptResult = "failed"
	AttemptSkipped AttemptResult = "skipped"
)

// GameCreationAttempt records one iteration of the creation loop. Immutable
// once recorded; used for reporting and limit counting only.
type GameCreationAttempt struct {
	Seq       int
	Roster    *Roster
	Format    FormatSpec
	Timestamp time.Time
	Result    AttemptResult
	// GameID is set when Result is AttemptCreated.
	GameID string
	// Reason is set when Result is AttemptFailed or AttemptSkipped.
	Reason string
}
