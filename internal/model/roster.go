package model

import (
	"strconv"
	"strings"
)

// ResolvedParticipant is one concrete participant produced by resolution.
// Never mutated after creation, except that the creator fills in an unknown
// strategy version just before submission.
type ResolvedParticipant struct {
	// Identity is the participant's stable username key.
	Identity string
	// Strategy is the 1-based strategy version to play, 0 when not yet known.
	Strategy int
	// Rank is the participant's position in the source listing, 0 when not
	// applicable.
	Rank int
	// SpecIndex is the index of the spec that produced this participant.
	SpecIndex int
}

// Roster is the ordered, deduplicated participant list for one game.
type Roster struct {
	Participants []ResolvedParticipant
	Capacity     int
}

// NewRoster creates an empty roster bounded by capacity.
func NewRoster(capacity int) *Roster {
	return &Roster{Capacity: capacity}
}

// Add appends p unless its identity is already present or the roster is
// full. Reports whether the participant was added.
func (r *Roster) Add(p ResolvedParticipant) bool {
	if r.Full() || r.Contains(p.Identity) {
		return false
	}
	r.Participants = append(r.Participants, p)
	return true
}

// Contains reports whether identity is already on the roster.
func (r *Roster) Contains(identity string) bool {
	for _, p := range r.Participants {
		if p.Identity == identity {
			return true
		}
	}
	return false
}

// Full reports whether the roster has reached capacity.
func (r *Roster) Full() bool {
	return len(r.Participants) >= r.Capacity
}

// Len returns the number of participants on the roster.
func (r *Roster) Len() int {
	return len(r.Participants)
}

// Identities returns the participant identities in roster order.
func (r *Roster) Identities() []string {
	ids := make([]string, 0, len(r.Participants))
	for _, p := range r.Participants {
		ids = append(ids, p.Identity)
	}
	return ids
}

// String renders the roster as "a#3 vs b#1" for logging.
func (r *Roster) String() string {
	parts := make([]string, 0, len(r.Participants))
	for _, p := range r.Participants {
		if p.Strategy > 0 {
			parts = append(parts, p.Identity+"#"+strconv.Itoa(p.Strategy))
		} else {
			parts = append(parts, p.Identity)
		}
	}
	return strings.Join(parts, " vs ")
}
