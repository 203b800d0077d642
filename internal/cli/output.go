package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"raic-cli/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// PrintRecord outputs one game history record
func (o *Output) PrintRecord(rec model.GameRecord) {
	if o.format == "json" {
		o.printJSON(recordJSON{
			GameID:       rec.GameID,
			Contest:      rec.Contest,
			Rank:         rec.Rank,
			Participants: rec.Participants,
			CreatedAt:    rec.CreatedAt.Format("2006-01-02 15:04"),
		})
		return
	}
	fmt.Printf("game %s  %s  rank %d  %s  %s\n",
		rec.GameID,
		rec.CreatedAt.Format("2006-01-02 15:04"),
		rec.Rank,
		rec.Contest,
		strings.Join(rec.Participants, " vs "))
}

// PrintAttempts outputs the game-creation run summary
func (o *Output) PrintAttempts(attempts []model.GameCreationAttempt) {
	if o.format == "json" {
		summary := make([]attemptJSON, 0, len(attempts))
		for _, a := range attempts {
			entry := attemptJSON{
				Seq:    a.Seq,
				Result: string(a.Result),
				GameID: a.GameID,
				Reason: a.Reason,
			}
			if a.Roster != nil {
				entry.Roster = a.Roster.Identities()
			}
			summary = append(summary, entry)
		}
		o.printJSON(summary)
		return
	}

	created := 0
	for _, a := range attempts {
		switch a.Result {
		case model.AttemptCreated:
			created++
			fmt.Printf("attempt %d: created game %s (%s)\n", a.Seq, a.GameID, a.Roster.String())
		case model.AttemptSkipped:
			fmt.Printf("attempt %d: skipped: %s\n", a.Seq, a.Reason)
		case model.AttemptFailed:
			fmt.Printf("attempt %d: failed: %s\n", a.Seq, a.Reason)
		}
	}
	fmt.Printf("%d of %d attempts created a game\n", created, len(attempts))
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		})
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

type recordJSON struct {
	GameID       string   `json:"game_id"`
	Contest      string   `json:"contest"`
	Rank         int      `json:"rank"`
	Participants []string `json:"participants"`
	CreatedAt    string   `json:"created_at"`
}

type attemptJSON struct {
	Seq    int      `json:"seq"`
	Result string   `json:"result"`
	Roster []string `json:"roster,omitempty"`
	GameID string   `json:"game_id,omitempty"`
	Reason string   `json:"reason,omitempty"`
}
