// Package format parses the compact game-format encodings from the config.
package format

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"raic-cli/internal/model"
)

// payloadSeparator splits the player/team counts from the opaque payload in
// an encoding like "4x1$${\"preset\":\"Round1\"}".
const payloadSeparator = "$$"

// Parse decodes a single format encoding.
func Parse(entry string) (model.FormatSpec, error) {
	head, payload, found := strings.Cut(entry, payloadSeparator)
	if !found {
		return model.FormatSpec{}, model.NewConfigError(entry, fmt.Errorf("missing %q payload separator", payloadSeparator))
	}

	players, teams, found := strings.Cut(head, "x")
	if !found {
		return model.FormatSpec{}, model.NewConfigError(entry, fmt.Errorf("counts must look like <players>x<teams>"))
	}

	playerCount, err := strconv.Atoi(players)
	if err != nil {
		return model.FormatSpec{}, model.NewConfigError(entry, fmt.Errorf("non-numeric player count %q", players))
	}
	teamCount, err := strconv.Atoi(teams)
	if err != nil {
		return model.FormatSpec{}, model.NewConfigError(entry, fmt.Errorf("non-numeric team count %q", teams))
	}

	if playerCount < 1 || teamCount < 1 {
		return model.FormatSpec{}, model.NewConfigError(entry, fmt.Errorf("counts must be positive"))
	}
	if playerCount < teamCount {
		return model.FormatSpec{}, model.NewConfigError(entry, fmt.Errorf("player count %d below team count %d", playerCount, teamCount))
	}
	if teamCount > 1 && playerCount%teamCount != 0 {
		return model.FormatSpec{}, model.NewConfigError(entry, fmt.Errorf("%d players do not split evenly into %d teams", playerCount, teamCount))
	}

	if !json.Valid([]byte(payload)) {
		return model.FormatSpec{}, model.NewConfigError(entry, fmt.Errorf("unparsable payload"))
	}

	return model.FormatSpec{
		PlayerCount: playerCount,
		TeamCount:   teamCount,
		Payload:     json.RawMessage(payload),
	}, nil
}

// Select decodes the enabled format entries in order. Comment-prefixed
// entries are expected to be stripped by the config loader before this.
func Select(entries []string) ([]model.FormatSpec, error) {
	formats := make([]model.FormatSpec, 0, len(entries))
	for _, entry := range entries {
		f, err := Parse(entry)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}
