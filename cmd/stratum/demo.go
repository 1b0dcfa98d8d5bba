package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quarryhq/stratum/pkg/tools/toolbox"
)

// personDirectory is a tiny in-memory registry keyed by national id digits.
var personDirectory = map[string]string{
	"12345678900": "Joana Prado",
	"98765432100": "Carlos Mendes",
	"11122233344": "Ana Souza",
	"55566677788": "Pedro Lima",
}

// demoToolBox returns the directory-lookup toolbox the built-in demo agent
// uses when no engine config is supplied.
func demoToolBox() *toolbox.ToolBox {
	tb := toolbox.New()
	tb.Register(toolbox.Tool{
		Name:        "lookup_person",
		Description: "Looks up a person's full name by their national id number. Ids may contain punctuation; only digits are significant.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"national_id": {
					"type": "string",
					"description": "The national id number to look up"
				}
			},
			"required": ["national_id"]
		}`),
		Handler: lookupPerson,
	})

	return tb
}

func lookupPerson(_ context.Context, args json.RawMessage) (string, error) {
	var input struct {
		NationalID string `json:"national_id"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return "", fmt.Errorf("decode arguments: %w", err)
	}

	id := normalizeID(input.NationalID)
	name, ok := personDirectory[id]
	if !ok {
		// A miss is an answer, not a failure.
		return fmt.Sprintf("no person found for national id %s", input.NationalID), nil
	}

	return name, nil
}

// normalizeID keeps only the digits so formatted ids like 123.456.789-00
// match their bare forms.
func normalizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}
