package intent

import (
	"fmt"
	"strings"
)

// MapFileName is the human-facing ledger mirror's canonical location
// (spec §6; generator behavior added in SPEC_FULL §3.1).
const MapFileName = ".orchestration/intent_map.md"

// RenderIntentMap renders a human-readable Markdown mirror of a ledger.
// It is never parsed back by the core — purely a convenience for humans
// skimming the workspace.
func RenderIntentMap(ledger *Ledger) string {
	var b strings.Builder

	b.WriteString("# Intent Map\n\n")
	if ledger.ActiveIntent != "" {
		fmt.Fprintf(&b, "Active intent: **%s**\n\n", ledger.ActiveIntent)
	} else {
		b.WriteString("Active intent: _none_\n\n")
	}

	for _, it := range ledger.Intents {
		marker := ""
		if it.ID == ledger.ActiveIntent {
			marker = " (active)"
		}
		fmt.Fprintf(&b, "## %s — %s%s\n\n", it.ID, it.Status, marker)
		if it.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", it.Description)
		}

		if len(it.OwnedScope) > 0 {
			b.WriteString("**Owned scope:**\n")
			for _, p := range it.OwnedScope {
				fmt.Fprintf(&b, "- `%s`\n", p)
			}
			b.WriteString("\n")
		}

		if len(it.AcceptanceCriteria) > 0 {
			b.WriteString("**Acceptance criteria:**\n")
			for _, c := range it.AcceptanceCriteria {
				fmt.Fprintf(&b, "- %s\n", c)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
