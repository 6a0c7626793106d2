// Package worksheet defines the fixed safety checklist embedded in the
// structured classification prompt and the prompt builder around it.
package worksheet

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Item is one checklist entry. Key is the upper-case field name the model
// is asked to echo back (e.g. BALANCE_CHECK); Question and Evidence are the
// two instruction lines rendered under the item.
type Item struct {
	Key      string
	Title    string
	Question string
	Evidence string
}

// Default is the built-in five-item checklist for ERC20-style transfer
// functions.
func Default() []Item {
	return []Item{
		{
			Key:      "BALANCE_CHECK",
			Title:    "BALANCE SAFETY CHECK",
			Question: "Check if balance is verified before transfer using require(balance >= amount) pattern",
			Evidence: "Identify line numbers or code snippets showing the balance check",
		},
		{
			Key:      "ARITHMETIC_SAFETY",
			Title:    "ARITHMETIC SAFETY CHECK",
			Question: "Check for arithmetic overflow/underflow risks in calculations",
			Evidence: "Identify evidence of arithmetic safety issues or protections",
		},
		{
			Key:      "ACCESS_CONTROL",
			Title:    "ACCESS CONTROL CHECK",
			Question: "Check for proper access control (e.g., only owner can call, proper modifiers)",
			Evidence: "Identify evidence of access control mechanisms or lack thereof",
		},
		{
			Key:      "INPUT_VALIDATION",
			Title:    "INPUT VALIDATION CHECK",
			Question: "Check if inputs are validated (non-zero addresses, positive amounts, etc.)",
			Evidence: "Identify evidence of input validation or missing validation",
		},
		{
			Key:      "STATE_CONSISTENCY",
			Title:    "STATE CONSISTENCY CHECK",
			Question: "Check if state updates are consistent (balances updated correctly, no double-spending)",
			Evidence: "Identify evidence of state consistency or inconsistency issues",
		},
	}
}

// LoadTemplate reads a checklist override from a CSV file with columns
// key,title,question,evidence.
func LoadTemplate(path string) ([]Item, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open worksheet template: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet template %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("worksheet template %s has no items", path)
	}

	items := make([]Item, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 4 {
			return nil, fmt.Errorf("worksheet template %s: row has %d columns, want 4", path, len(row))
		}
		items = append(items, Item{
			Key:      strings.ToUpper(strings.TrimSpace(row[0])),
			Title:    row[1],
			Question: row[2],
			Evidence: row[3],
		})
	}
	return items, nil
}

// BuildPrompt renders the structured classification prompt for a snippet.
func BuildPrompt(items []Item, code string) string {
	var b strings.Builder

	b.WriteString("You are analyzing a Solidity contract for safety using a structured worksheet approach.\n\n")
	b.WriteString("CONTRACT CODE TO ANALYZE:\n```solidity\n")
	b.WriteString(code)
	b.WriteString("\n```\n\nSAFETY CHECK WORKSHEET:\n")

	for i, item := range items {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, item.Title)
		fmt.Fprintf(&b, "   - %s\n", item.Question)
		fmt.Fprintf(&b, "   - %s\n", item.Evidence)
	}

	b.WriteString("\nOUTPUT FORMAT:\n")
	b.WriteString("FIRST, you MUST output a single line exactly in one of these forms:\n")
	b.WriteString("DECISION: SAFE\nor\nDECISION: UNSAFE\n\n")
	b.WriteString("Immediately after that, provide your analysis in the following structured format:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "%s: [true/false] - [evidence or explanation]\n", item.Key)
	}
	b.WriteString("\nREASONING: [Detailed explanation of your analysis]\n")
	b.WriteString("\nBegin your analysis:")

	return b.String()
}
