// Package complete produces tab-completion candidates from the command
// registry. The provider is stateless: every request recomputes matches from
// the live input buffer, nothing is cached between calls.
package complete

import (
	"strings"

	"scanner-server/command"
)

type Completer struct {
	reg *command.Registry
}

func New(reg *command.Registry) *Completer {
	return &Completer{reg: reg}
}

// Candidate returns the index-th completion candidate for the raw input
// buffer, and false once index exceeds the match count. Candidates keep the
// registry's declaration order.
func (c *Completer) Candidate(buffer string, index int) (string, bool) {
	matches := c.Matches(buffer)
	if index < 0 || index >= len(matches) {
		return "", false
	}
	return matches[index], true
}

// Matches computes the full candidate list for the buffer:
//   - empty buffer, or a single word with no trailing space: top-level
//     command names whose lowercase form starts with the partial token
//   - otherwise: the first token selects a command and candidates are its
//     sub-argument tokens starting with the partial token (case-sensitive);
//     an unknown command yields nothing
func (c *Completer) Matches(buffer string) []string {
	parts := strings.Fields(buffer)

	if len(parts) == 0 || (len(parts) == 1 && !endsWithSpace(buffer)) {
		partial := ""
		if len(parts) == 1 {
			partial = parts[0]
		}
		var matches []string
		for _, name := range c.reg.Names() {
			if strings.HasPrefix(strings.ToLower(name), partial) {
				matches = append(matches, name)
			}
		}
		return matches
	}

	entry, ok := c.reg.Lookup(parts[0])
	if !ok {
		return nil
	}

	partial := ""
	if !endsWithSpace(buffer) {
		partial = parts[len(parts)-1]
	}
	var matches []string
	for _, sub := range entry.SubArgs {
		if strings.HasPrefix(sub, partial) {
			matches = append(matches, sub)
		}
	}
	return matches
}

func endsWithSpace(buffer string) bool {
	return len(buffer) > 0 && buffer[len(buffer)-1] == ' '
}
