package command

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"scanner-server/driver"
)

// HandlerFunc executes one user command against an open scanner session.
// Execution dispatch itself lives in the console layer; this package only
// supplies the mapping and its metadata.
type HandlerFunc func(conn *driver.Conn, args []string) (string, error)

// Entry binds a command name to its handler and the sub-argument tokens
// offered for second-level completion. Names are unique case-insensitively;
// sub-arguments are matched case-sensitively as authored.
type Entry struct {
	Name    string
	Handler HandlerFunc
	SubArgs []string
}

// Registry is the command table, built once at startup and read-only after
// construction. Declaration order is preserved for completion candidates.
type Registry struct {
	entries []*Entry
	byName  map[string]*Entry
}

// New builds a registry from entries in declaration order. Later duplicates
// of a name (case-insensitive) are ignored.
func New(entries []Entry) *Registry {
	r := &Registry{byName: make(map[string]*Entry, len(entries))}
	for i := range entries {
		e := entries[i]
		key := strings.ToLower(e.Name)
		if _, exists := r.byName[key]; exists {
			continue
		}
		r.entries = append(r.entries, &e)
		r.byName[key] = &e
	}
	return r
}

// Lookup resolves a command name case-insensitively
func (r *Registry) Lookup(name string) (*Entry, bool) {
	e, ok := r.byName[strings.ToLower(name)]
	return e, ok
}

// Names returns all command names in declaration order
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns the table in declaration order
func (r *Registry) Entries() []*Entry {
	return r.entries
}

// Suggest returns the closest known command within edit distance 2 of name,
// for "unknown command, did you mean" messages. Empty when nothing is close.
func (r *Registry) Suggest(name string) string {
	lower := strings.ToLower(name)
	best := ""
	bestDist := 3
	for _, e := range r.entries {
		d := levenshtein.ComputeDistance(lower, e.Name)
		if d < bestDist {
			best = e.Name
			bestDist = d
		}
	}
	return best
}
