package complete

import (
	"strings"

	"github.com/chzyer/readline"
)

var _ readline.AutoCompleter = (*Completer)(nil)

// Do implements readline.AutoCompleter so an interactive console can use the
// registry-backed matching directly: candidates are returned as suffixes of
// the partial word under the cursor.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	buffer := string(line[:pos])
	matches := c.Matches(buffer)

	partial := currentToken(buffer)
	plen := len([]rune(partial))

	var suffixes [][]rune
	for _, m := range matches {
		if !strings.HasPrefix(strings.ToLower(m), strings.ToLower(partial)) {
			continue
		}
		suffixes = append(suffixes, []rune(m[len(partial):]+" "))
	}
	return suffixes, plen
}

// currentToken returns the word being completed: empty when the buffer is
// empty or ends in a space, else the last whitespace-separated token.
func currentToken(buffer string) string {
	if endsWithSpace(buffer) {
		return ""
	}
	parts := strings.Fields(buffer)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
