package console

import (
	"strings"
)

var dotCommands = []string{".exit", ".help", ".prefix", ".quit", ".reset"}

// Completer completes builtin names and dot-commands at the start of a line.
type Completer struct {
	Builtins []string
}

// Do implements readline.AutoCompleter.
// Returns completion candidates and how many chars to remove before the cursor.
func (c *Completer) Do(line []rune, pos int) (newLine [][]rune, length int) {
	s := string(line[:pos])
	if strings.ContainsAny(s, " \t") {
		return nil, 0
	}
	if strings.HasPrefix(s, ".") {
		return filterCompletions(dotCommands, s), len(s)
	}
	return filterCompletions(c.Builtins, s), len(s)
}

// filterCompletions returns suffix completions (readline appends them to what's already typed).
func filterCompletions(candidates []string, prefix string) [][]rune {
	var result [][]rune
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			result = append(result, []rune(c[len(prefix):]))
		}
	}
	return result
}
