package engine

import (
	"fmt"
	"path/filepath"
	"strings"
)

// splitTokens tokenizes a command line on spaces, honoring double-quoted
// runs and backslash escapes, e.g. `./engine.exe --name "My Bot"`.
// Grounded on original_source/src/engine.cpp's engine_parse_cmd/readToken.
func splitTokens(cmd string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuotes := false
	haveToken := false

	flush := func() {
		if haveToken {
			tokens = append(tokens, cur.String())
			cur.Reset()
			haveToken = false
		}
	}

	runes := []rune(cmd)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '\\' && i+1 < len(runes):
			cur.WriteRune(runes[i+1])
			haveToken = true
			i++
		case ch == '"':
			inQuotes = !inQuotes
			haveToken = true
		case ch == ' ' && !inQuotes:
			flush()
		default:
			cur.WriteRune(ch)
			haveToken = true
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("engine: unterminated quote in command %q", cmd)
	}
	flush()
	if len(tokens) == 0 {
		return nil, fmt.Errorf("engine: empty command")
	}
	return tokens, nil
}

// parseCommand splits a raw command line into a working directory, an
// executable path relative to that directory, and the full argv
// (argv[0] included). Grounded on engine_parse_cmd: an executable given
// with a path separator runs from its containing directory so relative
// resource lookups inside the engine behave the same as running it by
// hand from that directory; a bare name is left for PATH lookup.
func parseCommand(cmd string) (cwd, run string, argv []string, err error) {
	tokens, err := splitTokens(cmd)
	if err != nil {
		return "", "", nil, err
	}

	first := tokens[0]
	if idx := strings.LastIndexByte(first, '/'); idx >= 0 {
		cwd = first[:idx]
		if cwd == "" {
			cwd = "/"
		}
		run = "./" + first[idx+1:]
	} else {
		cwd = "."
		run = first
	}

	argv = append([]string{run}, tokens[1:]...)
	return cwd, run, argv, nil
}

// resolvedPath returns the path exec.Command should be given: an absolute
// or relative-to-cwd path for run values containing a separator, or the
// bare name for PATH lookup by exec.LookPath's own semantics.
func resolvedPath(cwd, run string) string {
	if strings.HasPrefix(run, "./") || strings.HasPrefix(run, "../") {
		return filepath.Join(cwd, run)
	}
	return run
}
