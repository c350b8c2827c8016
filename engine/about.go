package engine

import (
	"fmt"
	"strings"
	"time"
)

// aboutTokens splits an ABOUT reply into tokens on comma/space/'=', honoring
// double-quoted values that may themselves contain those separators.
// Grounded on original_source/src/engine.cpp's parse_and_display_engine_about.
func aboutTokens(line string) []string {
	var tokens []string
	var cur strings.Builder
	inQuotes := false

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case (ch == ',' || ch == ' ' || ch == '=') && !inQuotes:
			flush()
		default:
			cur.WriteRune(ch)
		}
	}
	flush()
	return tokens
}

type aboutInfo struct {
	name, version, author, country string
}

func parseAboutLine(line string) aboutInfo {
	info := aboutInfo{name: "?", version: "?", author: "?", country: "?"}
	tokens := aboutTokens(line)

	for i, tok := range tokens {
		if i+1 >= len(tokens) {
			break
		}
		switch tok {
		case "name":
			info.name = tokens[i+1]
		case "version":
			info.version = tokens[i+1]
		case "author":
			info.author = tokens[i+1]
		case "country":
			info.country = tokens[i+1]
		}
	}
	return info
}

// parseAbout sends ABOUT, reads the single-line reply, and adopts the
// reported name unless one was already pinned via EngineOptions.
func (a *Agent) parseAbout(fallbackName string) error {
	a.wd.Set(a.Name(), time.Now().Add(a.opts.Tolerance), "about", func() { a.forceKill() })

	a.WriteLine("ABOUT")
	line, ok := a.ReadLine()
	a.wd.Clear()

	if !ok {
		return fmt.Errorf("[%s] engine exited before answering ABOUT", a.Name())
	}

	info := parseAboutLine(line)

	a.mu.Lock()
	if a.name == "" {
		if info.name != "?" {
			a.name = info.name
		} else {
			a.name = fallbackName
		}
	}
	name := a.name
	a.mu.Unlock()

	a.log.Info().
		Str("name", name).
		Str("version", info.version).
		Str("author", info.author).
		Str("country", info.country).
		Msg("loaded engine")
	return nil
}
