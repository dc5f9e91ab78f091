package lowering

import "sync"

// parserRegistry lets an embedding application register its textual
// host-language Parser under a name and have plx's CLI (cmd/plx) pick
// it up by the "parser" name in plx.json, the same registration-by-name shape database/sql
// uses for drivers: plx itself ships no parser (§1 Non-goals), but
// still needs a place for one to plug into without the CLI importing
// the embedding application's package directly.
var parserRegistry = struct {
	mu      sync.RWMutex
	parsers map[string]Parser
}{parsers: map[string]Parser{}}

// RegisterParser makes p available under name to later LookupParser
// calls. Typically called from an init() in the embedding
// application's package, imported by cmd/plx for its side effect.
func RegisterParser(name string, p Parser) {
	parserRegistry.mu.Lock()
	defer parserRegistry.mu.Unlock()
	parserRegistry.parsers[name] = p
}

// LookupParser retrieves a previously registered Parser by name.
func LookupParser(name string) (Parser, bool) {
	parserRegistry.mu.RLock()
	defer parserRegistry.mu.RUnlock()
	p, ok := parserRegistry.parsers[name]
	return p, ok
}

// RegisteredParserNames lists every currently registered parser name,
// for a CLI's error message when the requested one is not found.
func RegisteredParserNames() []string {
	parserRegistry.mu.RLock()
	defer parserRegistry.mu.RUnlock()
	names := make([]string, 0, len(parserRegistry.parsers))
	for n := range parserRegistry.parsers {
		names = append(names, n)
	}
	return names
}
