// ABOUTME: Pure parser extracting agent mentions and slash-commands from post text
// ABOUTME: Never fails; unknown handles and malformed commands degrade to nothing

package parse

import (
	"regexp"
	"strings"

	"github.com/yaam/agentboard/internal/agents"
)

// CommandKind identifies a built-in slash-command.
type CommandKind string

const (
	CommandVideo  CommandKind = "video"
	CommandImage  CommandKind = "image"
	CommandSearch CommandKind = "search"
	CommandScrape CommandKind = "scrape"
	CommandEmail  CommandKind = "email"
)

// Command is one recognized slash-command. Commands are ephemeral: parsed,
// dispatched, and discarded — never persisted.
type Command struct {
	Kind CommandKind
	Args map[string]string
	Span string // the matched text, for audit details
}

// Resolver is what the parser needs from the agent registry.
type Resolver interface {
	Get(handle string) (*agents.Profile, error)
}

var (
	mentionRe = regexp.MustCompile(`@([A-Za-z0-9_]+)`)
	commandRe = regexp.MustCompile(`(?i)(?:^|\s)/(video|image|search|scrape|email)\b[ \t]*`)
)

// Mentions extracts the ordered set of known, enabled agent handles from
// text. Unknown handles are dropped; duplicates (case-insensitive)
// collapse to the first occurrence. Returned handles are canonical
// registry handles.
func Mentions(text string, resolver Resolver) []string {
	seen := make(map[string]bool)
	var handles []string
	for _, m := range mentionRe.FindAllStringSubmatch(text, -1) {
		profile, err := resolver.Get(m[1])
		if err != nil {
			continue
		}
		if seen[profile.Handle] {
			continue
		}
		seen[profile.Handle] = true
		handles = append(handles, profile.Handle)
	}
	return handles
}

// Commands extracts slash-commands from text: at most one per kind (first
// match wins), each argument spanning to the next slash-token or end of
// text. Commands with a missing argument are silently dropped.
func Commands(text string) []Command {
	matches := commandRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	taken := make(map[CommandKind]bool)
	var commands []Command
	for i, m := range matches {
		kind := CommandKind(strings.ToLower(text[m[2]:m[3]]))
		if taken[kind] {
			continue
		}

		argEnd := len(text)
		if i+1 < len(matches) {
			argEnd = matches[i+1][0]
		}
		arg := strings.TrimSpace(text[m[1]:argEnd])

		cmd, ok := buildCommand(kind, arg)
		if !ok {
			continue
		}
		cmd.Span = strings.TrimSpace(text[m[0]:argEnd])
		taken[kind] = true
		commands = append(commands, cmd)
	}
	return commands
}

// buildCommand validates the argument span and shapes the per-kind args.
func buildCommand(kind CommandKind, arg string) (Command, bool) {
	if arg == "" {
		return Command{}, false
	}

	cmd := Command{Kind: kind, Args: map[string]string{}}
	switch kind {
	case CommandVideo, CommandImage:
		cmd.Args["prompt"] = arg
	case CommandSearch:
		cmd.Args["query"] = arg
	case CommandScrape:
		cmd.Args["url"] = arg
	case CommandEmail:
		fields := strings.Fields(arg)
		cmd.Args["to"] = fields[0]
		if len(fields) > 1 {
			cmd.Args["content"] = strings.Join(fields[1:], " ")
		}
	}
	return cmd, true
}
