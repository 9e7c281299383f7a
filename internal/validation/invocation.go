// Package validation decides whether tool invocations are allowed, warned,
// or blocked by evaluating the active rule set, override tokens, and path
// exemptions.
package validation

import (
	"fmt"

	"github.com/jlwainwright/Auto-Claude/internal/rule"
	"github.com/jlwainwright/Auto-Claude/internal/types"
)

// Invocation is one tool call awaiting validation. Exactly the fields
// relevant to the tool type are set: Command for bash, Path and Content for
// write/edit, URL for web_fetch, Query for web_search.
type Invocation struct {
	Tool    rule.ToolType
	Command string
	Path    string
	Content string
	URL     string
	Query   string
}

// Bash describes a shell command invocation.
func Bash(command string) *Invocation {
	return &Invocation{Tool: rule.ToolBash, Command: command}
}

// Write describes a file creation invocation.
func Write(path, content string) *Invocation {
	return &Invocation{Tool: rule.ToolWrite, Path: path, Content: content}
}

// Edit describes a file modification invocation. Content carries the text
// being written into the file.
func Edit(path, newContent string) *Invocation {
	return &Invocation{Tool: rule.ToolEdit, Path: path, Content: newContent}
}

// WebFetch describes a URL fetch invocation.
func WebFetch(url string) *Invocation {
	return &Invocation{Tool: rule.ToolWebFetch, URL: url}
}

// WebSearch describes a search invocation.
func WebSearch(query string) *Invocation {
	return &Invocation{Tool: rule.ToolWebSearch, Query: query}
}

// Validate checks that the invocation names a known tool type.
func (inv *Invocation) Validate() error {
	if !inv.Tool.IsValid() {
		return types.NewError(types.INVOCATION_INVALID,
			fmt.Sprintf("unknown tool type %q", inv.Tool))
	}
	return nil
}

// contextAccessors maps each rule context to the invocation fields it
// inspects. The "all" context checks every populated surface.
var contextAccessors = map[rule.Context]func(*Invocation) []string{
	rule.ContextCommand:     func(inv *Invocation) []string { return []string{inv.Command} },
	rule.ContextFileContent: func(inv *Invocation) []string { return []string{inv.Content} },
	rule.ContextFilePath:    func(inv *Invocation) []string { return []string{inv.Path} },
	rule.ContextAll: func(inv *Invocation) []string {
		return []string{inv.Command, inv.Content, inv.Path, inv.URL, inv.Query}
	},
}

// TextsFor returns the non-empty invocation surfaces a rule with the given
// context matches against, each capped to the matching input limit.
func (inv *Invocation) TextsFor(ctx rule.Context) []string {
	accessor, ok := contextAccessors[ctx]
	if !ok {
		return nil
	}
	var out []string
	for _, text := range accessor(inv) {
		if text != "" {
			out = append(out, rule.CapMatchInput(text))
		}
	}
	return out
}

// InputSummary renders the invocation for the audit log.
func (inv *Invocation) InputSummary() map[string]string {
	out := map[string]string{}
	if inv.Command != "" {
		out["command"] = inv.Command
	}
	if inv.Path != "" {
		out["file_path"] = inv.Path
	}
	if inv.Content != "" {
		out["content"] = inv.Content
	}
	if inv.URL != "" {
		out["url"] = inv.URL
	}
	if inv.Query != "" {
		out["query"] = inv.Query
	}
	return out
}
