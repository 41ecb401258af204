// Package prompt renders per-user instruction templates.
//
// Templates use a deliberately small language:
//
//	{{ name }}                 substitute a variable
//	{% set name = "text" %}    define a local variable
//	{# comment #}              dropped from output
//
// A name set anywhere in the template is local throughout it. References
// ahead of the set render empty.
//
// A leading or trailing '-' inside any tag trims adjacent whitespace, as in
// {{- name -}}. Anything else inside a tag is a syntax error.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

// Profile variables every template may reference.
const (
	VarUserName    = "user_name"
	VarUserProfile = "user_profile"
	VarToneStyle   = "tone_style"
	VarReplyLength = "reply_length"
	VarSignature   = "signature"
	VarLanguage    = "language"
)

// ProfileVariables lists the names supplied from a tone profile.
var ProfileVariables = []string{VarUserName, VarUserProfile, VarToneStyle, VarReplyLength, VarSignature, VarLanguage}

// SyntaxError reports a malformed template.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template syntax error on line %d: %s", e.Line, e.Msg)
}

// UnknownPlaceholderError reports a reference to a variable that is neither
// a profile variable nor defined with set.
type UnknownPlaceholderError struct {
	Line int
	Name string
}

func (e *UnknownPlaceholderError) Error() string {
	return fmt.Sprintf("unknown placeholder %q on line %d", e.Name, e.Line)
}

type nodeKind int

const (
	textNode nodeKind = iota
	varNode
	setNode
)

type node struct {
	kind  nodeKind
	text  string
	name  string
	line  int
	local bool
}

// Template is a parsed template.
type Template struct {
	nodes []node
}

var (
	identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	setPattern   = regexp.MustCompile(`^set\s+([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(?:"([^"]*)"|'([^']*)')$`)
)

var closers = map[string]string{"{{": "}}", "{%": "%}", "{#": "#}"}

// Parse compiles src. Only structure is checked here; unknown placeholders
// surface from Check or Execute.
func Parse(src string) (*Template, error) {
	var nodes []node
	defined := make(map[string]bool)
	line := 1
	trimNext := false

	for len(src) > 0 {
		open := nextOpener(src)
		if open < 0 {
			nodes = appendText(nodes, src, trimNext)
			break
		}
		nodes = appendText(nodes, src[:open], trimNext)
		trimNext = false
		line += strings.Count(src[:open], "\n")

		opener := src[open : open+2]
		rest := src[open+2:]
		end := strings.Index(rest, closers[opener])
		if end < 0 {
			return nil, &SyntaxError{Line: line, Msg: fmt.Sprintf("unclosed %q", opener)}
		}
		inner := rest[:end]
		src = rest[end+2:]
		tagLine := line
		line += strings.Count(inner, "\n")

		if strings.HasPrefix(inner, "-") {
			inner = inner[1:]
			trimLastText(nodes)
		}
		if strings.HasSuffix(inner, "-") {
			inner = inner[:len(inner)-1]
			trimNext = true
		}
		inner = strings.TrimSpace(inner)

		switch opener {
		case "{#":
			continue
		case "{{":
			if strings.Contains(inner, "{{") || strings.Contains(inner, "{%") {
				return nil, &SyntaxError{Line: tagLine, Msg: "unexpected '{' inside placeholder"}
			}
			if !identPattern.MatchString(inner) {
				return nil, &SyntaxError{Line: tagLine, Msg: fmt.Sprintf("unsupported expression %q", inner)}
			}
			nodes = append(nodes, node{kind: varNode, name: inner, line: tagLine})
		case "{%":
			m := setPattern.FindStringSubmatch(inner)
			if m == nil {
				word := strings.Fields(inner)
				name := inner
				if len(word) > 0 {
					name = word[0]
				}
				return nil, &SyntaxError{Line: tagLine, Msg: fmt.Sprintf("unknown directive %q", name)}
			}
			value := m[2]
			if value == "" {
				value = m[3]
			}
			defined[m[1]] = true
			nodes = append(nodes, node{kind: setNode, name: m[1], text: value, line: tagLine})
		}
	}

	// A set anywhere in the template makes the name local everywhere,
	// so a use before its set renders empty.
	for i := range nodes {
		if nodes[i].kind == varNode && defined[nodes[i].name] {
			nodes[i].local = true
		}
	}
	return &Template{nodes: nodes}, nil
}

func nextOpener(s string) int {
	best := -1
	for opener := range closers {
		if i := strings.Index(s, opener); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

func appendText(nodes []node, text string, trimLeft bool) []node {
	if trimLeft {
		text = strings.TrimLeft(text, " \t\r\n")
	}
	if text == "" {
		return nodes
	}
	return append(nodes, node{kind: textNode, text: text})
}

func trimLastText(nodes []node) {
	if len(nodes) == 0 || nodes[len(nodes)-1].kind != textNode {
		return
	}
	last := &nodes[len(nodes)-1]
	last.text = strings.TrimRight(last.text, " \t\r\n")
}

// Variables returns every referenced name that no set defines, in first-use
// order.
func (t *Template) Variables() []string {
	seen := make(map[string]bool)
	var names []string
	for _, n := range t.nodes {
		if n.kind != varNode || n.local || seen[n.name] {
			continue
		}
		seen[n.name] = true
		names = append(names, n.name)
	}
	return names
}

// Check returns an UnknownPlaceholderError for the first reference that
// known does not cover.
func (t *Template) Check(known []string) error {
	allowed := make(map[string]bool, len(known))
	for _, k := range known {
		allowed[k] = true
	}
	for _, n := range t.nodes {
		if n.kind == varNode && !n.local && !allowed[n.name] {
			return &UnknownPlaceholderError{Line: n.line, Name: n.name}
		}
	}
	return nil
}

// Execute renders the template against vars.
func (t *Template) Execute(vars map[string]string) (string, error) {
	locals := make(map[string]string)
	var b strings.Builder
	for _, n := range t.nodes {
		switch n.kind {
		case textNode:
			b.WriteString(n.text)
		case setNode:
			locals[n.name] = n.text
		case varNode:
			if n.local {
				b.WriteString(locals[n.name])
				continue
			}
			v, ok := vars[n.name]
			if !ok {
				return "", &UnknownPlaceholderError{Line: n.line, Name: n.name}
			}
			b.WriteString(v)
		}
	}
	return b.String(), nil
}
