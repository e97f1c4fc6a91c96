package jsbe

import "strings"

// punctNames spells symbol characters that are not valid, or not
// unambiguous, in a JavaScript identifier. Every escape but '-' starts
// with '$', and no escape code is a prefix of another, so distinct
// symbols always get distinct identifiers.
var punctNames = map[rune]string{
	'-': "_",
	'_': "$u",
	'$': "$$",
	'?': "$q",
	'!': "$b",
	'*': "$star",
	'+': "$plus",
	'/': "$slash",
	'<': "$lt",
	'>': "$gt",
	'=': "$eq",
	'%': "$pct",
	'&': "$amp",
	'.': "$dot",
	':': "$colon",
	'^': "$caret",
	'~': "$tilde",
	'|': "$pipe",
	'#': "$hash",
	'@': "$at",
}

var reservedWords = map[string]bool{
	"arguments": true, "await": true, "break": true, "case": true, "catch": true,
	"class": true, "const": true, "continue": true, "debugger": true, "default": true,
	"delete": true, "do": true, "else": true, "enum": true, "eval": true,
	"export": true, "extends": true, "false": true, "finally": true, "for": true,
	"function": true, "if": true, "implements": true, "import": true, "in": true,
	"instanceof": true, "interface": true, "let": true, "new": true, "null": true,
	"package": true, "private": true, "protected": true, "public": true, "return": true,
	"static": true, "super": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "undefined": true, "var": true,
	"void": true, "while": true, "with": true, "yield": true, "NaN": true,
	"Infinity": true,
}

// nameTable caches the identifier of every symbol seen by one generator.
type nameTable struct {
	bySource map[string]string
}

func newNameTable() *nameTable {
	return &nameTable{bySource: make(map[string]string)}
}

func (t *nameTable) mangle(name string) string {
	if id, ok := t.bySource[name]; ok {
		return id
	}
	id := identifier(name)
	t.bySource[name] = id
	return id
}

// identifier spells name as a JavaScript identifier. The result depends
// only on name, so separately compiled units agree on every global. A
// reserved word gets a trailing '$'; every other '$' comes from an escape.
func identifier(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if s, ok := punctNames[r]; ok {
			sb.WriteString(s)
			continue
		}
		sb.WriteRune(r)
	}
	id := sb.String()
	if reservedWords[id] {
		id += "$"
	}
	return id
}
