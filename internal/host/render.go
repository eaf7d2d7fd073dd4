package host

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Render turns a command into a single POSIX shell line. Each word is quoted
// only when needed, so the rendering is also what an SSH session executes.
func Render(cmd Command) string {
	var b strings.Builder
	if cmd.Dir != "" {
		b.WriteString("cd ")
		b.WriteString(quote(cmd.Dir))
		b.WriteString(" && ")
	}
	if !cmd.Sudo && len(cmd.Env) > 0 {
		b.WriteString("env ")
		for _, kv := range cmd.Env {
			b.WriteString(quote(kv))
			b.WriteByte(' ')
		}
	}
	for i, word := range cmd.Argv() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(quote(word))
	}
	return b.String()
}

func quote(word string) string {
	q, err := syntax.Quote(word, syntax.LangPOSIX)
	if err != nil {
		// Quote only fails on bytes no shell can carry (NUL); fall back to
		// single quotes so the rendering stays readable in logs.
		return "'" + strings.ReplaceAll(word, "'", `'\''`) + "'"
	}
	return q
}
