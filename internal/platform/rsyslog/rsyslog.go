// Package rsyslog patches rsyslog.conf to accept log messages over UDP.
package rsyslog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jftf/jftf-setup/internal/host"
)

// ErrConfigMissing is returned when the configuration file does not exist.
var ErrConfigMissing = errors.New("rsyslog configuration not found")

// PatchOptions describes the wanted configuration.
type PatchOptions struct {
	// Uncomment lists directives to activate. A commented occurrence is
	// uncommented in place; a directive absent from the file is left out.
	Uncomment []string
	// Append lists lines added once at the end when missing.
	Append []string
}

// Patch returns content with opts applied and whether anything changed.
// Patch is idempotent: patching its own output changes nothing.
func Patch(content string, opts PatchOptions) (string, bool) {
	lines := strings.Split(content, "\n")
	// A trailing newline yields an empty last element; keep it separate.
	trailing := len(lines) > 0 && lines[len(lines)-1] == ""
	if trailing {
		lines = lines[:len(lines)-1]
	}

	changed := false
	for _, directive := range opts.Uncomment {
		directive = strings.TrimSpace(directive)
		if directive == "" {
			continue
		}
		if active, idx := findDirective(lines, directive); !active && idx >= 0 {
			lines[idx] = directive
			changed = true
		}
	}

	for _, line := range opts.Append {
		line = strings.TrimSpace(line)
		if line == "" || containsLine(lines, line) {
			continue
		}
		lines = append(lines, line)
		changed = true
	}

	if !changed {
		return content, false
	}
	return strings.Join(lines, "\n") + "\n", true
}

// findDirective reports whether directive is already active and otherwise
// the index of its first commented occurrence, or -1.
func findDirective(lines []string, directive string) (bool, int) {
	commented := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == directive {
			return true, -1
		}
		if commented < 0 && strings.HasPrefix(trimmed, "#") &&
			strings.TrimSpace(strings.TrimLeft(trimmed, "#")) == directive {
			commented = i
		}
	}
	return false, commented
}

// Absent returns the Uncomment directives content holds neither active nor
// commented. Patch cannot activate them.
func Absent(content string, opts PatchOptions) []string {
	lines := strings.Split(content, "\n")
	var absent []string
	for _, directive := range opts.Uncomment {
		directive = strings.TrimSpace(directive)
		if directive == "" {
			continue
		}
		if active, idx := findDirective(lines, directive); !active && idx < 0 {
			absent = append(absent, directive)
		}
	}
	return absent
}

func containsLine(lines []string, want string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) == want {
			return true
		}
	}
	return false
}

// Result reports what Apply did.
type Result struct {
	// Changed is set when the file was rewritten.
	Changed bool
	// Absent lists directives that could not be uncommented.
	Absent []string
}

// Apply patches the file at path on h. An already patched file is not written.
func Apply(ctx context.Context, h host.Host, path string, opts PatchOptions) (Result, error) {
	ok, err := h.Exists(ctx, path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check %s: %w", path, err)
	}
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrConfigMissing, path)
	}

	data, err := h.ReadFile(ctx, path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	res := Result{Absent: Absent(string(data), opts)}
	patched, changed := Patch(string(data), opts)
	if !changed {
		return res, nil
	}
	if err := host.WritePrivileged(ctx, h, path, []byte(patched)); err != nil {
		return res, err
	}
	res.Changed = true
	return res, nil
}
