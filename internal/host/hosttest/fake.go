// Package hosttest provides a scripted, recording host for tests.
package hosttest

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/jftf/jftf-setup/internal/host"
)

// Matcher selects the commands a rule applies to.
type Matcher func(cmd host.Command) bool

// Prefix matches commands whose words start with argv. The words are "sudo"
// for privileged commands, then the program and its arguments; environment
// assignments placed after sudo are not part of them.
func Prefix(argv ...string) Matcher {
	return func(cmd host.Command) bool {
		got := words(cmd)
		if len(got) < len(argv) {
			return false
		}
		for i := range argv {
			if got[i] != argv[i] {
				return false
			}
		}
		return true
	}
}

func words(cmd host.Command) []string {
	w := make([]string, 0, len(cmd.Args)+2)
	if cmd.Sudo {
		w = append(w, "sudo")
	}
	w = append(w, cmd.Name)
	return append(w, cmd.Args...)
}

// Contains matches commands whose argv holds word anywhere.
func Contains(word string) Matcher {
	return func(cmd host.Command) bool {
		for _, w := range cmd.Argv() {
			if w == word {
				return true
			}
		}
		return false
	}
}

// Handler produces the outcome of a matched command.
type Handler func(cmd host.Command) (host.Result, error)

type rule struct {
	match     Matcher
	handle    Handler
	remaining int // -1 means unlimited
}

// Call is a recorded invocation.
type Call struct {
	Command host.Command
	Stdin   string
}

// Argv returns the recorded argv joined with spaces.
func (c Call) Argv() string {
	return strings.Join(c.Command.Argv(), " ")
}

// Fake is an in-memory Host. Unmatched commands succeed with empty output.
// "sudo tee <path>" stores its stdin in Files.
type Fake struct {
	mu sync.Mutex

	HostName string
	UID      int
	Files    map[string][]byte
	Dirs     map[string]bool
	// Missing lists executables LookPath does not find.
	Missing map[string]bool

	calls  []Call
	rules  []*rule
	closed bool
}

// New creates an empty fake host running as an unprivileged user.
func New() *Fake {
	return &Fake{
		HostName: "fake",
		UID:      1000,
		Files:    map[string][]byte{},
		Dirs:     map[string]bool{},
		Missing:  map[string]bool{},
	}
}

// On answers matching commands with res. Rules added later take precedence.
// A non-zero res.ExitCode is reported as *host.ExitError.
func (f *Fake) On(m Matcher, res host.Result) *Fake {
	return f.OnFunc(m, func(host.Command) (host.Result, error) { return res, nil })
}

// Once is like On but applies to the next matching command only.
func (f *Fake) Once(m Matcher, res host.Result) *Fake {
	f.add(m, func(host.Command) (host.Result, error) { return res, nil }, 1)
	return f
}

// Fail makes matching commands exit with code and stderr.
func (f *Fake) Fail(m Matcher, code int, stderr string) *Fake {
	return f.On(m, host.Result{ExitCode: code, Stderr: stderr})
}

// OnFunc answers matching commands with h.
func (f *Fake) OnFunc(m Matcher, h Handler) *Fake {
	f.add(m, h, -1)
	return f
}

// AddFile stores a file and its parent directories.
func (f *Fake) AddFile(p string, data string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Files[p] = []byte(data)
	f.addDirLocked(path.Dir(p))
	return f
}

// AddDir stores a directory and its parents.
func (f *Fake) AddDir(p string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addDirLocked(p)
	return f
}

func (f *Fake) addDirLocked(p string) {
	for p != "/" && p != "." && p != "" {
		f.Dirs[p] = true
		p = path.Dir(p)
	}
}

func (f *Fake) add(m Matcher, h Handler, remaining int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, &rule{match: m, handle: h, remaining: remaining})
}

// Calls returns every recorded invocation in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Commands returns the recorded argv strings in order.
func (f *Fake) Commands() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Argv()
	}
	return out
}

// Find returns the recorded calls matching m.
func (f *Fake) Find(m Matcher) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if m(c.Command) {
			out = append(out, c)
		}
	}
	return out
}

// Ran reports whether any recorded command matched m.
func (f *Fake) Ran(m Matcher) bool {
	return len(f.Find(m)) > 0
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Name implements host.Host.
func (f *Fake) Name() string { return f.HostName }

// Run implements host.Host.
func (f *Fake) Run(_ context.Context, cmd host.Command) (host.Result, error) {
	var stdin string
	if cmd.Stdin != nil {
		data, err := io.ReadAll(cmd.Stdin)
		if err != nil {
			return host.Result{}, err
		}
		stdin = string(data)
	}

	f.mu.Lock()
	f.calls = append(f.calls, Call{Command: cmd, Stdin: stdin})
	handler := f.matchLocked(cmd)
	f.mu.Unlock()

	var (
		res host.Result
		err error
	)
	if handler != nil {
		res, err = handler(cmd)
	} else if Prefix("sudo", "tee")(cmd) && len(cmd.Args) > 0 {
		f.mu.Lock()
		f.Files[cmd.Args[len(cmd.Args)-1]] = []byte(stdin)
		f.mu.Unlock()
		res.Stdout = stdin
	}
	if err != nil {
		return res, err
	}
	if res.ExitCode != 0 {
		return res, &host.ExitError{Command: cmd.String(), Code: res.ExitCode, Output: res.Output()}
	}
	return res, nil
}

func (f *Fake) matchLocked(cmd host.Command) Handler {
	for i := len(f.rules) - 1; i >= 0; i-- {
		r := f.rules[i]
		if r.remaining == 0 || !r.match(cmd) {
			continue
		}
		if r.remaining > 0 {
			r.remaining--
		}
		return r.handle
	}
	return nil
}

// Exists implements host.Host.
func (f *Fake) Exists(_ context.Context, p string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, isFile := f.Files[p]
	return isFile || f.Dirs[p], nil
}

// IsDir implements host.Host.
func (f *Fake) IsDir(_ context.Context, p string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Dirs[p], nil
}

// ReadFile implements host.Host.
func (f *Fake) ReadFile(_ context.Context, p string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.Files[p]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file or directory", p)
	}
	return append([]byte(nil), data...), nil
}

// LookPath implements host.Host.
func (f *Fake) LookPath(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Missing[name] {
		return "", fmt.Errorf("%s: executable file not found in $PATH", name)
	}
	return "/usr/bin/" + name, nil
}

// EffectiveUID implements host.Host.
func (f *Fake) EffectiveUID(context.Context) (int, error) {
	return f.UID, nil
}

// Close implements host.Host.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

var _ host.Host = (*Fake)(nil)
