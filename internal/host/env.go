package host

import "context"

type envHost struct {
	Host
	env []string
}

// WithEnv returns a host that adds env to every unprivileged command.
// Commands run through sudo keep sudo's sanitized environment; anything
// they need is passed explicitly in Command.Env.
func WithEnv(h Host, env []string) Host {
	if len(env) == 0 {
		return h
	}
	return &envHost{Host: h, env: append([]string(nil), env...)}
}

// Run implements Host.
func (e *envHost) Run(ctx context.Context, cmd Command) (Result, error) {
	if !cmd.Sudo {
		merged := make([]string, 0, len(e.env)+len(cmd.Env))
		merged = append(merged, e.env...)
		cmd.Env = append(merged, cmd.Env...)
	}
	return e.Host.Run(ctx, cmd)
}
