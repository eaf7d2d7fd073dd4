// Package prerequisites checks the tools a provisioning run relies on.
// Tools are looked up on the target host, so the same check works for
// local and ssh targets.
package prerequisites

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jftf/jftf-setup/internal/host"
)

// Tool represents a binary that may be required on the target.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// Package is the apt package that provides the tool.
	Package string
}

// DefaultTools returns the tools every run needs before the first phase.
// The interpreter is only required when the apt phase does not install it,
// that is when its package is missing from packages.
func DefaultTools(interpreter string, packages []string) []Tool {
	if interpreter == "" {
		interpreter = "python3"
	}
	return []Tool{
		{
			Name:        "sudo",
			Required:    true,
			Description: "Required for package installation and service management",
			Package:     "sudo",
		},
		{
			Name:        "apt-get",
			Required:    true,
			Description: "Required for installing OS packages",
			Package:     "apt",
		},
		{
			Name:        "dpkg-query",
			Required:    true,
			Description: "Required for probing installed OS packages",
			Package:     "dpkg",
		},
		{
			Name:        interpreter,
			Required:    !slices.Contains(packages, interpreter),
			Description: "Required for creating the virtual environment",
			Package:     interpreter,
		},
	}
}

// ServiceTools returns the tools needed to manage services with systemctl.
func ServiceTools() []Tool {
	return []Tool{
		{
			Name:        "systemctl",
			Required:    true,
			Description: "Required for restarting rsyslog and starting rabbitmq-server",
			Package:     "systemd",
		},
	}
}

// InstalledTools returns tools the apt phase installs. They are reported but
// never required up front.
func InstalledTools() []Tool {
	return []Tool{
		{
			Name:        "mysql",
			Required:    false,
			Description: "Used by the cli database admin backend",
			Package:     "mariadb-client",
		},
		{
			Name:        "rabbitmqctl",
			Required:    false,
			Description: "Used for configuring the broker user",
			Package:     "rabbitmq-server",
		},
		{
			Name:        "rsyslogd",
			Required:    false,
			Description: "Receives remote log messages",
			Package:     "rsyslog",
		},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool    Tool
	Found   bool
	Path    string
	Version string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (apt package %s)", tool.Name, tool.Package))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// Check verifies that the specified tools are available on h.
func Check(ctx context.Context, h host.Host, tools []Tool) *CheckResults {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		path, err := h.LookPath(ctx, tool.Name)
		if err == nil {
			result.Found = true
			result.Path = path
			// Try to get version (best effort)
			result.Version = getToolVersion(ctx, h, tool.Name)
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}

	return results
}

// getToolVersion attempts to get the version of a tool.
// Returns empty string if version cannot be determined.
func getToolVersion(ctx context.Context, h host.Host, name string) string {
	for _, flag := range []string{"--version", "version"} {
		res, err := h.Run(ctx, host.Command{Name: name, Args: []string{flag}})
		if err != nil {
			continue
		}
		out := strings.TrimSpace(res.Stdout)
		if out == "" {
			out = strings.TrimSpace(res.Stderr)
		}
		if out != "" {
			first, _, _ := strings.Cut(out, "\n")
			return strings.TrimSpace(first)
		}
	}
	return ""
}
