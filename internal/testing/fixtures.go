package testing

import (
	"path"
	"strings"

	"github.com/jftf/jftf-setup/internal/config"
	"github.com/jftf/jftf-setup/internal/host"
	"github.com/jftf/jftf-setup/internal/host/hosttest"
)

// StockRsyslogConf is an excerpt of the rsyslog.conf Debian ships.
const StockRsyslogConf = `# /etc/rsyslog.conf configuration file for rsyslog

module(load="imuxsock") # provides support for local system logging

# provides UDP syslog reception
#module(load="imudp")
#input(type="imudp" port="514")

# provides TCP syslog reception
#module(load="imtcp")
#input(type="imtcp" port="514")
`

// HostFixture builds fake hosts laid out for a configuration.
type HostFixture struct {
	cfg *config.Config
}

// NewHostFixture creates a fixture for cfg.
func NewHostFixture(cfg *config.Config) *HostFixture {
	return &HostFixture{cfg: cfg}
}

// Fresh returns a host with the project checkout and rsyslog.conf but no OS
// packages and no virtual environment. Creating the environment adds its files.
func (f *HostFixture) Fresh() *hosttest.Fake {
	fake := hosttest.New()
	cfg := f.cfg

	fake.AddDir(cfg.ProjectRoot)
	fake.AddFile(cfg.ManifestPath(), "Django\nmysqlclient\ncelery\n")
	fake.AddFile(cfg.ManagePath(), "#!/usr/bin/env python\n")
	fake.AddFile(path.Join(cfg.LegacyViewsDir(), path.Base(cfg.LegacyViews.Script)), "#!/bin/sh\n")
	fake.AddFile(cfg.Rsyslog.ConfigPath, StockRsyslogConf)

	fake.Fail(hosttest.Prefix("dpkg-query"), 1, "dpkg-query: no packages found matching package")
	fake.On(hosttest.Prefix("printenv", "PATH"), host.Result{Stdout: "/usr/local/bin:/usr/bin:/bin\n"})
	fake.On(hosttest.Prefix("sudo", "mysql"), host.Result{Stdout: cfg.Database.Timezone + "\n"})
	fake.On(hosttest.Prefix("systemctl", "is-active"), host.Result{Stdout: "active\n"})
	fake.On(hosttest.Prefix("sudo", "rabbitmqctl", "--silent", "list_users"), host.Result{Stdout: "guest\t[administrator]\n"})

	venv := cfg.VenvDir()
	fake.OnFunc(hosttest.Prefix(cfg.Python.Interpreter, "-m", "venv"), func(host.Command) (host.Result, error) {
		fake.AddFile(path.Join(venv, "bin", "activate"), "# activate\n")
		fake.AddFile(path.Join(venv, "bin", "python"), "")
		return host.Result{}, nil
	})
	return fake
}

// Provisioned returns a host on which a previous run already succeeded:
// every package is installed, the environment exists, rsyslog.conf is
// patched and the broker user exists.
func (f *HostFixture) Provisioned() *hosttest.Fake {
	fake := f.Fresh()
	cfg := f.cfg

	fake.On(hosttest.Prefix("dpkg-query"), host.Result{Stdout: "install ok installed"})

	venv := cfg.VenvDir()
	fake.AddFile(path.Join(venv, "bin", "activate"), "# activate\n")
	fake.AddFile(path.Join(venv, "bin", "python"), "")

	patched := StockRsyslogConf + "$AllowedSender UDP, 127.0.0.1\n"
	patched = replaceLine(patched, `#module(load="imudp")`, `module(load="imudp")`)
	patched = replaceLine(patched, `#input(type="imudp" port="514")`, `input(type="imudp" port="514")`)
	fake.AddFile(cfg.Rsyslog.ConfigPath, patched)

	fake.On(hosttest.Prefix("sudo", "rabbitmqctl", "--silent", "list_users"),
		host.Result{Stdout: "guest\t[administrator]\n" + cfg.RabbitMQ.User + "\t[administrator]\n"})
	return fake
}

func replaceLine(content, old, replacement string) string {
	return strings.Replace(content, "\n"+old+"\n", "\n"+replacement+"\n", 1)
}
