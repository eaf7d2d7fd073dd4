package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/jftf/jftf-setup/internal/util/retry"
)

const (
	defaultSSHPort      = 22
	defaultDialTimeout  = 10 * time.Second
	defaultDialAttempts = 5
	defaultRetryDelay   = 2 * time.Second
	defaultMaxDelay     = 10 * time.Second
)

// SSHConfig holds the connection settings for a remote target.
type SSHConfig struct {
	Host       string
	Port       int
	User       string
	PrivateKey []byte

	// DialTimeout is the timeout for establishing the TCP connection.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// MaxRetries is the maximum number of connection retry attempts.
	// If zero, defaultDialAttempts is used.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// CommandTimeout bounds each Run; zero means no bound beyond ctx.
	CommandTimeout time.Duration

	// HostKeyCallback handles host key verification.
	// If nil, ssh.InsecureIgnoreHostKey() is used; development VMs are
	// typically recreated and their keys change.
	HostKeyCallback ssh.HostKeyCallback
}

// SSH runs commands on a remote machine. The connection is opened on first
// use and kept for the whole provisioning run.
type SSH struct {
	config *SSHConfig
	signer ssh.Signer
	client *ssh.Client
	dial   func(network, addr string, cfg *ssh.ClientConfig) (*ssh.Client, error)
}

// NewSSH creates a remote host and validates the private key.
func NewSSH(cfg *SSHConfig) (*SSH, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("config private key cannot be empty")
	}

	// Copy config to avoid mutating caller's struct
	configCopy := *cfg
	if configCopy.Port == 0 {
		configCopy.Port = defaultSSHPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.MaxRetries == 0 {
		configCopy.MaxRetries = defaultDialAttempts
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}
	if configCopy.HostKeyCallback == nil {
		configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // development VMs
	}

	signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &SSH{config: &configCopy, signer: signer, dial: ssh.Dial}, nil
}

// NewSSHFromKeyFile reads the private key from disk and creates a remote host.
func NewSSHFromKeyFile(cfg SSHConfig, keyFile string) (*SSH, error) {
	// #nosec G304
	key, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read ssh key: %w", err)
	}
	cfg.PrivateKey = key
	return NewSSH(&cfg)
}

// Name implements Host.
func (s *SSH) Name() string {
	return fmt.Sprintf("%s@%s:%d", s.config.User, s.config.Host, s.config.Port)
}

// Run implements Host.
func (s *SSH) Run(ctx context.Context, cmd Command) (Result, error) {
	res, err := s.exec(ctx, Render(cmd), cmd.Stdin)
	if err != nil {
		return res, fmt.Errorf("failed to run %s on %s: %w", cmd, s.config.Host, err)
	}
	if res.ExitCode != 0 {
		return res, exitError(cmd, res)
	}
	return res, nil
}

// Exists implements Host.
func (s *SSH) Exists(ctx context.Context, path string) (bool, error) {
	return s.test(ctx, "-e", path)
}

// IsDir implements Host.
func (s *SSH) IsDir(ctx context.Context, path string) (bool, error) {
	return s.test(ctx, "-d", path)
}

// ReadFile implements Host.
func (s *SSH) ReadFile(ctx context.Context, path string) ([]byte, error) {
	res, err := s.Run(ctx, Command{Name: "cat", Args: []string{path}})
	if err != nil {
		return nil, err
	}
	return []byte(res.Stdout), nil
}

// LookPath implements Host.
func (s *SSH) LookPath(ctx context.Context, name string) (string, error) {
	res, err := s.exec(ctx, "command -v "+quote(name), nil)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%s: executable file not found in $PATH on %s", name, s.config.Host)
	}
	return trimLine(res.Stdout), nil
}

// EffectiveUID implements Host.
func (s *SSH) EffectiveUID(ctx context.Context) (int, error) {
	res, err := s.Run(ctx, Command{Name: "id", Args: []string{"-u"}})
	if err != nil {
		return 0, err
	}
	return parseUID(res.Stdout)
}

// Close implements Host.
func (s *SSH) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func (s *SSH) test(ctx context.Context, flag, path string) (bool, error) {
	res, err := s.exec(ctx, "test "+flag+" "+quote(path), nil)
	if err != nil {
		return false, err
	}
	return res.ExitCode == 0, nil
}

// exec runs a shell line in a new session. A non-zero exit is reported in
// Result.ExitCode, not as an error.
func (s *SSH) exec(ctx context.Context, line string, stdin io.Reader) (Result, error) {
	if s.config.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.CommandTimeout)
		defer cancel()
	}

	client, err := s.connect(ctx)
	if err != nil {
		return Result{}, err
	}

	session, err := client.NewSession()
	if err != nil {
		return Result{}, fmt.Errorf("failed to create SSH session on %s: %w", s.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	session.Stdin = stdin

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = session.Close()
		case <-done:
		}
	}()

	err = session.Run(line)
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *ssh.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitStatus()
		return res, nil
	case ctx.Err() != nil:
		return res, ctx.Err()
	default:
		return res, err
	}
}

// connect establishes the SSH connection once, with retry logic.
func (s *SSH) connect(ctx context.Context) (*ssh.Client, error) {
	if s.client != nil {
		return s.client, nil
	}

	config := &ssh.ClientConfig{
		User: s.config.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(s.signer),
		},
		HostKeyCallback: s.config.HostKeyCallback,
		Timeout:         s.config.DialTimeout,
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	var client *ssh.Client

	err := retry.WithExponentialBackoff(ctx, func() error {
		var dialErr error
		client, dialErr = s.dial("tcp", addr, config)
		if dialErr != nil && strings.Contains(dialErr.Error(), "unable to authenticate") {
			return retry.Fatal(dialErr)
		}
		return dialErr
	},
		retry.WithMaxRetries(s.config.MaxRetries),
		retry.WithInitialDelay(s.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s after %d retry attempts: %w",
			addr, s.config.MaxRetries, err)
	}

	s.client = client
	return client, nil
}

func trimLine(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
