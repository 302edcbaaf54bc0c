// Package runner starts the application under test and wires its standard
// streams to the driver, either on this host or over SSH.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

var ErrEmptyCommand = errors.New("runner: empty command")

// Streams are the application's standard streams. Nil fields are left
// unconnected.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

type Runner interface {
	RunStreaming(ctx context.Context, cmd string, args []string, streams Streams) error
}

func joinCommand(cmd string, args []string) string {
	if len(args) == 0 {
		return shellEscape(cmd)
	}

	var builder strings.Builder
	builder.WriteString(shellEscape(cmd))
	for _, arg := range args {
		builder.WriteByte(' ')
		builder.WriteString(shellEscape(arg))
	}

	return builder.String()
}

func shellEscape(value string) string {
	if value == "" {
		return "''"
	}

	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

type LocalRunner struct {
	// Env is appended to the driver's environment.
	Env []string
}

func (r LocalRunner) RunStreaming(ctx context.Context, cmd string, args []string, streams Streams) error {
	if strings.TrimSpace(cmd) == "" {
		return ErrEmptyCommand
	}
	command := exec.CommandContext(ctx, cmd, args...)
	if len(r.Env) > 0 {
		command.Env = append(os.Environ(), r.Env...)
	}
	command.Stdin = streams.Stdin
	command.Stdout = streams.Stdout
	command.Stderr = streams.Stderr
	return command.Run()
}

type SSHRunner struct {
	Host                        string
	Port                        string
	User                        string
	KeyPath                     string
	Passphrase                  []byte
	KnownHostsPath              string
	InsecureSkipHostKeyChecking bool
	Timeout                     time.Duration
	// ConnectAttempts bounds TCP dial attempts. Zero means one attempt.
	ConnectAttempts int
	Backoff         Backoff
}

func (r SSHRunner) RunStreaming(ctx context.Context, cmd string, args []string, streams Streams) error {
	if strings.TrimSpace(cmd) == "" {
		return ErrEmptyCommand
	}
	client, err := r.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return err
	}
	defer session.Close()

	session.Stdin = streams.Stdin
	session.Stdout = streams.Stdout
	session.Stderr = streams.Stderr

	done := make(chan error, 1)
	go func() {
		done <- session.Run(joinCommand(cmd, args))
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGTERM)
		_ = client.Close()
		<-done
		return ctx.Err()
	}
}

func (r SSHRunner) dial(ctx context.Context) (*ssh.Client, error) {
	address, err := r.address()
	if err != nil {
		return nil, err
	}

	config, err := r.clientConfig()
	if err != nil {
		return nil, err
	}

	conn, err := r.dialTCP(ctx, address)
	if err != nil {
		return nil, err
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return ssh.NewClient(clientConn, chans, reqs), nil
}

func (r SSHRunner) dialTCP(ctx context.Context, address string) (net.Conn, error) {
	attempts := r.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	dialer := net.Dialer{Timeout: r.Timeout}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := sleepContext(ctx, r.Backoff.Delay(attempt, rng)); err != nil {
			return nil, err
		}
		conn, err := dialer.DialContext(ctx, "tcp", address)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		log.Debug().Err(err).Str("address", address).Int("attempt", attempt).Msg("runner.SSHRunner dial failed")
	}
	return nil, fmt.Errorf("dial %s after %d attempt(s): %w", address, attempts, lastErr)
}

func (r SSHRunner) address() (string, error) {
	host := strings.TrimSpace(r.Host)
	if host == "" {
		return "", fmt.Errorf("ssh host is required")
	}

	if r.Port != "" {
		return net.JoinHostPort(host, r.Port), nil
	}

	if _, _, err := net.SplitHostPort(host); err == nil {
		return host, nil
	}

	return net.JoinHostPort(host, "22"), nil
}

func (r SSHRunner) clientConfig() (*ssh.ClientConfig, error) {
	if r.User == "" {
		return nil, fmt.Errorf("ssh user is required")
	}

	signer, err := r.signer()
	if err != nil {
		return nil, err
	}

	var hostKeyCallback ssh.HostKeyCallback
	if r.InsecureSkipHostKeyChecking {
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	} else {
		callback, err := r.knownHostsCallback()
		if err != nil {
			return nil, err
		}
		hostKeyCallback = callback
	}

	return &ssh.ClientConfig{
		User:            r.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         r.Timeout,
	}, nil
}

func (r SSHRunner) signer() (ssh.Signer, error) {
	if r.KeyPath == "" {
		return nil, fmt.Errorf("ssh key path is required")
	}

	privateKey, err := os.ReadFile(expandHome(r.KeyPath))
	if err != nil {
		return nil, err
	}

	if len(r.Passphrase) > 0 {
		return ssh.ParsePrivateKeyWithPassphrase(privateKey, r.Passphrase)
	}

	return ssh.ParsePrivateKey(privateKey)
}

func (r SSHRunner) knownHostsCallback() (ssh.HostKeyCallback, error) {
	path := strings.TrimSpace(r.KnownHostsPath)
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("known hosts path not set and home dir unavailable")
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}

	return knownhosts.New(expandHome(path))
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
