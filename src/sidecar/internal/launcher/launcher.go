// Package launcher starts the external language-server process and exposes its
// stdio as a JSON-RPC connection.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/fs"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	_configKeyServer = "server"

	_scriptWindows = "language_server.bat"
	_scriptPosix   = "language_server.sh"

	_defaultStopGrace = 3 * time.Second
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Launcher starts language-server processes.
type Launcher interface {
	// ScriptPath returns the absolute path of the launcher script for the current platform.
	ScriptPath() (string, error)
	// Launch starts the launcher script with no arguments and returns a handle
	// to the running server. The server's stderr is copied to stderr when
	// non-nil, otherwise it is mirrored into the sidecar log.
	Launch(ctx context.Context, stderr io.Writer) (*Server, error)
}

// Config holds the launcher settings from the config files.
type Config struct {
	// Dir containing the launcher scripts. Defaults to the sidecar executable's directory.
	Dir string `yaml:"dir"`
	// StopGraceSeconds is how long Stop waits for the process to exit before killing it.
	StopGraceSeconds int `yaml:"stopGraceSeconds"`
}

// Params define values to be used by the launcher.
type Params struct {
	fx.In

	Config config.Provider
	FS     fs.SidecarFS
	Logger *zap.SugaredLogger
}

type launcher struct {
	cfg    Config
	fs     fs.SidecarFS
	logger *zap.SugaredLogger
	goos   string
}

// New creates a Launcher using the configured server directory.
func New(p Params) (Launcher, error) {
	l := &launcher{
		fs:     p.FS,
		logger: p.Logger,
		goos:   runtime.GOOS,
	}
	if err := p.Config.Get(_configKeyServer).Populate(&l.cfg); err != nil {
		return nil, fmt.Errorf("getting config field %q: %w", _configKeyServer, err)
	}
	return l, nil
}

// ScriptPath selects the platform launcher script and returns its absolute path.
func (l *launcher) ScriptPath() (string, error) {
	dir := l.cfg.Dir
	if dir == "" {
		var err error
		if dir, err = l.fs.ExecutableDir(); err != nil {
			return "", fmt.Errorf("resolving server directory: %w", err)
		}
	}
	return filepath.Join(dir, scriptName(l.goos)), nil
}

// Launch starts the language server and wires its stdio into a jsonrpc2 connection.
func (l *launcher) Launch(ctx context.Context, stderr io.Writer) (*Server, error) {
	script, err := l.ScriptPath()
	if err != nil {
		return nil, err
	}

	if exists, err := l.fs.FileExists(script); err != nil {
		return nil, fmt.Errorf("checking launcher script: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("launcher script %q not found", script)
	}

	cmd := exec.Command(script)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("opening server stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("opening server stdout: %w", err)
	}
	if stderr == nil {
		stderr = &logWriter{logger: l.logger.Named("language-server")}
	}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting language server %q: %w", script, err)
	}
	l.logger.Infow("language server started", zap.String("script", script), zap.Int("pid", cmd.Process.Pid))

	grace := _defaultStopGrace
	if l.cfg.StopGraceSeconds > 0 {
		grace = time.Duration(l.cfg.StopGraceSeconds) * time.Second
	}

	s := &Server{
		Conn:   jsonrpc2.NewConn(jsonrpc2.NewStream(&stdioPipe{reader: stdout, writer: stdin})),
		cmd:    cmd,
		grace:  grace,
		exited: make(chan error, 1),
	}
	go func() {
		s.exited <- cmd.Wait()
	}()
	return s, nil
}

// scriptName returns the launcher script filename for the given platform value.
func scriptName(goos string) string {
	if goos == "windows" {
		return _scriptWindows
	}
	return _scriptPosix
}

// Server is a handle to a launched language-server process.
type Server struct {
	Conn jsonrpc2.Conn

	cmd    *exec.Cmd
	grace  time.Duration
	exited chan error
}

// PID returns the process id of the launched server.
func (s *Server) PID() int {
	return s.cmd.Process.Pid
}

// Stop closes the connection and waits for the process to exit, killing it
// after the grace period. The caller is expected to have already sent the
// protocol-level shutdown and exit requests.
func (s *Server) Stop(ctx context.Context) error {
	err := s.Conn.Close()

	select {
	case <-s.exited:
	case <-time.After(s.grace):
		err = multierr.Append(err, s.cmd.Process.Kill())
		<-s.exited
	case <-ctx.Done():
		err = multierr.Append(err, s.cmd.Process.Kill())
		<-s.exited
	}

	return err
}

// stdioPipe combines the child process's stdout and stdin into an io.ReadWriteCloser.
type stdioPipe struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (p *stdioPipe) Read(b []byte) (int, error) {
	return p.reader.Read(b)
}

func (p *stdioPipe) Write(b []byte) (int, error) {
	return p.writer.Write(b)
}

func (p *stdioPipe) Close() error {
	return multierr.Append(p.reader.Close(), p.writer.Close())
}

// logWriter surfaces the server's stderr through the sidecar's logger.
type logWriter struct {
	logger *zap.SugaredLogger
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.logger.Info(string(p))
	return len(p), nil
}
