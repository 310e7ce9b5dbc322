package forge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/fractional-company/vaultctl/internal/domain/config"
	"github.com/fractional-company/vaultctl/internal/usecase"
)

// Builder runs forge build inside a pty so forge keeps its colored output
type Builder struct {
	projectRoot string
	out         io.Writer
	stream      bool
	log         *slog.Logger
}

// NewBuilder creates a builder. With stream set the compiler output is copied
// to out as it is produced, otherwise it is only shown on failure.
func NewBuilder(projectRoot string, out io.Writer, stream bool, log *slog.Logger) *Builder {
	return &Builder{
		projectRoot: projectRoot,
		out:         out,
		stream:      stream,
		log:         log.With("component", "ForgeBuilder"),
	}
}

// ProvideBuilder creates the builder from the runtime config
func ProvideBuilder(cfg *config.RuntimeConfig, log *slog.Logger) *Builder {
	return NewBuilder(cfg.ProjectRoot, os.Stderr, cfg.Debug, log)
}

// Build compiles the project
func (b *Builder) Build(ctx context.Context) error {
	start := time.Now()
	b.log.Debug("running forge build", "dir", b.projectRoot)

	cmd := exec.CommandContext(ctx, "forge", "build")
	cmd.Dir = b.projectRoot

	ptyFile, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("failed to start pty: %w", err)
	}
	defer func() {
		_ = ptyFile.Close()
	}()

	var captured bytes.Buffer
	var sink io.Writer = &captured
	if b.stream {
		sink = io.MultiWriter(&captured, b.out)
	}
	// Reading a pty whose child exited returns EIO on linux
	if _, err := io.Copy(sink, ptyFile); err != nil && !errors.Is(err, syscall.EIO) {
		b.log.Debug("pty read ended", "error", err)
	}

	if err := cmd.Wait(); err != nil {
		if !b.stream {
			_, _ = b.out.Write(captured.Bytes())
		}
		return fmt.Errorf("forge build failed: %w", err)
	}

	b.log.Debug("forge build completed", "duration", time.Since(start))
	return nil
}

var _ usecase.ArtifactBuilder = (*Builder)(nil)
