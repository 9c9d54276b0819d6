// classroom-backup exports or restores one teacher's workspace directly
// against the configured store, without going through the HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/noah-isme/classroom-api/internal/platform"
	"github.com/noah-isme/classroom-api/internal/service"
	"github.com/noah-isme/classroom-api/pkg/config"
	"github.com/noah-isme/classroom-api/pkg/logger"
)

const usage = `Usage: classroom-backup <export|import> --email <teacher> [--file <path>]

Reads STORE_DRIVER and the matching connection settings from the environment
or .env. Without --file, export writes to stdout and import reads stdin.
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprint(os.Stderr, usage)
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return pflag.ErrHelp
	}
	command := args[0]

	var email, file string
	flags := pflag.NewFlagSet("classroom-backup "+command, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.StringVarP(&email, "email", "e", "", "teacher whose workspace is exported or restored")
	flags.StringVarP(&file, "file", "f", "", "backup document path (default stdin/stdout)")
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}
	if email == "" {
		return fmt.Errorf("--email is required")
	}

	b, err := platform.Open(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer b.Close()

	factory := service.NewWorkspaceFactory(b.Store, logr)
	teacher := factory.Global().Directory.Find(ctx, email)
	if teacher == nil {
		return fmt.Errorf("%s is not in the teacher directory", email)
	}
	session := teacher.Session()
	ws := factory.For(&session)

	switch command {
	case "export":
		raw, err := service.ExportWorkspace(ctx, ws)
		if err != nil {
			return err
		}
		if file == "" {
			_, err = stdout.Write(raw)
			return err
		}
		if err := os.WriteFile(file, raw, 0o600); err != nil {
			return fmt.Errorf("write backup: %w", err)
		}
		logr.Info("workspace exported", zap.String("teacher", session.Email), zap.String("file", file), zap.Int("bytes", len(raw)))
		return nil
	case "import":
		var raw []byte
		if file == "" {
			raw, err = io.ReadAll(stdin)
		} else {
			raw, err = os.ReadFile(file)
		}
		if err != nil {
			return fmt.Errorf("read backup: %w", err)
		}
		if _, err := service.ImportWorkspace(ctx, ws, raw); err != nil {
			return err
		}
		logr.Info("workspace restored", zap.String("teacher", session.Email))
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
