// Package cmd implements the clearsign command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/VectorBits/clearsign/src/internal/config"
	"github.com/VectorBits/clearsign/src/internal/logger"
	"github.com/VectorBits/clearsign/src/internal/ui"
)

const Version = "v0.3.0"

// ExitError ends the process with Code without printing anything further.
// Commands return it once their own output already explains the failure.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

var errFailed = &ExitError{Code: 1}

// cli holds the state shared by all subcommands of one invocation.
type cli struct {
	example []byte

	configPath string
	verbose    bool
	logDir     string

	cfg *config.AppConfig
}

// NewRootCommand builds the command tree. example is the embedded
// settings.example.yaml written by "clearsign init".
func NewRootCommand(example []byte) *cobra.Command {
	c := &cli{example: example}

	root := &cobra.Command{
		Use:           "clearsign",
		Short:         "Generate and check ERC-7730 clear-signing descriptors",
		Long:          "clearsign derives ERC-7730 calldata descriptors from Solidity sources and validates existing descriptors.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "init" {
				return nil
			}
			return c.setup()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "settings file (default: config/settings.yaml, settings.yaml, ~/.clearsign/settings.yaml)")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&c.logDir, "log-dir", "", "write JSON log files to this directory")

	root.AddCommand(
		c.newGenerateCommand(),
		c.newCheckCommand(),
		c.newHistoryCommand(),
		c.newInitCommand(),
	)
	return root
}

// setup loads settings with priority flags > env > file > defaults and
// starts logging.
func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.verbose {
		cfg.Log.Level = "debug"
	}
	if c.logDir != "" {
		cfg.Log.Dir = c.logDir
	}
	if err := logger.InitLogger(cfg.Log.Dir, cfg.Log.Level); err != nil {
		return err
	}
	if path := c.configPath; path != "" {
		logger.Debug("loaded settings from %s", path)
	} else if path := config.GetConfigPath(); path != "" {
		logger.Debug("loaded settings from %s", path)
	}
	if path := logger.LogFilePath(); path != "" {
		ui.LogInfo("Logging to %s", path)
	}
	c.cfg = cfg
	return nil
}

// Execute runs the command line with args and ctx.
func Execute(ctx context.Context, example []byte, args []string, out io.Writer) error {
	root := NewRootCommand(example)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)
	defer logger.Close()
	return root.ExecuteContext(ctx)
}

// Run executes os.Args. The first SIGINT or SIGTERM cancels the running
// command; a second one exits immediately with status 130.
func Run(example []byte) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(sigChan)
		close(sigChan)
	}()

	go func() {
		count := 0
		for range sigChan {
			count++
			if count == 1 {
				fmt.Fprintln(os.Stderr, "\nInterrupt received, stopping... (press Ctrl+C again to force exit)")
				cancel()
				continue
			}
			fmt.Fprintln(os.Stderr, "\nForce exiting...")
			os.Exit(130)
		}
	}()

	if len(os.Args) == 1 {
		ui.PrintBanner(Version)
	}
	return Execute(ctx, example, os.Args[1:], os.Stdout)
}

// PrintFatal reports err and exits non-zero. Cancellation is silent.
func PrintFatal(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}

	var exit *ExitError
	if errors.As(err, &exit) {
		os.Exit(exit.Code)
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
