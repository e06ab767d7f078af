package cmd

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/VectorBits/clearsign/src/internal/chain"
	"github.com/VectorBits/clearsign/src/internal/checker"
	"github.com/VectorBits/clearsign/src/internal/config"
	"github.com/VectorBits/clearsign/src/internal/logger"
	"github.com/VectorBits/clearsign/src/internal/pipeline"
	"github.com/VectorBits/clearsign/src/internal/report"
	"github.com/VectorBits/clearsign/src/internal/ui"
)

type checkFlags struct {
	strict      bool
	rpcURL      string
	rpcTimeout  time.Duration
	proxy       string
	reportDir   string
	concurrency int
}

func (c *cli) newCheckCommand() *cobra.Command {
	f := &checkFlags{}
	cmd := &cobra.Command{
		Use:   "check <descriptor.json>...",
		Short: "Validate ERC-7730 descriptors",
		Long: `Checks each descriptor for structural errors, warnings and, with --strict,
suggestions. Exits non-zero when any file has errors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.merge(cmd, c.cfg)
			return c.runCheck(cmd, f, args)
		},
	}

	fl := cmd.Flags()
	fl.BoolVar(&f.strict, "strict", false, "also print suggestions")
	fl.StringVar(&f.rpcURL, "rpc-url", "", "check deployments against these JSON-RPC endpoints (comma separated)")
	fl.DurationVar(&f.rpcTimeout, "rpc-timeout", 15*time.Second, "JSON-RPC request timeout")
	fl.StringVar(&f.proxy, "proxy", "", "HTTP/SOCKS5 proxy for --rpc-url")
	fl.StringVar(&f.reportDir, "report-dir", "", "write a Markdown report to this directory")
	fl.IntVar(&f.concurrency, "concurrency", 4, "files checked in parallel")
	return cmd
}

func (f *checkFlags) merge(cmd *cobra.Command, cfg *config.AppConfig) {
	changed := cmd.Flags().Changed
	if !changed("strict") {
		f.strict = cfg.Checker.Strict
	}
	if !changed("rpc-url") {
		f.rpcURL = cfg.Checker.RPCURL
	}
	if !changed("rpc-timeout") {
		f.rpcTimeout = cfg.Checker.RPCTimeout
	}
	if !changed("proxy") {
		f.proxy = cfg.Checker.Proxy
	}
	if !changed("report-dir") {
		f.reportDir = cfg.Checker.ReportDir
	}
	if !changed("concurrency") {
		f.concurrency = cfg.Batch.Concurrency
	}
}

func (c *cli) runCheck(cmd *cobra.Command, f *checkFlags, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var opts []checker.Option
	if f.rpcURL != "" {
		manager, err := chain.Dial(ctx, f.rpcURL, f.proxy, f.rpcTimeout)
		if err != nil {
			ui.LogWarn("RPC checks disabled: %v", err)
		} else {
			defer manager.Close()
			logger.Debug("RPC checks via %s", manager.CurrentURL())
			opts = append(opts, checker.WithChain(manager))
		}
	}

	results, err := pipeline.CheckAll(ctx, checker.New(opts...), args, f.concurrency)
	if err != nil && ctx.Err() != nil {
		return err
	}

	agg := report.NewReport(reportLabel(args), f.strict)
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			logger.Debug("check %s: %v", res.Path, res.Err)
		}
		if res.Report == nil {
			failed++
			continue
		}
		ui.PrintCheckReport(out, res.Report, f.strict)
		agg.AddCheckResult(res.Report)
		if !res.Report.Passed() {
			failed++
		}
	}

	if f.reportDir != "" {
		reporter := report.NewReporter(report.NewMarkdownGenerator(), report.NewFileStorage(f.reportDir))
		path, err := reporter.GenerateAndSave(agg)
		if err != nil {
			ui.LogError("%v", err)
		} else {
			ui.LogInfo("Report saved to %s", path)
		}
	}

	if failed > 0 {
		return errFailed
	}
	return nil
}

func reportLabel(paths []string) string {
	if len(paths) == 1 {
		return strings.TrimSuffix(filepath.Base(paths[0]), filepath.Ext(paths[0]))
	}
	return "batch"
}
