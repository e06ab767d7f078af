package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/VectorBits/clearsign/src/internal/config"
	"github.com/VectorBits/clearsign/src/internal/descriptor"
	"github.com/VectorBits/clearsign/src/internal/logger"
	"github.com/VectorBits/clearsign/src/internal/pipeline"
	"github.com/VectorBits/clearsign/src/internal/registry"
	"github.com/VectorBits/clearsign/src/internal/ui"
)

type generateFlags struct {
	address        string
	chainID        int64
	output         string
	outputDir      string
	owner          string
	contractID     string
	url            string
	stripLibraries bool
	include        string
	concurrency    int
	registryDriver string
	registryDSN    string
}

func (c *cli) newGenerateCommand() *cobra.Command {
	f := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate <file.sol|bundle.json|list.txt|dir>...",
		Short: "Generate ERC-7730 descriptors from Solidity sources",
		Long: `Scans each input for its first contract and writes a calldata descriptor
covering every public or external state-changing function.

Inputs may be Solidity files, standard-JSON bundles, target lists
(.txt/.yaml) or directories, which are searched with --include.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.merge(cmd, c.cfg)
			return c.runGenerate(cmd, f, args)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.address, "address", "", "deployment address (adds a context deployment)")
	fl.Int64Var(&f.chainID, "chain-id", descriptor.DefaultChainID, "deployment chain id")
	fl.StringVarP(&f.output, "output", "o", "", "output file (single input only)")
	fl.StringVar(&f.outputDir, "output-dir", ".", "directory for calldata-<contract>.json files")
	fl.StringVar(&f.owner, "owner", "", "metadata owner (default: contract name)")
	fl.StringVar(&f.contractID, "contract-id", "", "context $id (default: contract name)")
	fl.StringVar(&f.url, "url", "", "metadata info url")
	fl.BoolVar(&f.stripLibraries, "strip-libraries", false, "comment out library sections of flattened sources")
	fl.StringVar(&f.include, "include", "**.sol", "glob for files found in directories")
	fl.IntVar(&f.concurrency, "concurrency", 4, "files processed in parallel")
	fl.StringVar(&f.registryDriver, "registry-driver", "sqlite", "registry driver: sqlite, postgres or mysql")
	fl.StringVar(&f.registryDSN, "registry-dsn", "", "record descriptors in this registry database")
	return cmd
}

// merge fills unset flags from the settings so that explicit flags win.
func (f *generateFlags) merge(cmd *cobra.Command, cfg *config.AppConfig) {
	changed := cmd.Flags().Changed
	if !changed("chain-id") {
		f.chainID = cfg.Generator.ChainID
	}
	if !changed("owner") {
		f.owner = cfg.Generator.Owner
	}
	if !changed("url") {
		f.url = cfg.Generator.URL
	}
	if !changed("output-dir") {
		f.outputDir = cfg.Generator.OutputDir
	}
	if !changed("strip-libraries") {
		f.stripLibraries = cfg.Generator.StripLibraries
	}
	if !changed("include") {
		f.include = cfg.Batch.Include
	}
	if !changed("concurrency") {
		f.concurrency = cfg.Batch.Concurrency
	}
	if !changed("registry-driver") {
		f.registryDriver = cfg.Registry.Driver
	}
	if !changed("registry-dsn") {
		f.registryDSN = cfg.Registry.DSN
	}
}

func (c *cli) runGenerate(cmd *cobra.Command, f *generateFlags, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	start := time.Now()

	if err := config.ValidateChainID(f.chainID); err != nil {
		return err
	}
	if f.address == "" {
		ui.FprintWarn(out, "No deployment address specified. Add --address for production use.")
	}

	inputs, err := pipeline.ExpandInputs(args, f.include)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no Solidity sources matched %q", f.include)
	}
	if f.output != "" && len(inputs) > 1 {
		return pipeline.ErrOutputWithMultipleInputs
	}

	var recorder pipeline.Recorder
	if f.registryDSN != "" {
		store, err := registry.Open(f.registryDriver, f.registryDSN)
		if err != nil {
			logger.Warn("registry disabled: %v", err)
		} else {
			defer store.Close()
			recorder = store
		}
	}

	runner := pipeline.NewRunner(pipeline.Options{
		Descriptor: descriptor.Options{
			ChainID:    f.chainID,
			Address:    f.address,
			Owner:      f.owner,
			ContractID: f.contractID,
			URL:        f.url,
		},
		OutputDir:      f.outputDir,
		Output:         f.output,
		StripLibraries: f.stripLibraries,
		Concurrency:    f.concurrency,
	}, recorder)

	var bar *ui.ProgressBar
	if len(inputs) > 1 {
		bar = ui.NewProgressBar(cmd.ErrOrStderr(), len(inputs), "Generating")
		runner.OnResult = func(res pipeline.Result) {
			if res.Err != nil && !errors.Is(res.Err, context.Canceled) {
				bar.PrintMsg(ui.Red + "[ERROR] " + ui.Reset + res.Err.Error())
			}
			bar.Increment(res.Err != nil)
		}
	}

	results, runErr := runner.Run(ctx, inputs)
	if bar != nil {
		bar.Finish()
	}

	var failed, functions int
	for _, res := range results {
		if res.Err != nil {
			failed++
			if bar == nil && !errors.Is(res.Err, context.Canceled) {
				ui.LogError("%v", res.Err)
			}
			continue
		}
		rows := make([]ui.FunctionRow, 0, len(res.Build.Functions))
		for _, fn := range res.Build.Functions {
			rows = append(rows, ui.FunctionRow{Selector: fn.Selector, Signature: fn.Signature, Intent: fn.Intent})
		}
		functions += len(rows)
		ui.LogSuccess("%s: %s -> %s (%d function(s))", res.Input, res.Contract.Name, res.OutputPath, len(rows))
		ui.PrintFunctions(out, rows)
	}
	if runErr != nil {
		return runErr
	}

	if len(inputs) > 1 {
		ui.PrintStats(len(inputs), len(inputs)-failed, failed, functions, time.Since(start))
	}
	if failed > 0 {
		return errFailed
	}
	return nil
}
