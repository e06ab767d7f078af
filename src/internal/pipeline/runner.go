// Package pipeline runs descriptor generation and checking over many inputs
// with bounded concurrency.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/VectorBits/clearsign/src/internal/cleaner"
	"github.com/VectorBits/clearsign/src/internal/descriptor"
	"github.com/VectorBits/clearsign/src/internal/display"
	"github.com/VectorBits/clearsign/src/internal/logger"
	"github.com/VectorBits/clearsign/src/internal/registry"
	"github.com/VectorBits/clearsign/src/internal/report"
	"github.com/VectorBits/clearsign/src/internal/solidity"
)

var ErrOutputWithMultipleInputs = errors.New("--output can only be used with a single input")

// Recorder persists generated descriptors. *registry.Store implements it.
type Recorder interface {
	Save(ctx context.Context, rec *registry.Record) error
}

type Options struct {
	Descriptor     descriptor.Options
	OutputDir      string
	Output         string
	StripLibraries bool
	Concurrency    int
}

// Result is the outcome for one input. Err is set when the input produced
// no descriptor.
type Result struct {
	Input      string
	SourcePath string
	Contract   *solidity.Contract
	Build      *descriptor.Result
	OutputPath string
	Stripped   int
	Err        error
}

type Runner struct {
	opts     Options
	recorder Recorder

	// OnResult, when set, is called once per finished input. Calls may come
	// from several goroutines.
	OnResult func(Result)

	mu      sync.Mutex
	claimed map[string]string
}

func NewRunner(opts Options, recorder Recorder) *Runner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	return &Runner{opts: opts, recorder: recorder, claimed: map[string]string{}}
}

// Run generates a descriptor for every input. Per-input failures are
// reported in the results, which keep input order; the returned error is
// only set for invalid options or cancellation.
func (r *Runner) Run(ctx context.Context, inputs []string) ([]Result, error) {
	if r.opts.Output != "" && len(inputs) > 1 {
		return nil, ErrOutputWithMultipleInputs
	}

	results := make([]Result, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Input: input, Err: err}
				return err
			}
			res := r.Generate(gctx, input)
			results[i] = res
			if r.OnResult != nil {
				r.OnResult(res)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// Generate produces and writes the descriptor for a single input file.
func (r *Runner) Generate(ctx context.Context, input string) Result {
	res := Result{Input: input, SourcePath: input}

	data, err := os.ReadFile(input)
	if err != nil {
		res.Err = fmt.Errorf("failed to read %s: %w", input, err)
		return res
	}
	source := string(data)

	if solidity.IsBundle(source) {
		hint := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		mainPath, content, err := solidity.ExtractBundle(source, hint)
		if err != nil {
			res.Err = fmt.Errorf("%s: %w", input, err)
			return res
		}
		logger.Debug("%s: using bundle source %s", input, mainPath)
		res.SourcePath = input + "#" + mainPath
		source = content
	}

	if r.opts.StripLibraries {
		source, res.Stripped = cleaner.CleanCode(source)
		if res.Stripped > 0 {
			logger.Debug("%s: commented out %d library section(s)", input, res.Stripped)
		}
	}

	scanner := solidity.NewScanner(source)
	contract, err := scanner.Scan()
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", input, err)
		return res
	}
	res.Contract = contract
	if scanner.Dropped > 0 {
		logger.Debug("%s: skipped %d function candidate(s)", input, scanner.Dropped)
	}
	if contract.Pragma != "" {
		logger.Debug("%s: pragma solidity %s", input, contract.Pragma)
	}

	opts := r.opts.Descriptor
	if opts.Address != "" && !common.IsHexAddress(opts.Address) {
		logger.Warn("%s: deployment address %q is not a valid hex address", input, opts.Address)
	}

	for _, fn := range contract.Functions {
		for _, p := range fn.Params {
			rule := display.Explain(p.Type, p.Name)
			logger.Debug("%s: %s.%s (%s) -> %s via rule %s", input, fn.Name, p.Name, p.Type, rule.Format, rule.Name)
		}
	}

	built := descriptor.Build(contract, opts)
	res.Build = built
	for _, c := range built.Collisions {
		logger.Warn("%s: signature %s declared at lines %d and %d; keeping line %d",
			input, c.Signature, c.FirstLine, c.SecondLine, c.SecondLine)
	}

	doc, err := descriptor.Marshal(built.Descriptor)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", input, err)
		return res
	}

	outPath := r.opts.Output
	if outPath == "" {
		outPath = filepath.Join(r.opts.OutputDir, descriptor.DefaultFileName(contract.Name))
	}
	if err := r.claim(outPath, input); err != nil {
		res.Err = err
		return res
	}
	if err := report.WriteFileAtomic(outPath, doc); err != nil {
		res.Err = fmt.Errorf("failed to write descriptor for %s: %w", input, err)
		return res
	}
	res.OutputPath = outPath
	logger.InfoFileOnly("generated %s from %s (%d function(s))", outPath, res.SourcePath, len(built.Functions))

	r.record(ctx, res, doc)
	return res
}

// claim reserves outPath for input so two inputs declaring the same contract
// do not overwrite each other within one run.
func (r *Runner) claim(outPath, input string) error {
	key := filepath.Clean(outPath)
	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, ok := r.claimed[key]; ok && owner != input {
		return fmt.Errorf("%s: output %s already written for %s", input, outPath, owner)
	}
	r.claimed[key] = input
	return nil
}

func (r *Runner) record(ctx context.Context, res Result, doc []byte) {
	if r.recorder == nil {
		return
	}
	rec := registry.NewRecord(res.SourcePath, res.Contract.Pragma, res.Build, doc)
	if err := r.recorder.Save(ctx, &rec); err != nil {
		logger.Logger().Warn("registry save failed",
			zap.String("input", res.Input),
			zap.String("contract", rec.Contract),
			zap.Error(err))
		return
	}
	logger.Logger().Debug("registry record saved",
		zap.String("id", rec.ID),
		zap.String("contract", rec.Contract),
		zap.Int("functions", rec.FunctionCount))
}
