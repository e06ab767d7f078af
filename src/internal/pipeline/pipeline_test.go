package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/VectorBits/clearsign/src/internal/checker"
	"github.com/VectorBits/clearsign/src/internal/descriptor"
	"github.com/VectorBits/clearsign/src/internal/registry"
	"github.com/VectorBits/clearsign/src/internal/solidity"
)

// Test Plan for pipeline:
// - Directories, list files and plain files expand to a deduplicated file list
// - Batch generation writes one descriptor per contract and keeps input order
// - A structural failure in one input does not stop the others
// - --output is rejected with several inputs
// - Bundles and library stripping feed the scanner the project's contract
// - Registry failures never fail generation
// - No goroutines outlive a run

const tokenSol = `pragma solidity ^0.8.0;
contract Token {
    /** @notice Move tokens. */
    function transfer(address to, uint256 amount) external returns (bool) {}
}`

const vaultSol = `contract Vault {
    function deposit(uint256 amount) public {}
    function withdraw(uint256 amount) public {}
}`

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type memRecorder struct {
	mu      sync.Mutex
	records []registry.Record
	err     error
}

func (m *memRecorder) Save(_ context.Context, rec *registry.Record) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *rec)
	return nil
}

func TestReadLines(t *testing.T) {
	dir := t.TempDir()
	txt := write(t, dir, "targets.txt", "# contracts\nA.sol\n\n// skipped\nB.sol, extra\nA.sol\n")
	lines, err := ReadLines(txt)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.sol", "B.sol"}, lines)

	yml := write(t, dir, "targets.yaml", "sources:\n  - C.sol\n  - D.sol\n")
	lines, err = ReadLines(yml)
	require.NoError(t, err)
	assert.Equal(t, []string{"C.sol", "D.sol"}, lines)

	seq := write(t, dir, "seq.yml", "- E.sol\n")
	lines, err = ReadLines(seq)
	require.NoError(t, err)
	assert.Equal(t, []string{"E.sol"}, lines)

	bad := write(t, dir, "bad.yaml", "other: 1\n")
	_, err = ReadLines(bad)
	assert.Error(t, err)
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	a := write(t, dir, "src/A.sol", tokenSol)
	b := write(t, dir, "src/nested/B.sol", vaultSol)
	write(t, dir, "src/notes.md", "ignored")
	write(t, dir, "src/node_modules/lib/L.sol", vaultSol)
	write(t, dir, "src/.cache/C.sol", vaultSol)
	list := write(t, dir, "list.txt", "src/A.sol\nsrc/nested/B.sol\n")

	files, err := ExpandInputs([]string{filepath.Join(dir, "src"), list, a}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)

	files, err = ExpandInputs([]string{filepath.Join(dir, "src")}, "nested/*.sol")
	require.NoError(t, err)
	assert.Equal(t, []string{b}, files)

	_, err = ExpandInputs([]string{filepath.Join(dir, "missing.sol")}, "")
	assert.Error(t, err)

	_, err = ExpandInputs([]string{a}, "[")
	assert.Error(t, err)
}

func TestRunner_Batch(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	inputs := []string{
		write(t, dir, "Token.sol", tokenSol),
		write(t, dir, "Broken.sol", "library Math {}"),
		write(t, dir, "Vault.sol", vaultSol),
	}

	rec := &memRecorder{}
	runner := NewRunner(Options{OutputDir: out, Concurrency: 2}, rec)
	var seen int32
	runner.OnResult = func(Result) { atomic.AddInt32(&seen, 1) }

	results, err := runner.Run(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&seen))

	assert.NoError(t, results[0].Err)
	assert.Equal(t, filepath.Join(out, "calldata-token.json"), results[0].OutputPath)
	assert.ErrorIs(t, results[1].Err, solidity.ErrNoContractFound)
	assert.Empty(t, results[1].OutputPath)
	assert.NoError(t, results[2].Err)
	assert.Len(t, results[2].Build.Functions, 2)

	_, err = os.Stat(filepath.Join(out, "calldata-vault.json"))
	assert.NoError(t, err)
	assert.Len(t, rec.records, 2)

	// generated files pass the checker
	checked, err := CheckAll(context.Background(), checker.New(), []string{results[0].OutputPath, results[2].OutputPath}, 2)
	require.NoError(t, err)
	for _, c := range checked {
		require.NoError(t, c.Err)
		assert.Empty(t, c.Report.Errors, c.Path)
	}
}

func TestRunner_OutputWithMultipleInputs(t *testing.T) {
	runner := NewRunner(Options{Output: "x.json"}, nil)
	_, err := runner.Run(context.Background(), []string{"a.sol", "b.sol"})
	assert.ErrorIs(t, err, ErrOutputWithMultipleInputs)
}

func TestRunner_ExplicitOutputAndOptions(t *testing.T) {
	dir := t.TempDir()
	in := write(t, dir, "Token.sol", tokenSol)
	out := filepath.Join(dir, "custom.json")

	runner := NewRunner(Options{
		Output: out,
		Descriptor: descriptor.Options{
			ChainID: 137,
			Address: "0x1111111111111111111111111111111111111111",
		},
	}, nil)
	res := runner.Generate(context.Background(), in)
	require.NoError(t, res.Err)
	assert.Equal(t, out, res.OutputPath)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"chainId": 137`)
	assert.Contains(t, string(data), `"intent": "Move tokens"`)
}

func TestRunner_DuplicateContractOutput(t *testing.T) {
	dir := t.TempDir()
	a := write(t, dir, "a/Token.sol", tokenSol)
	b := write(t, dir, "b/Token.sol", tokenSol)

	runner := NewRunner(Options{OutputDir: dir, Concurrency: 1}, nil)
	results, err := runner.Run(context.Background(), []string{a, b})
	require.NoError(t, err)
	assert.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
	assert.Contains(t, results[1].Err.Error(), "already written")
}

func TestRunner_BundleAndStrip(t *testing.T) {
	dir := t.TempDir()
	bundle := `{"language":"Solidity","sources":{
		"contracts/Vault.sol":{"content":"contract Vault { function deposit(uint256 amount) external {} }"},
		"@openzeppelin/contracts/token/ERC20/ERC20.sol":{"content":"contract ERC20 { function transfer(address to, uint256 amount) external {} }"}
	}}`
	in := write(t, dir, "Vault.json", bundle)

	runner := NewRunner(Options{OutputDir: dir}, nil)
	res := runner.Generate(context.Background(), in)
	require.NoError(t, res.Err)
	assert.Equal(t, "Vault", res.Contract.Name)
	assert.Equal(t, in+"#contracts/Vault.sol", res.SourcePath)

	flattened := "// File: @openzeppelin/contracts/token/ERC20/ERC20.sol\n" +
		"contract ERC20 { function transfer(address to, uint256 amount) external {} }\n" +
		"// File: contracts/Pool.sol\n" +
		"contract Pool { function swap(uint256 amountIn) external {} }\n"
	flat := write(t, dir, "flat.sol", flattened)

	stripping := NewRunner(Options{OutputDir: dir, StripLibraries: true}, nil)
	res = stripping.Generate(context.Background(), flat)
	require.NoError(t, res.Err)
	assert.Equal(t, "Pool", res.Contract.Name)
	assert.Equal(t, 1, res.Stripped)
}

func TestRunner_RegistryFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	in := write(t, dir, "Token.sol", tokenSol)

	runner := NewRunner(Options{OutputDir: dir}, &memRecorder{err: errors.New("db down")})
	res := runner.Generate(context.Background(), in)
	assert.NoError(t, res.Err)
	assert.NotEmpty(t, res.OutputPath)
}

func TestRunner_Cancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	in := write(t, dir, "Token.sol", tokenSol)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := NewRunner(Options{OutputDir: dir}, nil).Run(ctx, []string{in})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestCheckAll_MissingFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	results, err := CheckAll(context.Background(), checker.New(), []string{"does-not-exist.json"}, 4)
	require.NoError(t, err)
	assert.ErrorIs(t, results[0].Err, checker.ErrFileNotFound)
	assert.False(t, results[0].Report.Passed())
}
