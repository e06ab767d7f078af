package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenSol = `pragma solidity ^0.8.0;
contract Token {
    function transfer(address to, uint256 amount) external returns (bool) {}
    function balanceOf(address owner) external view returns (uint256) {}
}`

var example = []byte("generator:\n  chain_id: 1\n")

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Execute(context.Background(), example, args, &out)
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGenerateThenCheck(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "Token.sol", tokenSol)
	dsn := filepath.Join(dir, "registry.db")

	out, err := run(t, "generate", src,
		"--output-dir", dir,
		"--address", "0x1111111111111111111111111111111111111111",
		"--chain-id", "10",
		"--registry-dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "0xa9059cbb")
	assert.NotContains(t, out, "balanceOf")

	descPath := filepath.Join(dir, "calldata-token.json")
	data, err := os.ReadFile(descPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"chainId": 10`)

	reports := filepath.Join(dir, "reports")
	out, err = run(t, "check", descPath, "--strict", "--report-dir", reports)
	require.NoError(t, err)
	assert.Contains(t, out, "Validating: "+descPath)
	assert.Contains(t, out, "SUGGESTIONS")

	entries, err := os.ReadDir(reports)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	out, err = run(t, "history", "--registry-dsn", dsn, "--contract", "Token")
	require.NoError(t, err)
	assert.Contains(t, out, "Token")
	assert.Contains(t, out, src)

	out, err = run(t, "history", "--registry-dsn", dsn, "--signatures")
	require.NoError(t, err)
	assert.Contains(t, out, "transfer(address,uint256)=0xa9059cbb")
}

func TestGenerate_AddressWarning(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "Token.sol", tokenSol)

	out, err := run(t, "generate", src, "--output-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No deployment address specified. Add --address for production use.")

	out, err = run(t, "generate", src, "--output-dir", dir,
		"--address", "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.NotContains(t, out, "No deployment address specified")
}

func TestGenerate_RejectsNonPositiveChainID(t *testing.T) {
	for _, id := range []string{"0", "-5"} {
		t.Run(id, func(t *testing.T) {
			dir := t.TempDir()
			src := writeFile(t, dir, "Token.sol", tokenSol)

			_, err := run(t, "generate", src, "--output-dir", dir, "--chain-id="+id)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "generator.chain_id must be positive")

			matches, _ := filepath.Glob(filepath.Join(dir, "*.json"))
			assert.Empty(t, matches)
		})
	}
}

func TestGenerate_StructuralErrorExitsOne(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "Lib.sol", "library Math {}")

	_, err := run(t, "generate", src, "--output-dir", dir)
	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.Code)

	matches, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	assert.Empty(t, matches)
}

func TestGenerate_OutputWithSeveralInputs(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "A.sol", tokenSol)
	b := writeFile(t, dir, "B.sol", "contract B { function f(uint256 x) external {} }")

	_, err := run(t, "generate", a, b, "-o", filepath.Join(dir, "x.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output")
}

func TestCheck_FailingDescriptor(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.json", `{"context": {}}`)

	out, err := run(t, "check", bad, filepath.Join(dir, "missing.json"))
	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	assert.Contains(t, out, "Validation failed")
	assert.Contains(t, out, "File not found")
}

func TestHistory_RequiresRegistry(t *testing.T) {
	_, err := run(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no registry configured")
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "settings.yaml")

	_, err := run(t, "init", "--path", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, example, data)

	require.NoError(t, os.WriteFile(path, []byte("custom"), 0o644))
	_, err = run(t, "init", "--path", path)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", string(data))
}

func TestInvalidConfigFile(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "settings.yaml", "registry:\n  driver: oracle\n")
	_, err := run(t, "--config", cfg, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported registry driver")
}
