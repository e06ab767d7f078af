// Package checker validates ERC-7730 descriptors for structural completeness
// and common best-practice gaps.
package checker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrFileNotFound = errors.New("descriptor file not found")
	ErrInvalidJSON  = errors.New("invalid descriptor JSON")
)

// ChainReader is the subset of ethclient.Client used for on-chain checks.
type ChainReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

type Checker struct {
	chain ChainReader
}

type Option func(*Checker)

// WithChain enables deployment checks against a live node.
func WithChain(chain ChainReader) Option {
	return func(c *Checker) {
		c.chain = chain
	}
}

func New(opts ...Option) *Checker {
	c := &Checker{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckFile loads and checks the descriptor at path. A missing file or
// malformed JSON is returned as an error alongside a report that records it.
func (c *Checker) CheckFile(ctx context.Context, path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		report := &Report{Path: path}
		if errors.Is(err, fs.ErrNotExist) {
			report.add(SeverityError, fmt.Sprintf("File not found: %s", path))
			return report, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		report.add(SeverityError, fmt.Sprintf("Cannot read file: %v", err))
		return report, fmt.Errorf("read %s: %w", path, err)
	}
	return c.CheckBytes(ctx, path, data)
}

// CheckBytes checks an in-memory descriptor.
func (c *Checker) CheckBytes(ctx context.Context, path string, data []byte) (*Report, error) {
	doc, err := decode(data)
	if err != nil {
		report := &Report{Path: path}
		report.add(SeverityError, fmt.Sprintf("Invalid JSON: %v", err))
		return report, fmt.Errorf("%w: %s: %v", ErrInvalidJSON, path, err)
	}
	report := c.Check(ctx, doc)
	report.Path = path
	return report, nil
}

// Check runs every rule against a decoded descriptor.
func (c *Checker) Check(ctx context.Context, doc map[string]interface{}) *Report {
	report := &Report{}
	d := &document{root: doc}
	for _, r := range rules {
		r.run(d, report)
	}
	if c.chain != nil {
		c.checkChain(ctx, d, report)
	}
	return report
}

func decode(data []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after document")
	}
	doc, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.New("document root must be an object")
	}
	return doc, nil
}
