package report

import (
	"fmt"
	"time"

	"github.com/VectorBits/clearsign/src/internal/checker"
)

type Reporter struct {
	generator Generator
	storage   Storage
}

func NewReporter(generator Generator, storage Storage) *Reporter {
	return &Reporter{
		generator: generator,
		storage:   storage,
	}
}

func (r *Reporter) GenerateAndSave(report *Report) (string, error) {
	content, err := r.generator.Generate(report)
	if err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}

	path, err := r.storage.Save(report, content)
	if err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	return path, nil
}

// Report aggregates the checker results of one run.
type Report struct {
	Label       string
	Strict      bool
	CheckTime   time.Time
	TotalFiles  int
	FailedFiles int
	Results     []FileResult
}

type FileResult struct {
	Path        string
	Verdict     string
	Errors      []string
	Warnings    []string
	Suggestions []string
}

func NewReport(label string, strict bool) *Report {
	return &Report{
		Label:     label,
		Strict:    strict,
		CheckTime: time.Now(),
		Results:   make([]FileResult, 0),
	}
}

func (r *Report) AddCheckResult(res *checker.Report) {
	r.Results = append(r.Results, FileResult{
		Path:        res.Path,
		Verdict:     res.Verdict(r.Strict),
		Errors:      res.Errors,
		Warnings:    res.Warnings,
		Suggestions: res.Suggestions,
	})
	r.TotalFiles++
	if !res.Passed() {
		r.FailedFiles++
	}
}
