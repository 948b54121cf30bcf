package pipeline

import (
	"context"
	"fmt"

	"github.com/finsight-dev/finsight/internal/domain"
)

// PipelineStep represents a single step in the ingestion pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	GCSURI  string
	RunID   string
	RawText string
	Options Options
	Bundle  *domain.ResultBundle
}

// StartRunStep records a new analysis run (status=RUNNING) for the source.
type StartRunStep struct {
	Repo RunRepository
}

func (s *StartRunStep) Execute(ctx context.Context, state *PipelineState) error {
	runID, err := s.Repo.StartRun(ctx, state.GCSURI)
	if err != nil {
		return err
	}
	state.RunID = runID
	return nil
}

// FetchTextStep downloads the raw statement text from its source URI.
type FetchTextStep struct {
	Fetcher TextFetcher
	Repo    RunRepository
}

func (s *FetchTextStep) Execute(ctx context.Context, state *PipelineState) error {
	rawText, err := s.Fetcher.FetchText(ctx, state.GCSURI)
	if err != nil {
		s.Repo.FinishRun(ctx, state.RunID, nil, err)
		return err
	}
	state.RawText = rawText
	return nil
}

// AnalyzeStep runs the in-process analysis pipeline over the fetched text.
type AnalyzeStep struct{}

func (s *AnalyzeStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Bundle = Analyze(ctx, state.RawText, state.Options)
	return nil
}

// StoreTransactionsStep inserts the validated transactions for the run.
type StoreTransactionsStep struct {
	Repo RunRepository
}

func (s *StoreTransactionsStep) Execute(ctx context.Context, state *PipelineState) error {
	if err := s.Repo.InsertTransactions(ctx, state.RunID, state.Bundle.Transactions); err != nil {
		s.Repo.FinishRun(ctx, state.RunID, nil, err)
		return err
	}
	return nil
}

// FinishRunStep marks the run as SUCCEEDED and stores the result summary.
type FinishRunStep struct {
	Repo RunRepository
}

func (s *FinishRunStep) Execute(ctx context.Context, state *PipelineState) error {
	return s.Repo.FinishRun(ctx, state.RunID, state.Bundle, nil)
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewIngestionPipeline creates the standard pipeline for ingesting a
// statement from GCS and persisting the analysis.
func NewIngestionPipeline(fetcher TextFetcher, repo RunRepository) *Pipeline {
	return NewPipeline(
		&StartRunStep{Repo: repo},
		&FetchTextStep{Fetcher: fetcher, Repo: repo},
		&AnalyzeStep{},
		&StoreTransactionsStep{Repo: repo},
		&FinishRunStep{Repo: repo},
	)
}
