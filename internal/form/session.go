package form

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"mccwk.com/arcard/internal/upload"
)

// Session drives one form through the upload workflow. Retrieval of a new
// upload runs in the background and is never awaited by Submit.
type Session struct {
	state    *State
	workflow *upload.Workflow
	fetcher  *upload.ContentFetcher
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSession(state *State, workflow *upload.Workflow, fetcher *upload.ContentFetcher, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		state:    state,
		workflow: workflow,
		fetcher:  fetcher,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Session) State() *State {
	return s.state
}

// RefreshBalance reads the wallet balance into the form.
func (s *Session) RefreshBalance(ctx context.Context) {
	s.state.SetBalance(s.workflow.RefreshBalance(ctx))
}

// Submit uploads the current metadata. It fails with ErrSubmitInFlight when
// another submit has not finished yet.
func (s *Session) Submit(ctx context.Context) (upload.Result, error) {
	attempt, meta, err := s.state.BeginSubmit()
	if err != nil {
		return upload.Result{}, err
	}

	result := s.workflow.Submit(ctx, meta)
	if id, ok := s.state.FinishSubmit(attempt, result); ok {
		s.wg.Add(1)
		go s.retrieve(id)
	}
	return result, nil
}

func (s *Session) retrieve(id string) {
	defer s.wg.Done()

	content, err := s.fetcher.Fetch(s.ctx, id)
	if err != nil {
		if !errors.Is(err, upload.ErrAlreadyFetched) {
			s.logger.Debug("retrieval skipped", "id", id, "error", err)
		}
		return
	}
	if !s.state.SetRetrieved(id, content) {
		s.logger.Debug("discarding stale retrieval", "id", id)
	}
}

// Wait blocks until background retrievals have finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels background work and detaches the form.
func (s *Session) Close() {
	s.cancel()
	s.state.Close()
	s.wg.Wait()
}
