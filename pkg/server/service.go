package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mikeboe/research-agent/pkg/agent"
	"github.com/mikeboe/research-agent/pkg/clients"
	"github.com/mikeboe/research-agent/pkg/config"
)

// EngineFactory builds a research engine for one run. The default factory
// wires the real Gemini clients; tests substitute scripted ones.
type EngineFactory func(ctx context.Context, cfg agent.Config, logger *slog.Logger) (*agent.Engine, error)

type Service struct {
	Cfg       *config.Config
	NewEngine EngineFactory

	mu    sync.RWMutex
	jobs  map[uuid.UUID]*Job
	order []uuid.UUID
}

func NewService(cfg *config.Config) *Service {
	s := &Service{
		Cfg:  cfg,
		jobs: make(map[uuid.UUID]*Job),
	}
	s.NewEngine = func(ctx context.Context, runCfg agent.Config, logger *slog.Logger) (*agent.Engine, error) {
		llm, err := clients.GoogleAI(ctx, cfg.GeminiApiKey, runCfg.QueryGeneratorModel)
		if err != nil {
			return nil, err
		}
		search, err := clients.NewGroundedClient(ctx, cfg.GeminiApiKey)
		if err != nil {
			return nil, err
		}
		return agent.NewEngine(runCfg, llm, search, logger), nil
	}
	return s
}

type Job struct {
	ID        uuid.UUID       `json:"id"`
	Question  string          `json:"question"`
	Status    string          `json:"status"`
	Answer    *string         `json:"answer,omitempty"`
	Sources   []agent.Source  `json:"sources,omitempty"`
	Error     string          `json:"error,omitempty"`
	State     json.RawMessage `json:"state,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	logs []LogEntry
}

type LogEntry struct {
	ID        int             `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Level     string          `json:"level"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata"`
}

type CreateJobRequest struct {
	Question          string          `json:"question"`
	Messages          []agent.Message `json:"messages"`
	InitialQueryCount *int            `json:"initial_query_count,omitempty"`
	MaxResearchLoops  *int            `json:"max_research_loops,omitempty"`
	ReasoningModel    string          `json:"reasoning_model,omitempty"`
}

func (r CreateJobRequest) conversation() agent.Conversation {
	if len(r.Messages) > 0 {
		return agent.Conversation(r.Messages)
	}
	return agent.Conversation{{Role: agent.RoleUser, Content: r.Question}}
}

// runConfig maps the service defaults plus request-time overrides into the
// immutable per-run parameter bundle.
func (s *Service) runConfig(req CreateJobRequest) agent.Config {
	cfg := agent.Config{
		InitialQueryCount:   s.Cfg.InitialQueryCount,
		MaxResearchLoops:    s.Cfg.MaxResearchLoops,
		QueryGeneratorModel: s.Cfg.QueryGeneratorModel,
		ReflectionModel:     s.Cfg.ReflectionModel,
		AnswerModel:         s.Cfg.AnswerModel,
	}
	if req.InitialQueryCount != nil && *req.InitialQueryCount >= 1 {
		cfg.InitialQueryCount = *req.InitialQueryCount
	}
	if req.MaxResearchLoops != nil && *req.MaxResearchLoops >= 0 {
		cfg.MaxResearchLoops = *req.MaxResearchLoops
	}
	if req.ReasoningModel != "" {
		cfg.ReflectionModel = req.ReasoningModel
		cfg.AnswerModel = req.ReasoningModel
	}
	return cfg
}

func (s *Service) CreateJob(ctx context.Context, req CreateJobRequest) (*Job, error) {
	conv := req.conversation()
	if conv.ResearchTopic() == "" {
		return nil, fmt.Errorf("question must not be empty")
	}

	now := time.Now()
	job := &Job{
		ID:        uuid.New(),
		Question:  conv.ResearchTopic(),
		Status:    "pending",
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	s.mu.Unlock()

	go s.runWorker(job.ID, conv, s.runConfig(req))

	return s.snapshot(job.ID), nil
}

func (s *Service) GetJob(id uuid.UUID) (*Job, error) {
	job := s.snapshot(id)
	if job == nil {
		return nil, fmt.Errorf("job %s not found", id)
	}
	return job, nil
}

func (s *Service) ListJobs() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]Job, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		jobs = append(jobs, *s.jobs[s.order[i]])
	}
	return jobs
}

func (s *Service) GetJobLogs(id uuid.UUID) ([]LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s not found", id)
	}
	logs := make([]LogEntry, len(job.logs))
	copy(logs, job.logs)
	return logs, nil
}

// RunSync executes a research run within the request lifetime and returns
// the terminal result directly.
func (s *Service) RunSync(ctx context.Context, req CreateJobRequest) (*agent.Result, error) {
	conv := req.conversation()
	if conv.ResearchTopic() == "" {
		return nil, fmt.Errorf("question must not be empty")
	}

	engine, err := s.NewEngine(ctx, s.runConfig(req), slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to init engine: %w", err)
	}
	return engine.Run(ctx, conv)
}

func (s *Service) runWorker(jobID uuid.UUID, conv agent.Conversation, runCfg agent.Config) {
	ctx := context.Background()
	s.updateJob(jobID, func(j *Job) { j.Status = "running" })

	jobLogger := slog.New(NewJobLogHandler(s, jobID))

	engine, err := s.NewEngine(ctx, runCfg, jobLogger)
	if err != nil {
		s.failJob(jobID, fmt.Sprintf("Failed to init engine: %v", err))
		return
	}

	engine.OnStateUpdate = func(state agent.ResearchState) {
		stateJSON, err := json.Marshal(state)
		if err != nil {
			jobLogger.Error("Failed to marshal state", "error", err)
			return
		}
		s.updateJob(jobID, func(j *Job) { j.State = stateJSON })
	}

	result, err := engine.Run(ctx, conv)
	if err != nil {
		s.failJob(jobID, fmt.Sprintf("Research failed: %v", err))
		return
	}

	s.updateJob(jobID, func(j *Job) {
		j.Status = "completed"
		j.Answer = &result.Message.Content
		j.Sources = result.CitedSources
	})
}

func (s *Service) failJob(jobID uuid.UUID, reason string) {
	slog.New(NewJobLogHandler(s, jobID)).Error(reason)
	s.updateJob(jobID, func(j *Job) {
		j.Status = "failed"
		j.Error = reason
	})
}

func (s *Service) updateJob(id uuid.UUID, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
		job.UpdatedAt = time.Now()
	}
}

func (s *Service) appendLog(id uuid.UUID, entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		entry.ID = len(job.logs) + 1
		job.logs = append(job.logs, entry)
	}
}

func (s *Service) snapshot(id uuid.UUID) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if job, ok := s.jobs[id]; ok {
		snap := *job
		snap.logs = nil
		return &snap
	}
	return nil
}
