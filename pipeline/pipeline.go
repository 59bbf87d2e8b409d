package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pipedocs/docpipe/api"
	"github.com/pipedocs/docpipe/document"
	"github.com/pipedocs/docpipe/logger"
	"github.com/pipedocs/docpipe/resilience"
)

const (
	defaultConcurrency   = 4
	defaultDeleteTimeout = 120 * time.Second
)

// Config configures a pipeline.
type Config struct {
	// Concurrency bounds how many documents may be between creation and
	// deletion at any instant. Defaults to 4.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`

	// DeleteTimeout bounds the detached deletion call that runs even after
	// cancellation. Defaults to 120s.
	DeleteTimeout time.Duration `yaml:"delete_timeout" mapstructure:"delete_timeout"`

	// Logger receives engine logs. Nil disables logging.
	Logger *logger.Logger `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.DeleteTimeout <= 0 {
		c.DeleteTimeout = defaultDeleteTimeout
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Concurrency <= 0 {
		return fmt.Errorf("pipeline: concurrency must be positive")
	}
	return nil
}

// Pipeline assembles stages and handlers, then executes runs. Configuration
// calls (AddStage, OnError, OnCompleted) must happen before Run; the stage
// list is immutable once a run starts.
type Pipeline struct {
	config      Config
	client      Client
	stages      []Stage
	onError     []func(DocumentError)
	onCompleted func()

	mu      sync.Mutex
	running bool
	exec    *executor
}

// New creates a pipeline over the given remote-service client.
func New(client Client, cfg Config) (*Pipeline, error) {
	if client == nil {
		return nil, fmt.Errorf("pipeline: client is required")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{config: cfg, client: client}, nil
}

// AddStage appends a stage to the chain. Stages run in the order added.
func (p *Pipeline) AddStage(stage Stage) *Pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		p.stages = append(p.stages, stage)
	}
	return p
}

// Classify appends the remote classification operation as a stage. The
// name selects which classifier the service runs.
func (p *Pipeline) Classify(name string) *Pipeline {
	return p.AddStage(OperationStage(p.client, api.OpClassify, name))
}

// Extract appends the remote extraction operation as a stage. The name
// selects which extractor the service runs.
func (p *Pipeline) Extract(name string) *Pipeline {
	return p.AddStage(OperationStage(p.client, api.OpExtract, name))
}

// Redact appends the remote redaction operation as a stage. The name
// selects the redaction profile.
func (p *Pipeline) Redact(name string) *Pipeline {
	return p.AddStage(OperationStage(p.client, api.OpRedact, name))
}

// OnError registers a handler for per-document failures. Handlers compose:
// each registered handler is called once per DocumentError.
func (p *Pipeline) OnError(handler func(DocumentError)) *Pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		p.onError = append(p.onError, handler)
	}
	return p
}

// OnCompleted registers the callback invoked exactly once when the source
// is exhausted and every admitted document has finished.
func (p *Pipeline) OnCompleted(fn func()) *Pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		p.onCompleted = fn
	}
	return p
}

// Run consumes the source until exhaustion, fault, or cancellation. It
// returns nil on normal completion (after the completed callback), the
// context error on cancellation, or a PipelineFault on executor-level
// failure. Per-document errors never surface here.
func (p *Pipeline) Run(ctx context.Context, source document.Source) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("pipeline: already running")
	}
	p.running = true
	stages := make([]Stage, len(p.stages))
	copy(stages, p.stages)
	handlers := make([]func(DocumentError), len(p.onError))
	copy(handlers, p.onError)
	onCompleted := p.onCompleted
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.exec = nil
		p.mu.Unlock()
	}()

	slots, err := resilience.NewSlots(resilience.SlotsConfig{
		Name:     "pipeline",
		Capacity: p.config.Concurrency,
	})
	if err != nil {
		return err
	}

	proc := &processor{
		client:        p.client,
		stages:        stages,
		deleteTimeout: p.config.DeleteTimeout,
		log:           p.config.Logger.WithComponent("processor"),
	}

	exec := newExecutor(proc, slots, handlers, onCompleted, p.config.Logger.WithComponent("executor"))
	p.mu.Lock()
	p.exec = exec
	p.mu.Unlock()
	return exec.run(ctx, source)
}

// InFlight returns the source ids of documents currently being processed.
// It returns nil when no run is active.
func (p *Pipeline) InFlight() []string {
	p.mu.Lock()
	exec := p.exec
	p.mu.Unlock()
	if exec == nil {
		return nil
	}
	return exec.InFlight()
}
