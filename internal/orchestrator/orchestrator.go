// Package orchestrator loads the configured platform engines, configures them
// one after the other, schedules the tasks they contribute and supervises
// those tasks for the life of the process.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/atlanticdynamic/bottery/internal/config"
	"github.com/atlanticdynamic/bottery/internal/conversations"
	"github.com/atlanticdynamic/bottery/internal/engine"
	"github.com/atlanticdynamic/bottery/internal/finitestate"
	"github.com/atlanticdynamic/bottery/internal/handlers"
	"github.com/atlanticdynamic/bottery/internal/httpboot"
	"github.com/atlanticdynamic/bottery/internal/resources"
	"github.com/atlanticdynamic/bottery/internal/scheduler"
	"github.com/gofrs/uuid/v5"
	"github.com/robbyt/go-loglater"
	"github.com/robbyt/go-loglater/storage"
	"github.com/robbyt/go-supervisor/supervisor"
)

var (
	_ supervisor.Runnable  = (*Orchestrator)(nil)
	_ supervisor.Stateable = (*Orchestrator)(nil)
)

// Orchestrator drives one run of the bot host.
type Orchestrator struct {
	runID  uuid.UUID
	logger *slog.Logger
	fsm    finitestate.Machine

	// failure history, also forwarded to logger
	failures      *loglater.LogCollector
	failureLogger *slog.Logger

	parentCtx     context.Context
	engines       *engine.Registry
	handlers      handlers.Set
	conversations *conversations.Store
	resources     *resources.Registry
	platforms     []config.Platform
	port          int
	listenerOpts  []httpboot.Option
	policy        config.FailurePolicy
	maxRestarts   int
	shutdown      config.ShutdownMode
	drainTimeout  time.Duration

	mutex         sync.Mutex
	restarts      map[string]int
	instances     []engine.Instance
	tasks         []*scheduler.Task
	listener      *httpboot.Listener
	runCancel     context.CancelFunc
	stopRequested bool
	runErr        error

	stopOnce    sync.Once
	releaseOnce sync.Once
}

// New creates an Orchestrator in the Created state.
func New(opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		runID:         uuid.Must(uuid.NewV6()),
		logger:        slog.Default().WithGroup("orchestrator.Orchestrator"),
		parentCtx:     context.Background(),
		engines:       engine.NewRegistry(),
		handlers:      handlers.Default(),
		conversations: conversations.New(),
		port:          config.DefaultPort,
		policy:        config.FailurePolicyHalt,
		maxRestarts:   config.DefaultMaxRestarts,
		shutdown:      config.ShutdownAbrupt,
		drainTimeout:  config.DefaultDrainTimeout,
		restarts:      make(map[string]int),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("run", o.runID.String())

	if o.resources == nil {
		o.resources = resources.New(resources.WithLogger(o.logger.WithGroup("resources")))
	}

	o.failures = loglater.NewLogCollector(o.logger.Handler())
	o.failureLogger = slog.New(o.failures)

	fsm, err := finitestate.New(o.logger.WithGroup("fsm").Handler())
	if err != nil {
		return nil, fmt.Errorf("failed to create state machine: %w", err)
	}
	o.fsm = fsm

	return o, nil
}

// String implements the supervisor.Runnable interface
func (o *Orchestrator) String() string {
	return "orchestrator.Orchestrator"
}

// Run loads, configures and schedules every engine, then supervises the
// scheduled tasks until the context ends, Stop is called, or the failure
// policy halts the scheduler. A halt is returned as an error wrapping
// ErrTaskFailed; a requested stop returns nil.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.mutex.Lock()
	if o.stopRequested {
		o.mutex.Unlock()
		o.logger.Debug("Stop requested before run, skipping")
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.runCancel = cancel
	o.mutex.Unlock()
	defer cancel()

	stopParent := context.AfterFunc(o.parentCtx, cancel)
	defer stopParent()

	err := o.boot(runCtx)
	if err == nil {
		err = o.advance(runCtx, finitestate.StatusRunning)
	}
	if err == nil {
		o.logger.Info("Bot host running", "engines", len(o.Engines()), "tasks", len(o.Tasks()))
		err = o.supervise(runCtx)
	}

	o.release()

	if err != nil && runCtx.Err() != nil && errors.Is(err, context.Canceled) {
		err = nil
	}
	o.mutex.Lock()
	o.runErr = err
	o.mutex.Unlock()

	if err != nil {
		o.logger.Error("Orchestrator crashed", "error", err)
		if stateErr := o.fsm.Transition(finitestate.StatusCrashed); stateErr != nil {
			o.logger.Error("Failed to transition to crashed state", "error", stateErr)
		}
		return err
	}

	if o.fsm.GetState() != finitestate.StatusStopping {
		if stateErr := o.fsm.Transition(finitestate.StatusStopping); stateErr != nil {
			o.logger.Error("Failed to transition to stopping state", "error", stateErr)
		}
	}
	if stateErr := o.fsm.Transition(finitestate.StatusStopped); stateErr != nil {
		return fmt.Errorf("failed to transition to stopped state: %w", stateErr)
	}
	o.logger.Info("Orchestrator stopped")
	return nil
}

// boot takes the orchestrator from Created to Scheduled.
func (o *Orchestrator) boot(ctx context.Context) error {
	if err := o.advance(ctx, finitestate.StatusLoading); err != nil {
		return err
	}

	global := engine.NewGlobalOptions(o.resources, o.conversations, o.handlers)
	instances, err := engine.Load(o.platforms, global, o.engines)
	if err != nil {
		return fmt.Errorf("loading engines: %w", err)
	}
	o.mutex.Lock()
	o.instances = instances
	o.mutex.Unlock()

	if err := o.advance(ctx, finitestate.StatusConfiguring); err != nil {
		return err
	}
	pending, err := o.configure(ctx, instances)
	if err != nil {
		return err
	}

	if err := o.advance(ctx, finitestate.StatusScheduled); err != nil {
		return err
	}
	global.Scheduler.SetFailureHandler(o.judgeFailure)
	if err := o.schedule(global.Scheduler, pending); err != nil {
		return err
	}

	return o.bind(ctx, global)
}

type pendingTask struct {
	name    string
	factory scheduler.Factory
}

// configure awaits Configure on every engine in configuration order and
// collects their factories into one ordered list.
func (o *Orchestrator) configure(ctx context.Context, instances []engine.Instance) ([]pendingTask, error) {
	var pending []pendingTask
	for _, inst := range instances {
		o.logger.Info("Configuring "+inst.Name, "engine", inst.Kind)
		if err := inst.Engine.Configure(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, &engine.PlatformError{
				Platform: inst.Name,
				Err:      fmt.Errorf("%w: %w", ErrEngineConfiguration, err),
			}
		}

		factories := inst.Engine.Tasks()
		for i, f := range factories {
			pending = append(pending, pendingTask{
				name:    fmt.Sprintf("%s#%d", inst.Name, i),
				factory: f,
			})
		}
		o.logger.Debug("Engine configured", "name", inst.Name, "tasks", len(factories))
	}
	return pending, nil
}

// schedule submits every collected factory exactly once.
func (o *Orchestrator) schedule(sched *scheduler.Scheduler, pending []pendingTask) error {
	for _, p := range pending {
		task, err := sched.Submit(p.name, p.factory)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrScheduling, p.name, err)
		}
		o.mutex.Lock()
		o.tasks = append(o.tasks, task)
		o.mutex.Unlock()
	}
	o.logger.Debug("Tasks scheduled", "count", len(pending))
	return nil
}

// bind starts the HTTP listener when an engine registered a route.
func (o *Orchestrator) bind(ctx context.Context, global engine.GlobalOptions) error {
	app := global.Server
	if !app.Touched() {
		o.logger.Debug("No HTTP routes registered, listener not bound")
		return nil
	}

	opts := append([]httpboot.Option{httpboot.WithLogger(o.logger.WithGroup("http"))}, o.listenerOpts...)
	listener, err := httpboot.BindAndServe(ctx, app, o.port, opts...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHTTPBind, err)
	}
	o.mutex.Lock()
	o.listener = listener
	o.mutex.Unlock()
	return nil
}

// advance transitions the state machine unless a stop was requested.
func (o *Orchestrator) advance(ctx context.Context, state string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := o.fsm.Transition(state); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to transition to %s state: %w", state, err)
	}
	return nil
}

// Stop requests shutdown and releases the shared resources. It is safe to
// call more than once and before Run.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		o.logger.Debug("Stopping orchestrator")

		o.mutex.Lock()
		o.stopRequested = true
		cancel := o.runCancel
		o.mutex.Unlock()

		if cancel != nil {
			// Run finishes the shutdown
			cancel()
			if !finitestate.IsTerminal(o.fsm.GetState()) {
				if err := o.fsm.Transition(finitestate.StatusStopping); err != nil {
					o.logger.Debug("Failed to transition to stopping state", "error", err)
				}
			}
			return
		}

		// Run never started
		if err := o.fsm.Transition(finitestate.StatusStopping); err != nil {
			o.logger.Debug("Failed to transition to stopping state", "error", err)
		}
		o.release()
		if err := o.fsm.Transition(finitestate.StatusStopped); err != nil {
			o.logger.Error("Failed to transition to stopped state", "error", err)
		}
	})
}

// release stops the listener, optionally drains the tasks, and closes the
// shared resources, exactly once.
func (o *Orchestrator) release() {
	o.releaseOnce.Do(func() {
		if l := o.Listener(); l != nil {
			l.Stop()
		}

		_, schedBuilt, _ := o.resources.Built()
		if o.shutdown == config.ShutdownGraceful && schedBuilt {
			ctx, cancel := context.WithTimeout(context.Background(), o.drainTimeout)
			if err := o.resources.Scheduler().Drain(ctx); err != nil {
				o.logger.Warn("Tasks did not return before the drain timeout", "timeout", o.drainTimeout, "error", err)
			}
			cancel()
		}

		if err := o.resources.Close(); err != nil {
			o.logger.Warn("Failed to release shared resources", "error", err)
		}
	})
}

// Engines returns the loaded engine instances in configuration order.
func (o *Orchestrator) Engines() []engine.Instance {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	instances := make([]engine.Instance, len(o.instances))
	copy(instances, o.instances)
	return instances
}

// Tasks returns the handles of every scheduled task, restarts included.
func (o *Orchestrator) Tasks() []*scheduler.Task {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	tasks := make([]*scheduler.Task, len(o.tasks))
	copy(tasks, o.tasks)
	return tasks
}

// Failures returns the recorded task failures.
func (o *Orchestrator) Failures() []storage.Record {
	return o.failures.GetLogs()
}

// Listener returns the HTTP listener, or nil when none was bound.
func (o *Orchestrator) Listener() *httpboot.Listener {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.listener
}

// Conversations returns the conversation store shared with the engines.
func (o *Orchestrator) Conversations() *conversations.Store {
	return o.conversations
}

// Err returns the error the last Run ended with.
func (o *Orchestrator) Err() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.runErr
}
