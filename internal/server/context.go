package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teemow/todoist-mcp/internal/format"
	"github.com/teemow/todoist-mcp/internal/instrumentation"
	"github.com/teemow/todoist-mcp/internal/todoist"
)

// TodoistClient is the remote API surface the tools depend on.
// *todoist.Client implements it; tests substitute a fake.
type TodoistClient interface {
	GetTask(ctx context.Context, id string) (*todoist.Task, error)
	GetTasks(ctx context.Context, args todoist.TaskListArgs) (todoist.Page[todoist.Task], error)
	GetTasksByFilter(ctx context.Context, args todoist.TaskFilterArgs) (todoist.Page[todoist.Task], error)
	GetCompletedTasksByCompletionDate(ctx context.Context, args todoist.CompletedTasksArgs) (todoist.Page[todoist.Task], error)
	GetCompletedTasksByDueDate(ctx context.Context, args todoist.CompletedTasksArgs) (todoist.Page[todoist.Task], error)
	AddTask(ctx context.Context, args todoist.AddTaskArgs) (*todoist.Task, error)
	UpdateTask(ctx context.Context, id string, args todoist.UpdateTaskArgs) (*todoist.Task, error)
	MoveTask(ctx context.Context, id string, args todoist.MoveTaskArgs) (*todoist.Task, error)
	CloseTask(ctx context.Context, id string) error
	DeleteTask(ctx context.Context, id string) error

	GetProject(ctx context.Context, id string) (todoist.Project, error)
	GetProjects(ctx context.Context, args todoist.PageArgs) (todoist.Page[todoist.Project], error)
	AddProject(ctx context.Context, args todoist.AddProjectArgs) (todoist.Project, error)
	UpdateProject(ctx context.Context, id string, args todoist.UpdateProjectArgs) (todoist.Project, error)
	DeleteProject(ctx context.Context, id string) error
	GetProjectCollaborators(ctx context.Context, projectID string, args todoist.PageArgs) (todoist.Page[todoist.Collaborator], error)

	GetSection(ctx context.Context, id string) (*todoist.Section, error)
	GetSections(ctx context.Context, projectID string, args todoist.PageArgs) (todoist.Page[todoist.Section], error)
	AddSection(ctx context.Context, args todoist.AddSectionArgs) (*todoist.Section, error)
	UpdateSection(ctx context.Context, id string, args todoist.UpdateSectionArgs) (*todoist.Section, error)
	DeleteSection(ctx context.Context, id string) error

	GetComment(ctx context.Context, id string) (*todoist.Comment, error)
	GetComments(ctx context.Context, args todoist.CommentListArgs) (todoist.Page[todoist.Comment], error)
	AddComment(ctx context.Context, args todoist.AddCommentArgs) (*todoist.Comment, error)
	UpdateComment(ctx context.Context, id string, args todoist.UpdateCommentArgs) (*todoist.Comment, error)
	DeleteComment(ctx context.Context, id string) error

	GetUser(ctx context.Context) (*todoist.User, error)
	GetActivityLogs(ctx context.Context, args todoist.ActivityArgs) (todoist.Page[todoist.ActivityEvent], error)
}

var _ TodoistClient = (*todoist.Client)(nil)

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithFormatter sets the response formatter. Defaults to format.DefaultConfig.
func WithFormatter(f *format.Formatter) Option {
	return func(sc *ServerContext) { sc.formatter = f }
}

// WithLocation sets the timezone used for date windows. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(sc *ServerContext) { sc.location = loc }
}

// WithClock overrides time.Now, used to resolve "today".
func WithClock(now func() time.Time) Option {
	return func(sc *ServerContext) { sc.now = now }
}

// WithLogger sets the logger handed to tools.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) { sc.logger = logger }
}

// WithOutputValidation enables validation of structured tool output
// against the tool's declared output schema.
func WithOutputValidation(enabled bool) Option {
	return func(sc *ServerContext) { sc.validateOutput = enabled }
}

// ServerContext holds the dependencies shared by every tool handler.
// Everything except the instrumentation hooks is read-only after
// construction.
type ServerContext struct {
	ctx            context.Context
	cancel         context.CancelFunc
	client         TodoistClient
	formatter      *format.Formatter
	location       *time.Location
	now            func() time.Time
	logger         *slog.Logger
	validateOutput bool

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context around client.
func NewServerContext(ctx context.Context, client TodoistClient, opts ...Option) (*ServerContext, error) {
	if client == nil {
		return nil, fmt.Errorf("todoist client is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		client: client,
	}
	for _, opt := range opts {
		opt(sc)
	}

	if sc.formatter == nil {
		sc.formatter = format.New(format.DefaultConfig())
	}
	if sc.location == nil {
		sc.location = time.UTC
	}
	if sc.now == nil {
		sc.now = time.Now
	}
	if sc.logger == nil {
		sc.logger = slog.Default()
	}
	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Client returns the Todoist client.
func (sc *ServerContext) Client() TodoistClient {
	return sc.client
}

// Formatter returns the response formatter.
func (sc *ServerContext) Formatter() *format.Formatter {
	return sc.formatter
}

// Location returns the timezone for date arithmetic.
func (sc *ServerContext) Location() *time.Location {
	return sc.location
}

// Now returns the current time according to the configured clock.
func (sc *ServerContext) Now() time.Time {
	return sc.now()
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// ValidateOutput reports whether structured output is checked against
// the tool's output schema.
func (sc *ServerContext) ValidateOutput() bool {
	return sc.validateOutput
}

// SetMetrics sets the metrics recorder used by instrumented handlers.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder, or nil when not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger used by instrumented handlers.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// AuditLogger returns the audit logger, or nil when not configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
