package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/druedada/projecte-final/internal/model"
	"github.com/druedada/projecte-final/internal/observability/jsonlog"
)

// TaskService is the domain service behind the REST API.
type TaskService interface {
	Create(ctx context.Context, in model.TaskInput) (model.Task, error)
	List(ctx context.Context) ([]model.Task, error)
	Get(ctx context.Context, id string) (model.Task, error)
	Update(ctx context.Context, id string, in model.TaskInput) (model.Task, error)
	Delete(ctx context.Context, id string) error
	PingContext(ctx context.Context) error
}

type Options struct {
	// APIPrefix is prepended to the /tasks routes, e.g. "/api".
	APIPrefix      string
	RequestTimeout time.Duration
	// Logger receives key=value access logs. Ignored when JSONLogger is set.
	Logger     *log.Logger
	JSONLogger *jsonlog.Logger
}

type Server struct {
	service TaskService
	logger  *log.Logger
	mux     *http.ServeMux
	handler http.Handler
}

func NewServer(service TaskService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 3 * time.Second
	}

	srv := &Server{
		service: service,
		logger:  opts.Logger,
		mux:     http.NewServeMux(),
	}

	srv.mux.HandleFunc("GET /{$}", srv.handleWelcome)
	srv.mux.HandleFunc("GET /healthz", srv.handleHealth)
	srv.mux.HandleFunc("GET /readyz", ReadyzHandler(service))

	p := opts.APIPrefix
	srv.mux.HandleFunc("GET "+p+"/tasks", srv.handleListTasks)
	srv.mux.HandleFunc("POST "+p+"/tasks", srv.handleCreateTask)
	srv.mux.HandleFunc("GET "+p+"/tasks/{id}", srv.handleGetTask)
	srv.mux.HandleFunc("PUT "+p+"/tasks/{id}", srv.handleUpdateTask)
	srv.mux.HandleFunc("DELETE "+p+"/tasks/{id}", srv.handleDeleteTask)

	var logging func(http.Handler) http.Handler
	if opts.JSONLogger != nil {
		logging = LoggingJSON(opts.JSONLogger)
	} else {
		logging = Logging(opts.Logger)
	}

	srv.handler = CORS(
		WithRequestID(
			logging(
				Timeout(opts.RequestTimeout)(srv.mux),
			),
		),
	)
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
