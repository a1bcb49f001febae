package serverapp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wilkenstelisma/Work-Tracker-SN/internal/alert"
	"github.com/wilkenstelisma/Work-Tracker-SN/internal/config"
	"github.com/wilkenstelisma/Work-Tracker-SN/internal/httpmw"
	"github.com/wilkenstelisma/Work-Tracker-SN/internal/project"
	"github.com/wilkenstelisma/Work-Tracker-SN/internal/sweep"
	"github.com/wilkenstelisma/Work-Tracker-SN/internal/task"
	"github.com/wilkenstelisma/Work-Tracker-SN/internal/telemetry"
)

type Options struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *telemetry.Metrics
}

// App bundles the wired handler with the sweeper so the caller can start
// the background loop on its own context.
type App struct {
	Handler http.Handler
	Sweeper *sweep.Sweeper

	Tasks     task.Repo
	Projects  project.Repo
	Dismissed *alert.DismissalStore
}

func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	dataDir := strings.TrimSpace(opts.Config.Storage.DataDir)
	if dataDir == "" {
		dataDir = "data"
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.New()
	}
	logger := opts.Logger

	taskRepo, err := task.NewFileRepo(dataDir, logger)
	if err != nil {
		return nil, err
	}
	projectRepo, err := project.NewFileRepo(dataDir, logger)
	if err != nil {
		return nil, err
	}
	dismissed, err := alert.NewDismissalStore(dataDir, logger)
	if err != nil {
		return nil, err
	}

	sweeper := sweep.New(taskRepo, dismissed, metrics, opts.Config.SweepInterval(), logger)

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "worktracker",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if _, err := taskRepo.List(task.ListFilter{}); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "task storage unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":         true,
			"service":    "worktracker",
			"last_sweep": sweeper.LastRun().UTC().Format(time.RFC3339),
			"time":       time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.Handle("/metrics", metrics.Handler())

	taskHandler := task.NewHandler(taskRepo)
	taskHandler.SetChangeListener(sweeper.NotifyChange)
	mux.HandleFunc("/api/tasks", taskHandler.TasksRoot)
	mux.HandleFunc("/api/tasks/", taskHandler.TasksSub)

	projectHandler := project.NewHandler(projectRepo, taskRepo)
	projectHandler.SetChangeListener(sweeper.NotifyChange)
	mux.HandleFunc("/api/projects", projectHandler.ProjectsRoot)
	mux.HandleFunc("/api/projects/", projectHandler.ProjectsSub)

	alertHandler := alert.NewHandler(sweeper, dismissed)
	mux.HandleFunc("/api/alerts", alertHandler.AlertsRoot)
	mux.HandleFunc("/api/alerts/dismiss", alertHandler.Dismiss)
	mux.HandleFunc("/api/alerts/dismiss-all", alertHandler.DismissAll)

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(opts.Config); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	handler := httpmw.Chain(
		mux,
		httpmw.WithAccessLog(logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(logger),
	)

	return &App{
		Handler:   handler,
		Sweeper:   sweeper,
		Tasks:     taskRepo,
		Projects:  projectRepo,
		Dismissed: dismissed,
	}, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
