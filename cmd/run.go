package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/learnlens/internal/config"
	"github.com/abhisek/learnlens/internal/dashboard"
	"github.com/abhisek/learnlens/internal/engine"
	"github.com/abhisek/learnlens/internal/logging"
	"github.com/abhisek/learnlens/internal/question"
	"github.com/abhisek/learnlens/internal/store"
)

// runtime is everything a command needs once the store is open.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
	engine *engine.Engine
	views  *dashboard.Aggregator
	report *engine.LoadReport
}

// openRuntime loads config, opens the store, and builds the engine with
// state restored from the event log.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	eng := engine.New(question.NewRegistry(), engine.Repos{
		Events:      st.EventRepo(),
		Projections: st.ProjectionRepo(),
		Questions:   st.QuestionRepo(),
	}, engine.WithLogger(logger), engine.WithBaseXP(cfg.Engine.BaseXP))

	report, err := eng.Load(cmd.Context())
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("restore state: %w", err)
	}

	views := dashboard.NewAggregator(eng, dashboard.Options{
		RecentEvents:  cfg.Engine.RecentEvents,
		RecentQuizzes: cfg.Engine.RecentQuizzes,
		ReviewLimit:   cfg.Engine.ReviewLimit,
	})
	logger.Debug("runtime ready", zap.String("db", dbPath))
	return &runtime{cfg: cfg, logger: logger, store: st, engine: eng, views: views, report: report}, nil
}

func (r *runtime) Close() {
	_ = r.logger.Sync()
	if err := r.store.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "close database:", err)
	}
}
