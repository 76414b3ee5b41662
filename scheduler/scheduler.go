package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"facility_equipment_ledger/config"
	"facility_equipment_ledger/db"
)

// Scheduler runs the nightly usage-snapshot job.
type Scheduler struct {
	cron   *cron.Cron
	repo   *db.Repo
	cfg    config.Config
	logger *zap.Logger
}

func New(cfg config.Config, repo *db.Repo, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(),
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the snapshot job. An empty cron expression disables
// it.
func (s *Scheduler) Start() {
	if s.cfg.SnapshotCron == "" {
		s.logger.Info("snapshot job disabled")
		return
	}
	s.logger.Info("starting scheduler", zap.String("cron", s.cfg.SnapshotCron))

	_, err := s.cron.AddFunc(s.cfg.SnapshotCron, s.snapshotYesterday)
	if err != nil {
		s.logger.Error("failed to schedule snapshot job", zap.Error(err))
		return
	}
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) snapshotYesterday() {
	date := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.repo.SnapshotDailyUsage(ctx, date)
	if err != nil {
		s.logger.Error("snapshot failed", zap.String("date", date), zap.Error(err))
		return
	}
	s.logger.Info("snapshot written", zap.String("date", date), zap.Int("rows", n))
}
