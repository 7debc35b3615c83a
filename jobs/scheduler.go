// jobs/scheduler.go
package jobs

import (
	"github.com/robfig/cron/v3"

	"github.com/wfunc/slotserver/logger"
	"github.com/wfunc/slotserver/registry"
	"github.com/wfunc/slotserver/services"
)

// Scheduler runs the periodic balance flush: every tick the live
// registry snapshot is written to the durable store, so a crash loses at
// most one interval of settlements.
type Scheduler struct {
	cron     *cron.Cron
	registry *registry.Registry
	players  *services.PlayerService
	schedule string
}

func NewScheduler(reg *registry.Registry, players *services.PlayerService, schedule string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		registry: reg,
		players:  players,
		schedule: schedule,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.flush)
	if err != nil {
		return err
	}
	s.cron.Start()
	logger.Log.Infof("Balance flush scheduled: %s", s.schedule)
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Log.Info("Balance flush scheduler stopped")
}

func (s *Scheduler) flush() {
	players := s.registry.Snapshot()
	if len(players) == 0 {
		return
	}
	if err := s.players.PersistAll(players); err != nil {
		logger.Log.Errorf("Balance flush: %v", err)
		return
	}
	logger.Log.Debugf("Flushed %d player balances", len(players))
}
