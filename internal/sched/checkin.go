// Package sched posts recurring check-in prompts to configured channels.
package sched

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"deskbot/internal/domain"
	"deskbot/internal/executor"
	"deskbot/internal/registry"
)

// Task is one recurring check-in target.
type Task struct {
	ID        string
	TeamID    string
	ChannelID string
	IntervalS int
	Enabled   bool
	LastRun   time.Time
	NextRun   time.Time
}

// Scheduler fires check-in prompts on a coarse one-second tick. Tenants
// without a resolvable credential are skipped and retried next interval.
type Scheduler struct {
	tasks        map[string]*Task
	registry     *registry.Registry
	newMessenger func(botToken string) domain.Messenger
	logger       *slog.Logger
	mu           sync.RWMutex
	stopCh       chan struct{}
	stopOnce     sync.Once
}

func New(reg *registry.Registry, newMessenger func(string) domain.Messenger, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		tasks:        make(map[string]*Task),
		registry:     reg,
		newMessenger: newMessenger,
		logger:       logger,
		stopCh:       make(chan struct{}),
	}
}

func (s *Scheduler) AddTask(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task.NextRun = time.Now().Add(time.Duration(task.IntervalS) * time.Second)
	s.tasks[task.ID] = &task
	s.logger.Info("checkin task added", "id", task.ID, "team", task.TeamID, "channel", task.ChannelID, "interval", task.IntervalS)
}

func (s *Scheduler) RemoveTask(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
	s.logger.Info("checkin task removed", "id", id)
}

func (s *Scheduler) ListTasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, *t)
	}
	return tasks
}

func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("checkin scheduler started")
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("checkin scheduler stopping")
			return
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			s.checkAndExecute(ctx, now)
		}
	}
}

// Stop halts the scheduler. Safe to call multiple times.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

func (s *Scheduler) checkAndExecute(ctx context.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, task := range s.tasks {
		if !task.Enabled || now.Before(task.NextRun) {
			continue
		}
		task.LastRun = now
		task.NextRun = now.Add(time.Duration(task.IntervalS) * time.Second)

		inst, ok := s.registry.Resolve(ctx, task.TeamID)
		if !ok {
			s.logger.Warn("checkin skipped: no installation", "id", task.ID, "team", task.TeamID)
			continue
		}

		s.logger.Info("posting scheduled checkin", "id", task.ID, "channel", task.ChannelID)
		messenger := s.newMessenger(inst.BotToken)
		if err := messenger.PostButtons(ctx, task.ChannelID, executor.CheckinPrompt(), executor.CheckinButtons); err != nil {
			s.logger.Error("scheduled checkin failed", "id", task.ID, "err", err)
		}
	}
}
