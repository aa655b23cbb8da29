package sched

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"deskbot/internal/domain"
	"deskbot/internal/registry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

type countingMessenger struct {
	buttons int
}

func (c *countingMessenger) PostMessage(context.Context, string, string) error { return nil }

func (c *countingMessenger) PostButtons(_ context.Context, _, _ string, _ []domain.Button) error {
	c.buttons++
	return nil
}

func (c *countingMessenger) ScheduleMessage(context.Context, string, string, time.Time) error {
	return nil
}

func newTestScheduler(t *testing.T) (*Scheduler, *countingMessenger) {
	t.Helper()
	reg := registry.New(registry.Config{DefaultToken: "xoxb-default", Logger: testLogger()})
	sent := &countingMessenger{}
	s := New(reg, func(string) domain.Messenger { return sent }, testLogger())
	return s, sent
}

func TestCheckAndExecute_FiresDueTask(t *testing.T) {
	s, sent := newTestScheduler(t)
	s.AddTask(Task{ID: "t1", ChannelID: "C1", IntervalS: 60, Enabled: true})

	// Not due yet.
	s.checkAndExecute(context.Background(), time.Now())
	if sent.buttons != 0 {
		t.Fatal("task fired before its interval elapsed")
	}

	// Due.
	s.checkAndExecute(context.Background(), time.Now().Add(2*time.Minute))
	if sent.buttons != 1 {
		t.Errorf("prompts sent = %d, want 1", sent.buttons)
	}
}

func TestCheckAndExecute_RespectsEnabled(t *testing.T) {
	s, sent := newTestScheduler(t)
	s.AddTask(Task{ID: "t1", ChannelID: "C1", IntervalS: 1, Enabled: false})

	s.checkAndExecute(context.Background(), time.Now().Add(time.Hour))
	if sent.buttons != 0 {
		t.Error("disabled task fired")
	}
}

func TestCheckAndExecute_ReschedulesAfterFire(t *testing.T) {
	s, sent := newTestScheduler(t)
	s.AddTask(Task{ID: "t1", ChannelID: "C1", IntervalS: 3600, Enabled: true})

	fireAt := time.Now().Add(2 * time.Hour)
	s.checkAndExecute(context.Background(), fireAt)
	s.checkAndExecute(context.Background(), fireAt.Add(time.Second))
	if sent.buttons != 1 {
		t.Errorf("prompts sent = %d, want 1 (next run pushed out)", sent.buttons)
	}
}

func TestCheckAndExecute_SkipsUnknownTenant(t *testing.T) {
	reg := registry.New(registry.Config{Logger: testLogger()}) // no default, no installs
	sent := &countingMessenger{}
	s := New(reg, func(string) domain.Messenger { return sent }, testLogger())
	s.AddTask(Task{ID: "t1", TeamID: "T-unknown", ChannelID: "C1", IntervalS: 1, Enabled: true})

	s.checkAndExecute(context.Background(), time.Now().Add(time.Minute))
	if sent.buttons != 0 {
		t.Error("unknown tenant should be skipped")
	}
}

func TestRemoveTask(t *testing.T) {
	s, sent := newTestScheduler(t)
	s.AddTask(Task{ID: "t1", ChannelID: "C1", IntervalS: 1, Enabled: true})
	s.RemoveTask("t1")

	s.checkAndExecute(context.Background(), time.Now().Add(time.Minute))
	if sent.buttons != 0 {
		t.Error("removed task fired")
	}
	if len(s.ListTasks()) != 0 {
		t.Error("task list not empty after removal")
	}
}
