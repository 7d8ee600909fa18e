package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/trendscanner-api/internal/config"
	"github.com/trendscanner-api/internal/mocks"
	"github.com/trendscanner-api/internal/service"
)

func newScheduledServices(enabled bool) (*service.Services, *mocks.MockTrendSource) {
	repos, _, _, _ := mocks.NewMockRepositories()
	source := &mocks.MockTrendSource{Keywords: []string{"월드컵"}}

	cfg := &config.Config{
		AutoPost: config.AutoPostConfig{Timeout: time.Second},
		Scheduler: config.SchedulerConfig{
			Enabled:          enabled,
			CollectInterval:  10 * time.Millisecond,
			AutoPostInterval: time.Hour,
			AutoPostCount:    1,
		},
	}

	clients := service.Clients{Generator: mocks.NewMockGenerator(), Trends: source}
	return service.NewServices(repos, clients, nil, cfg, zerolog.Nop()), source
}

func TestScheduler_RunsCollection(t *testing.T) {
	services, source := newScheduledServices(true)

	services.Scheduler.Start(context.Background())
	defer services.Scheduler.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for source.CallCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Scheduler never triggered collection")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestScheduler_Disabled(t *testing.T) {
	services, source := newScheduledServices(false)

	services.Scheduler.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	services.Scheduler.Stop()

	if source.CallCount() != 0 {
		t.Errorf("Disabled scheduler should not collect, got %d calls", source.CallCount())
	}
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	services, _ := newScheduledServices(true)

	services.Scheduler.Start(context.Background())
	services.Scheduler.Start(context.Background())
	services.Scheduler.Stop()
	services.Scheduler.Stop()
}
