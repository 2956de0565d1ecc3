package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/upkeepworks/property-maintenance/internal/config"
	"github.com/upkeepworks/property-maintenance/internal/db"
	"github.com/upkeepworks/property-maintenance/internal/events"
	"github.com/upkeepworks/property-maintenance/internal/service"
)

func main() {
	cfg := config.Load()

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	var (
		requestStore  db.RequestStore
		scheduleStore db.ScheduleStore
	)

	if cfg.UseMemory {
		log.Warn("using in-memory stores, data will not survive a restart")
		requestStore = db.NewMemoryRequestStore()
		scheduleStore = db.NewMemoryScheduleStore()
	} else {
		client, err := db.ConnectMongo()
		if err != nil {
			log.WithError(err).Fatal("failed to connect to MongoDB")
		}
		defer client.Disconnect(context.Background())
		log.Info("connected to MongoDB")

		database := client.Database(cfg.MongoDatabase)
		requests := &db.MongoRequestStore{Collection: database.Collection("maintenance_requests")}
		schedules := &db.MongoScheduleStore{Collection: database.Collection("maintenance_schedules")}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := requests.EnsureIndexes(ctx); err != nil {
			log.WithError(err).Fatal("failed to create request indexes")
		}
		if err := schedules.EnsureIndexes(ctx); err != nil {
			log.WithError(err).Fatal("failed to create schedule indexes")
		}
		cancel()

		requestStore = requests
		scheduleStore = schedules
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.MQTTBroker != "" {
		mqttPub, err := events.NewMQTTPublisher(events.MQTTConfig{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
			QoS:      cfg.MQTTQoS,
		})
		if err != nil {
			log.WithError(err).Fatal("failed to connect to MQTT broker")
		}
		defer mqttPub.Disconnect()
		log.WithField("broker", cfg.MQTTBroker).Info("publishing lifecycle events over MQTT")
		publisher = mqttPub
	}

	scheduleService := service.NewScheduleService(scheduleStore, publisher)
	dashboardService := service.NewDashboardService(requestStore, scheduleStore)

	log.WithField("interval", cfg.SweepInterval).Info("maintenance engine started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	sweep(scheduleStore, scheduleService, dashboardService)
	for {
		select {
		case <-ticker.C:
			sweep(scheduleStore, scheduleService, dashboardService)
		case sig := <-stop:
			log.WithField("signal", sig.String()).Info("shutting down")
			return
		}
	}
}

// sweep refreshes persisted schedule projections for every tenant and logs
// a dashboard summary.
func sweep(store db.ScheduleStore, schedules *service.ScheduleService, dashboards *service.DashboardService) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	tenants, err := store.DistinctTenants(ctx)
	if err != nil {
		log.WithError(err).Error("failed to list tenants")
		return
	}

	for _, tenant := range tenants {
		updated, err := schedules.RefreshProjections(ctx, tenant)
		if err != nil {
			log.WithError(err).WithField("tenant", tenant).Error("failed to refresh schedule projections")
			continue
		}

		stats, err := dashboards.GetDashboard(ctx, tenant)
		if err != nil {
			log.WithError(err).WithField("tenant", tenant).Error("failed to compute dashboard")
			continue
		}

		log.WithFields(log.Fields{
			"tenant":             tenant,
			"schedules_updated":  updated,
			"requests_total":     stats.TotalRequests,
			"requests_overdue":   stats.OverdueRequests,
			"schedules_overdue":  stats.OverdueSchedules,
			"schedules_upcoming": stats.UpcomingSchedules,
		}).Info("sweep complete")
	}
}
