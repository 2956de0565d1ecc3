package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/upkeepworks/property-maintenance/internal/config"
	"github.com/upkeepworks/property-maintenance/internal/db"
	"github.com/upkeepworks/property-maintenance/internal/models"
	"github.com/upkeepworks/property-maintenance/internal/service"
)

var categories = []models.RequestCategory{
	models.CategoryPlumbing, models.CategoryElectrical, models.CategoryHVAC,
	models.CategoryAppliance, models.CategoryStructural, models.CategoryCleaning,
	models.CategoryGeneral,
}

var priorities = []models.Priority{
	models.PriorityLow, models.PriorityMedium, models.PriorityHigh,
	models.PriorityUrgent, models.PriorityEmergency,
}

var types = []models.RequestType{
	models.TypeRepair, models.TypeReplacement, models.TypeInspection,
	models.TypePreventive,
}

var frequencies = []models.Frequency{
	models.FrequencyWeekly, models.FrequencyMonthly, models.FrequencyQuarterly,
	models.FrequencyAnnually,
}

var titles = []string{
	"Leaking kitchen faucet",
	"Broken hallway light",
	"HVAC filter replacement",
	"Dishwasher not draining",
	"Cracked bathroom tile",
	"Smoke detector chirping",
	"Garage door stuck",
	"Water heater inspection",
}

func main() {
	cfg := config.Load()

	tenantCount := envInt("SEED_TENANTS", 2)
	requestCount := envInt("SEED_REQUESTS", 25)
	scheduleCount := envInt("SEED_SCHEDULES", 8)

	var (
		requestStore  db.RequestStore
		scheduleStore db.ScheduleStore
	)
	if cfg.UseMemory {
		requestStore = db.NewMemoryRequestStore()
		scheduleStore = db.NewMemoryScheduleStore()
	} else {
		client, err := db.ConnectMongo()
		if err != nil {
			log.WithError(err).Fatal("failed to connect to MongoDB")
		}
		defer client.Disconnect(context.Background())

		database := client.Database(cfg.MongoDatabase)
		requestStore = &db.MongoRequestStore{Collection: database.Collection("maintenance_requests")}
		scheduleStore = &db.MongoScheduleStore{Collection: database.Collection("maintenance_schedules")}
	}

	requests := service.NewRequestService(requestStore, nil)
	schedules := service.NewScheduleService(scheduleStore, nil)
	ctx := context.Background()

	for t := 0; t < tenantCount; t++ {
		tenant := fmt.Sprintf("tenant-%03d", t+1)
		seedTenant(ctx, requests, schedules, tenant, requestCount, scheduleCount)
	}
}

func seedTenant(ctx context.Context, requests *service.RequestService, schedules *service.ScheduleService, tenant string, requestCount, scheduleCount int) {
	actor := "seeder"

	for i := 0; i < requestCount; i++ {
		due := time.Now().AddDate(0, 0, rand.Intn(21)-7)
		created, err := requests.Create(ctx, tenant, models.MaintenanceRequest{
			Title:         titles[rand.Intn(len(titles))],
			Description:   "Seeded maintenance request",
			Type:          types[rand.Intn(len(types))],
			Category:      categories[rand.Intn(len(categories))],
			Priority:      priorities[rand.Intn(len(priorities))],
			PropertyID:    fmt.Sprintf("prop-%02d", rand.Intn(5)+1),
			UnitID:        fmt.Sprintf("unit-%02d", rand.Intn(20)+1),
			RequestedByID: fmt.Sprintf("resident-%02d", rand.Intn(30)+1),
			DueDate:       &due,
			EstimatedCost: float64(rand.Intn(90)+10) * 5,
		}, actor)
		if err != nil {
			log.WithError(err).WithField("tenant", tenant).Error("failed to seed request")
			continue
		}

		// Walk a share of the requests through the lifecycle so the
		// dashboard has something to aggregate.
		id := created.ID.Hex()
		switch rand.Intn(4) {
		case 1:
			tech := fmt.Sprintf("tech-%02d", rand.Intn(6)+1)
			if _, err := requests.Assign(ctx, tenant, id, tech, actor, ""); err != nil {
				log.WithError(err).Error("failed to seed assignment")
			}
		case 2:
			tech := fmt.Sprintf("tech-%02d", rand.Intn(6)+1)
			if _, err := requests.Assign(ctx, tenant, id, tech, actor, ""); err != nil {
				log.WithError(err).Error("failed to seed assignment")
				continue
			}
			cost := float64(rand.Intn(150)+20) * 5
			rating := rand.Intn(5) + 1
			warranty := 30
			if _, err := requests.Complete(ctx, tenant, id, models.CompletionDetails{
				ActualCost:         &cost,
				SatisfactionRating: &rating,
				WarrantyDays:       &warranty,
				Notes:              "seeded completion",
			}, actor); err != nil {
				log.WithError(err).Error("failed to seed completion")
			}
		case 3:
			if _, err := requests.Cancel(ctx, tenant, id, "seeded cancellation", actor); err != nil {
				log.WithError(err).Error("failed to seed cancellation")
			}
		}
	}

	for i := 0; i < scheduleCount; i++ {
		start := time.Now().AddDate(0, 0, -rand.Intn(60))
		freq := frequencies[rand.Intn(len(frequencies))]
		_, err := schedules.Create(ctx, tenant, models.MaintenanceSchedule{
			PropertyID:   fmt.Sprintf("prop-%02d", rand.Intn(5)+1),
			Title:        "Preventive " + string(categories[rand.Intn(len(categories))]) + " check",
			Type:         models.TypePreventive,
			Category:     categories[rand.Intn(len(categories))],
			Priority:     models.PriorityMedium,
			Frequency:    freq,
			StartDate:    start,
			AssignedToID: fmt.Sprintf("tech-%02d", rand.Intn(6)+1),
		})
		if err != nil {
			log.WithError(err).WithField("tenant", tenant).Error("failed to seed schedule")
		}
	}

	log.WithFields(log.Fields{
		"tenant":    tenant,
		"requests":  requestCount,
		"schedules": scheduleCount,
	}).Info("seeded tenant")
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}
