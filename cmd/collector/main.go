// Command collector periodically records the cheapest price of every tracked
// route and logs routes whose price dropped anomalously.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/dharmasatrya/fareradar/internal/app"
	"github.com/dharmasatrya/fareradar/internal/config"
	"github.com/dharmasatrya/fareradar/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger := cfg.Logger()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize: %v", err)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(cfg.CollectorSchedule, func() { collect(ctx, application, logger) }); err != nil {
		logger.Fatalf("Invalid COLLECTOR_SCHEDULE %q: %v", cfg.CollectorSchedule, err)
	}

	logger.WithField("schedule", cfg.CollectorSchedule).Info("Starting collector")
	collect(ctx, application, logger)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("collector stopped")
}

// collect snapshots every tracked route once. A failing route is logged and
// skipped.
func collect(ctx context.Context, a *app.App, logger logrus.FieldLogger) {
	routes, err := a.Store.Routes(ctx)
	if err != nil {
		logger.WithError(err).Error("list routes")
		return
	}

	var recorded, anomalies int
	for _, route := range routes {
		if ctx.Err() != nil {
			return
		}
		log := logger.WithFields(logrus.Fields{
			"route_id": route.ID,
			"origin":   route.Origin,
			"dest":     route.Destination,
			"date":     route.DepartureDate,
		})

		res, err := a.Service.RecordSnapshot(ctx, route.ID)
		switch {
		case errors.Is(err, pipeline.ErrNoOffers):
			log.Warn("no offers to record")
			continue
		case err != nil:
			log.WithError(err).Error("snapshot failed")
			continue
		}
		recorded++

		if res.IsAnomaly {
			anomalies++
			log.WithFields(logrus.Fields{
				"drop_percent": res.DropPercent,
				"deal_score":   res.DealScore,
			}).Warn(res.Explanation)
		}
	}

	logger.WithFields(logrus.Fields{
		"routes":    len(routes),
		"recorded":  recorded,
		"anomalies": anomalies,
	}).Info("collection finished")
}
