package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mesembria/Magtag-Weather-Odin/internal/config"
	"github.com/mesembria/Magtag-Weather-Odin/internal/db"
	"github.com/mesembria/Magtag-Weather-Odin/internal/httpapi"
	"github.com/mesembria/Magtag-Weather-Odin/internal/migrate"
	"github.com/mesembria/Magtag-Weather-Odin/internal/modules/forecast"
	"github.com/mesembria/Magtag-Weather-Odin/internal/modules/forecast/openweather"
	"github.com/mesembria/Magtag-Weather-Odin/internal/modules/forecast/repository"
	"github.com/mesembria/Magtag-Weather-Odin/internal/modules/forecast/service"
	forecastviews "github.com/mesembria/Magtag-Weather-Odin/internal/modules/forecast/views"
	"github.com/mesembria/Magtag-Weather-Odin/internal/mqtt"
	"github.com/mesembria/Magtag-Weather-Odin/internal/schedule"
	"github.com/mesembria/Magtag-Weather-Odin/internal/secrets"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"secretsPath", cfg.SecretsPath,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopicPrefix", cfg.MQTTTopicPrefix,
		"owmBaseURL", cfg.OWMBaseURL,
		"owmUnits", cfg.OWMUnits,
		"displayID", cfg.DisplayID,
		"forecastColumns", cfg.ForecastColumns,
		"forecastStep", cfg.ForecastStep,
	)

	sec, err := secrets.Load(cfg.SecretsPath)
	if err != nil {
		return err
	}

	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if err := migrate.Run(dbConn); err != nil {
		return err
	}

	if err := forecastviews.LoadTemplates(); err != nil {
		return err
	}

	owmClient := openweather.NewClient(sec.Token, cfg.OWMUnits, cfg.OWMTimeout)
	owmClient.SetBaseURL(cfg.OWMBaseURL)

	publisher, err := mqtt.NewPublisher(cfg, slog.Default())
	if err != nil {
		return err
	}

	repo := repository.NewRepository(dbConn)
	svc := service.NewService(repo, owmClient, publisher, slog.Default(),
		sec.Lat, sec.Long, cfg.DisplayID, cfg.ForecastColumns, cfg.ForecastStep, cfg.Retention)

	mux := httpapi.NewMux(dbConn)
	forecast.RegisterFeature(mux, svc, cfg)

	// Initial connect is best-effort; paho keeps retrying in the background.
	connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
	err = publisher.Connect(connectCtx)
	connectCancel()
	if err != nil {
		slog.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
	}

	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	loopCtx, loopCancel := context.WithCancel(ctx)
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		refreshLoop(loopCtx, svc)
	}()
	// Join the loop before the deferred db.Close so a mid-cycle refresh
	// cannot write to a closed database.
	defer func() {
		loopCancel()
		<-loopDone
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("mqtt disconnecting")
	publisher.Disconnect()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// refresher is the service surface the background loop drives.
type refresher interface {
	Refresh(ctx context.Context) error
	LocalNow() time.Time
}

// refreshLoop runs one cycle immediately, then sleeps on the wake calendar:
// every other hour during the day, paused overnight.
func refreshLoop(ctx context.Context, svc refresher) {
	if err := svc.Refresh(ctx); err != nil {
		slog.Error("initial refresh failed", "error", err)
	}

	for {
		local := svc.LocalNow()
		sleep := schedule.SleepDuration(local)
		slog.Info("sleeping until next wake",
			"local_time", local.Format("15:04"),
			"sleep", sleep,
		)

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := svc.Refresh(ctx); err != nil {
			slog.Error("scheduled refresh failed", "error", err)
		}
	}
}
