package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/peachsweeper/internal/app"
	"github.com/vancomm/peachsweeper/internal/config"
	"github.com/vancomm/peachsweeper/migrations"
)

var log = logrus.New()

func setupLogging() error {
	logging, err := config.NewLogging()
	if err != nil {
		return err
	}
	log.SetLevel(logging.Level)

	if config.Development() {
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true, FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	if logging.File != "" {
		hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   logging.File,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Level:      logging.Level,
			Formatter:  &logrus.JSONFormatter{},
		})
		if err != nil {
			return err
		}
		log.AddHook(hook)
	}

	return nil
}

func main() {
	if err := setupLogging(); err != nil {
		log.Fatal("unable to set up logging: ", err)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	log.WithField("development", config.Development()).Info("starting up")

	if err := app.New(log, migrations.FS).Start(ctx); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
	log.Info("server stopped")
}
