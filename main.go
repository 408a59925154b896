package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"signaltracker/src/bootstrap"
	"signaltracker/src/notify"
	"signaltracker/src/security"
	"signaltracker/src/server"
	"signaltracker/src/tracker"
)

var APP_NAME = os.Getenv("APP_NAME")

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		logger.SetFormatter(&logger.JSONFormatter{})
		return
	}
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	hub := notify.NewHub()
	defer hub.Close()

	engine, err := bootstrap.NewEngine(tracker.WithCloseListener(hub))
	if err != nil {
		logger.WithError(err).Fatal("Failed to build signal engine")
	}

	router := server.NewRouter(engine, hub, security.GetConfig().AdminTokenHash)
	server.StartServer(server.GetConfig(), router)
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
