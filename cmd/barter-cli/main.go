// cmd/barter-cli/main.go
package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/barter-backend/internal/cli"
	"github.com/javajoker/barter-backend/pkg/client"
)

func main() {
	godotenv.Load()

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "warn"))
	if err != nil {
		level = logrus.WarnLevel
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(getEnv("BARTER_API_URL", "http://localhost:8080"))
	ui := cli.NewUI(api, bufio.NewReader(os.Stdin), os.Stdout)
	if err := ui.Run(ctx); err != nil {
		logrus.WithError(err).Fatal("Terminal client stopped")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
