package main

import (
	"log/slog"
	"os"

	"timekeeper/internal/app/server"
	"timekeeper/internal/platform/config"
)

func main() {
	level := config.Load().SlogLevel()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := server.Run(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}
