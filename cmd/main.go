package main

import (
	"flag"
	"log"
	"log/slog"
	"tikget/internal/bot"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	loglevel := flag.Int("loglevel", int(slog.LevelInfo), "log level")
	flag.Parse()
	slog.SetLogLoggerLevel(slog.Level(*loglevel))

	b, err := bot.New(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	b.Start()
}
