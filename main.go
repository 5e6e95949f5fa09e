package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/inercaso/memory-scramble/board"
	"github.com/inercaso/memory-scramble/config"
	"github.com/inercaso/memory-scramble/loghandler"
	"github.com/inercaso/memory-scramble/parse"
	"github.com/inercaso/memory-scramble/simulation"
	"github.com/inercaso/memory-scramble/transform"
	"github.com/inercaso/memory-scramble/web"
)

func main() {
	simulate := flag.Bool("simulate", false, "run the random-player simulation instead of serving")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Print("No .env file found; using environment variables.")
	}

	cfg := config.Load()

	handler := loghandler.NewCompactHandler(os.Stderr, loghandler.ParseLevel(cfg.LogLevel))
	slog.SetDefault(slog.New(handler))

	rows, cols, values, err := parse.File(cfg.BoardFile)
	if err != nil {
		log.Fatalf("Failed to load board file: %v", err)
	}
	b, err := board.New(rows, cols, values)
	if err != nil {
		log.Fatalf("Failed to build board: %v", err)
	}
	slog.Info("board loaded", "tag", "main", "file", cfg.BoardFile, "rows", rows, "cols", cols)

	if *simulate {
		if _, err := simulation.Run(context.Background(), cfg.Simulation, b); err != nil {
			log.Fatalf("Simulation failed: %v", err)
		}
		return
	}

	transforms := transform.Defaults()

	hub := web.NewHub(cfg, b, transforms)
	go hub.Run(context.Background())

	mux := http.NewServeMux()
	h := web.NewHandler(cfg, b, transforms)
	h.Routes(mux, hub)

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("memory scramble server listening", "tag", "main", "addr", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
