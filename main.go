package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"scanner-server/api"
	"scanner-server/command"
	"scanner-server/config"
	"scanner-server/discovery"
	"scanner-server/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (yaml)")
	once := flag.Bool("once", false, "Run a single discovery pass and exit")
	flag.Parse()

	// 1. Load Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize Logger
	if err := logger.Init(cfg.LogDir); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	// 3. Build the command table and prober
	registry := command.Default()
	prober := discovery.NewProber(cfg)

	if *once {
		results := prober.FindScanners()
		if len(results) == 0 {
			fmt.Println("No scanners detected")
			return
		}
		for _, r := range results {
			fmt.Printf("%s\t%s\t%s\n", r.Device, r.Model, r.Dialect)
		}
		return
	}

	// 4. Start WebSocket server
	handler := api.NewHandler(prober, registry)
	http.HandleFunc("/ws", handler.ServeWS)

	fmt.Printf("Server listening on %s\n", cfg.WSAddr)
	if err := http.ListenAndServe(cfg.WSAddr, nil); err != nil {
		log.Fatal("ListenAndServe:", err)
	}
}
