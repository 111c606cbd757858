package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/airsideops/towing-safety-station/compliance"
	"github.com/airsideops/towing-safety-station/ledger"
	"github.com/airsideops/towing-safety-station/loader"
	"github.com/airsideops/towing-safety-station/matcher"
)

func main() {
	dataDir := flag.String("data", "data", "directory holding the CSV exports")
	listenAddr := flag.String("listen", ":8080", "HTTP listen address")
	storePath := flag.String("store", "", "sqlite ledger path (empty disables durability)")
	standSeed := flag.Int64("stand-seed", 42, "seed for the synthetic stand coordinate resolver")
	adsbWindow := flag.Int("adsb-window", matcher.DefaultTimeWindowMinutes, "ADS-B match window in minutes")
	standThreshold := flag.Float64("stand-threshold", matcher.DefaultDistanceThreshold, "stand proximity threshold in degrees")
	flag.Parse()

	ld := loader.New(*dataDir)
	ld.LoadAll()

	m := matcher.New(ld.Flights, ld.Tasks, ld.PositionReports, ld.VehicleFixes,
		matcher.NewRandomStandResolver(*standSeed))
	m.MatchFlightTasks()
	m.MatchFlightADSB(*adsbWindow)
	m.MatchTaskVehicles(*standThreshold)

	var store *ledger.Store
	if *storePath != "" {
		var err error
		store, err = ledger.OpenStore(*storePath)
		if err != nil {
			log.Fatalf("Failed to open ledger store: %v", err)
		}
	}

	platform := compliance.New(store)

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Println("Shutting down gracefully...")
		if store != nil {
			if err := store.Close(); err != nil {
				log.Printf("Error closing ledger store: %v", err)
			}
		}
		os.Exit(0)
	}()

	matcher.SetupHandlers(m)
	compliance.SetupHandlers(platform, func() []any {
		fixes := ld.VehicleFixes
		recs := make([]any, len(fixes))
		for i := range fixes {
			recs[i] = fixes[i]
		}
		return recs
	})

	log.Printf("Server started at http://127.0.0.1%s", *listenAddr)
	if err := http.ListenAndServe(*listenAddr, nil); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
