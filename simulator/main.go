package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
)

type simConfig struct {
	Broker   string
	Prefix   string
	Username string
	Vehicles string
	Interval time.Duration
}

func parseFlags() simConfig {
	var cfg simConfig
	flag.StringVar(&cfg.Broker, "broker", "tcp://localhost:1883", "MQTT broker URL")
	flag.StringVar(&cfg.Prefix, "prefix", "ovms", "topic prefix")
	flag.StringVar(&cfg.Username, "username", "", "username topic segment (empty for prefix/vehicle layout)")
	flag.StringVar(&cfg.Vehicles, "vehicles", "car1", "comma separated vehicle ids")
	flag.DurationVar(&cfg.Interval, "interval", 5*time.Second, "metric publish interval")
	flag.Parse()
	return cfg
}

func (c simConfig) structurePrefix(vehicleID string) string {
	if c.Username == "" {
		return c.Prefix + "/" + vehicleID
	}
	return c.Prefix + "/" + c.Username + "/" + vehicleID
}

func main() {
	cfg := parseFlags()
	ids := strings.Split(cfg.Vehicles, ",")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		mod := NewSimulatedModule(id, cfg.Broker, cfg.structurePrefix(id), cfg.Interval)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := mod.Run(ctx); err != nil {
				log.Printf("%s: %v", mod.VehicleID, err)
			}
		}()
		fmt.Printf("simulating %s under %s\n", id, mod.Prefix)
	}
	wg.Wait()
}
