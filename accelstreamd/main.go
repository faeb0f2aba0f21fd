// Command accelstreamd samples up to eight LIS3DH accelerometers behind a
// TCA9548A I2C multiplexer and streams them to a single TCP client as CSV
// telemetry lines, accepting runtime commands (START, STOP, EXIT, integer
// range/datarate requests) on the same connection.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/analogarnold/accelstream/pkg/accel"
	"github.com/analogarnold/accelstream/pkg/config"
	"github.com/analogarnold/accelstream/pkg/daq"
	"github.com/analogarnold/accelstream/pkg/server"
)

func main() {
	var (
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		listenFlag = flag.String("listen", "", "Listen address override (e.g., :8080)")
		busFlag    = flag.String("bus", "", "I2C bus name override (e.g., 1 or /dev/i2c-1)")
		mockFlag   = flag.Bool("mock", false, "Use simulated sensors instead of the I2C bus")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Command line overrides
	if *listenFlag != "" {
		cfg.Network.Listen = *listenFlag
	}
	if *busFlag != "" {
		cfg.Bus.Name = *busFlag
	}

	bus, err := openBus(cfg, *mockFlag)
	if err != nil {
		log.Fatalf("Failed to open I2C bus: %v", err)
	}

	array := accel.Scan(bus, cfg.Bus.MuxAddr, cfg.Bus.SensorAddr, cfg.Sampling.Range, cfg.Sampling.Datarate)
	log.Printf("Detected %d sensor(s) on channels %v", array.Count(), array.Detected())

	state := daq.NewState(cfg.Sampling.Datarate)
	queue := daq.NewQueue(cfg.Sampling.Buffer)

	sampler := daq.NewSampler(array, state, queue)
	srv := server.New(cfg.Network.Listen, state, queue)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sampler.Run(ctx) })
	g.Go(func() error { return srv.Run(ctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Shutting down with error: %v", err)
	}
	log.Println("Shutdown complete")
}

// openBus opens the configured hardware bus, or a simulated one with sensors
// on channels 0 and 1 when -mock is set.
func openBus(cfg *config.Config, mock bool) (accel.Bus, error) {
	if mock {
		bus := accel.NewMockBus(cfg.Bus.MuxAddr, cfg.Bus.SensorAddr, 0, 1)
		bus.SetAcceleration(0, 0.01, -0.02, 9.78)
		bus.SetAcceleration(1, 0.05, 0.03, 9.81)
		return bus, nil
	}
	return accel.OpenBus(cfg.Bus.Name)
}
