package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"

	"stepctl/host/monitor"
	"stepctl/host/serial"
)

var (
	device   = flag.String("device", "", "Serial device path (default: first USB serial port)")
	baud     = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	list     = flag.Bool("list", false, "List serial ports and exit")
	httpAddr = flag.String("http", "127.0.0.1:8502", "HTTP/websocket listen address (empty = off)")
	verbose  = flag.Bool("verbose", false, "Log unparsed telemetry lines")
	send     = flag.String("send", "", "Console command to send once connected, e.g. x.move:1000")

	influxURL    = flag.String("influx", "", "InfluxDB server URL (empty = off)")
	influxOrg    = flag.String("influx_org", "stepctl", "InfluxDB organization")
	influxBucket = flag.String("influx_bucket", "telemetry", "InfluxDB bucket")
)

var errStreamEnded = errors.New("telemetry stream ended")

func main() {
	flag.Parse()

	if *list {
		ports, err := serial.ListPorts()
		if err != nil {
			log.Fatal(err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	if *device == "" {
		p, err := serial.FindPort()
		if err != nil {
			log.Fatal(err)
		}
		*device = p
	}

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	port, err := serial.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("reading telemetry from %s", *device)

	if *send != "" {
		if _, err := port.Write([]byte(*send + "\r\n")); err != nil {
			log.Fatal(err)
		}
	}

	tracker := monitor.NewTracker()
	hub := monitor.NewHub(tracker)
	sinks := []monitor.Sink{tracker, hub, monitor.SinkFunc(logMessage)}

	if *influxURL != "" {
		sink, closeInflux := monitor.DialInflux(*influxURL, os.Getenv("INFLUX_TOKEN"), *influxOrg, *influxBucket)
		defer closeInflux()
		sinks = append(sinks, sink)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reader := monitor.NewReader(port, sinks...)
	reader.Verbose = *verbose

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Wait for context to be canceled, then close the port to
		// unblock the reader.
		<-gctx.Done()
		return port.Close()
	})
	g.Go(func() error {
		if err := reader.Run(gctx); err != nil {
			return err
		}
		return errStreamEnded
	})
	if *httpAddr != "" {
		g.Go(func() error {
			log.Printf("serving on http://%s/api/axes", *httpAddr)
			return monitor.NewServer(tracker, hub).ListenAndServe(gctx, *httpAddr)
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}

func logMessage(msg monitor.Message) {
	switch msg.Type {
	case monitor.TypeStop:
		log.Printf("%s stopped at %d", msg.Axis, msg.Position)
	case monitor.TypeWarning:
		log.Printf("%s %s: target %d, position %d", msg.Axis, msg.Kind, msg.Target, msg.Position)
	}
}
