package monitor

import (
	"log"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement is the InfluxDB measurement telemetry points are written to
const Measurement = "stepctl.telemetry"

// PointWriter is the subset of the InfluxDB write API the sink uses
type PointWriter interface {
	WritePoint(point *write.Point)
}

// InfluxSink writes every telemetry message as a point tagged with the
// axis, message type and anomaly kind
type InfluxSink struct {
	w PointWriter
}

func NewInfluxSink(w PointWriter) *InfluxSink {
	return &InfluxSink{w: w}
}

func (s *InfluxSink) Publish(msg Message) {
	tags := map[string]string{
		"axis": msg.Axis,
		"type": msg.Type,
	}
	if msg.Kind != "" {
		tags["kind"] = msg.Kind
	}
	fields := map[string]interface{}{
		"position": msg.Position,
		"target":   msg.Target,
	}
	s.w.WritePoint(influxdb2.NewPoint(Measurement, tags, fields, msg.Time))
}

// DialInflux creates a non-blocking InfluxDB writer for org/bucket.
// Write errors are logged. The returned function flushes and closes it.
func DialInflux(serverURL, token, org, bucket string) (*InfluxSink, func()) {
	client := influxdb2.NewClient(serverURL, token)
	writeAPI := client.WriteAPI(org, bucket)

	errorsCh := writeAPI.Errors()
	go func() {
		for err := range errorsCh {
			log.Printf("influx write error: %v", err)
		}
	}()

	return NewInfluxSink(writeAPI), func() {
		writeAPI.Flush()
		client.Close()
	}
}
