// Package sensorcsv loads dogm.SensorFrame values from the CSV input
// format: rows of timestamp, kind, ... with kind in {odom, lidar, radar},
// merging rows sharing a timestamp into one frame.
package sensorcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/dogm-go/dogm/internal/dogm"
)

// Loader reads a sequence of dogm.SensorFrame values from an open CSV
// reader. It is not safe for concurrent use.
type Loader struct {
	reader *csv.Reader
}

// NewLoader wraps r as a CSV source. r is read to EOF by Load.
func NewLoader(r io.Reader) *Loader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return &Loader{reader: cr}
}

type frameBuilder struct {
	timestamp float64
	hasOdom   bool
	egoX      float32
	egoY      float32
	egoYaw    float32
	angles    []float32
	ranges    []float32
	radar     []dogm.RadarDetection
}

// Load reads every row, merges rows sharing a timestamp, and returns the
// resulting frames ordered by timestamp ascending.
func (l *Loader) Load() ([]dogm.SensorFrame, error) {
	byTimestamp := make(map[float64]*frameBuilder)
	order := make([]float64, 0)

	lineNo := 0
	for {
		record, err := l.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sensorcsv: read line %d: %w", lineNo+1, err)
		}
		lineNo++

		if len(record) < 2 {
			return nil, fmt.Errorf("sensorcsv: line %d: expected at least timestamp,kind, got %d fields", lineNo, len(record))
		}

		ts, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("sensorcsv: line %d: invalid timestamp %q: %w", lineNo, record[0], err)
		}

		fb, ok := byTimestamp[ts]
		if !ok {
			fb = &frameBuilder{timestamp: ts}
			byTimestamp[ts] = fb
			order = append(order, ts)
		}

		if err := mergeRow(fb, record[1], record[2:], lineNo); err != nil {
			return nil, err
		}
	}

	sort.Float64s(order)

	frames := make([]dogm.SensorFrame, 0, len(order))
	for _, ts := range order {
		fb := byTimestamp[ts]
		frames = append(frames, dogm.SensorFrame{
			Timestamp: secondsToTime(fb.timestamp),
			Lidar:     dogm.LidarScan{Angles: fb.angles, Ranges: fb.ranges},
			Radar:     fb.radar,
			EgoPoseX:  fb.egoX,
			EgoPoseY:  fb.egoY,
			EgoYaw:    fb.egoYaw,
		})
	}
	return frames, nil
}

func mergeRow(fb *frameBuilder, kind string, fields []string, lineNo int) error {
	switch kind {
	case "odom":
		if len(fields) != 3 {
			return fmt.Errorf("sensorcsv: line %d: odom row needs x,y,yaw, got %d fields", lineNo, len(fields))
		}
		x, err := strconv.ParseFloat(fields[0], 32)
		if err != nil {
			return fmt.Errorf("sensorcsv: line %d: invalid odom x %q: %w", lineNo, fields[0], err)
		}
		y, err := strconv.ParseFloat(fields[1], 32)
		if err != nil {
			return fmt.Errorf("sensorcsv: line %d: invalid odom y %q: %w", lineNo, fields[1], err)
		}
		yaw, err := strconv.ParseFloat(fields[2], 32)
		if err != nil {
			return fmt.Errorf("sensorcsv: line %d: invalid odom yaw %q: %w", lineNo, fields[2], err)
		}
		fb.egoX, fb.egoY, fb.egoYaw = float32(x), float32(y), float32(yaw)
		fb.hasOdom = true

	case "lidar":
		if len(fields)%2 != 0 {
			return fmt.Errorf("sensorcsv: line %d: lidar row needs alternating angle,range pairs, got %d fields", lineNo, len(fields))
		}
		for i := 0; i < len(fields); i += 2 {
			angle, err := strconv.ParseFloat(fields[i], 32)
			if err != nil {
				return fmt.Errorf("sensorcsv: line %d: invalid lidar angle %q: %w", lineNo, fields[i], err)
			}
			rng, err := strconv.ParseFloat(fields[i+1], 32)
			if err != nil {
				return fmt.Errorf("sensorcsv: line %d: invalid lidar range %q: %w", lineNo, fields[i+1], err)
			}
			fb.angles = append(fb.angles, float32(angle))
			fb.ranges = append(fb.ranges, float32(rng))
		}

	case "radar":
		if len(fields) != 4 {
			return fmt.Errorf("sensorcsv: line %d: radar row needs x,y,v_r,snr, got %d fields", lineNo, len(fields))
		}
		x, err := strconv.ParseFloat(fields[0], 32)
		if err != nil {
			return fmt.Errorf("sensorcsv: line %d: invalid radar x %q: %w", lineNo, fields[0], err)
		}
		y, err := strconv.ParseFloat(fields[1], 32)
		if err != nil {
			return fmt.Errorf("sensorcsv: line %d: invalid radar y %q: %w", lineNo, fields[1], err)
		}
		vr, err := strconv.ParseFloat(fields[2], 32)
		if err != nil {
			return fmt.Errorf("sensorcsv: line %d: invalid radar v_r %q: %w", lineNo, fields[2], err)
		}
		snr, err := strconv.ParseFloat(fields[3], 32)
		if err != nil {
			return fmt.Errorf("sensorcsv: line %d: invalid radar snr %q: %w", lineNo, fields[3], err)
		}
		fb.radar = append(fb.radar, dogm.RadarDetection{X: float32(x), Y: float32(y), RadialVelocity: float32(vr), SNR: float32(snr)})

	default:
		return fmt.Errorf("sensorcsv: line %d: unknown row kind %q", lineNo, kind)
	}
	return nil
}
