// Package export writes filtered earthquake sets to files other tools can
// read.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/rendis/quakemap/internal/engine/storage"
	"github.com/rendis/quakemap/internal/model"
)

const (
	FormatCSV     = "csv"
	FormatGeoJSON = "geojson"
	FormatSQLite  = "sqlite"
)

var csvHeader = []string{"id", "title", "magnitude", "time", "lng", "lat"}

// WriteCSV writes one row per event. Absent magnitudes and coordinates are
// written as empty cells.
func WriteCSV(w io.Writer, quakes []model.Earthquake) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, q := range quakes {
		row := []string{q.ID, q.Title, "", formatTime(q.Time), "", ""}
		if q.Magnitude != nil {
			row[2] = strconv.FormatFloat(*q.Magnitude, 'f', -1, 64)
		}
		if q.Located {
			row[4] = fmt.Sprintf("%.6f", q.Lng())
			row[5] = fmt.Sprintf("%.6f", q.Lat())
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing %s: %w", q.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteGeoJSON writes the located events as a FeatureCollection carrying the
// mag, time and title properties they were loaded from.
func WriteGeoJSON(w io.Writer, quakes []model.Earthquake) error {
	fc := geojson.NewFeatureCollection()
	for _, q := range quakes {
		if !q.Located {
			continue
		}
		f := geojson.NewFeature(q.Point)
		f.ID = q.ID
		f.Properties["title"] = q.Title
		f.Properties["time"] = q.Time
		if q.Magnitude != nil {
			f.Properties["mag"] = *q.Magnitude
		} else {
			f.Properties["mag"] = nil
		}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling features: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteSQLite appends the events to the snapshot database at path under sel.
// It returns the number of rows stored.
func WriteSQLite(path string, sel model.Selection, quakes []model.Earthquake) (int, error) {
	store, err := storage.NewStore(path)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	return store.InsertBatch(sel, quakes)
}

// SnapshotStats reports how many events the snapshot database at path holds
// for sel and in total. Re-exporting a selection skips events it already
// holds, so these can differ from what the last write inserted.
func SnapshotStats(path string, sel model.Selection) (stored, total int, err error) {
	store, err := storage.NewStore(path)
	if err != nil {
		return 0, 0, err
	}
	defer store.Close()

	quakes, err := store.Earthquakes(sel)
	if err != nil {
		return 0, 0, err
	}
	total, err = store.Count()
	if err != nil {
		return 0, 0, err
	}
	return len(quakes), total, nil
}

// ToFile writes quakes to path in the given format and returns the number of
// records written.
func ToFile(path, format string, sel model.Selection, quakes []model.Earthquake) (int, error) {
	switch format {
	case FormatSQLite:
		return WriteSQLite(path, sel, quakes)
	case FormatCSV, FormatGeoJSON:
	default:
		return 0, fmt.Errorf("unsupported format: %s (csv, geojson or sqlite)", format)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()

	n := len(quakes)
	if format == FormatCSV {
		err = WriteCSV(f, quakes)
	} else {
		n = countLocated(quakes)
		err = WriteGeoJSON(f, quakes)
	}
	if err != nil {
		return 0, err
	}
	return n, f.Close()
}

// DefaultFileName names an export of sel, e.g. quakemap_CHL.csv.
func DefaultFileName(sel model.Selection, format string) string {
	ext := format
	if format == FormatSQLite {
		ext = "db"
	}
	return "quakemap_" + fileSafe(sel.Key()) + "." + ext
}

func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return '_'
	}, s)
}

func countLocated(quakes []model.Earthquake) int {
	n := 0
	for _, q := range quakes {
		if q.Located {
			n++
		}
	}
	return n
}

func formatTime(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
