package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadCSV reads canonical bar CSV rows:
//
//	time,symbol,open,high,low,close,volume
//
// where time is RFC3339 or RFC3339Nano. A header row ("time,...") is allowed.
// Empty/short rows are skipped; a malformed numeric field is an error.
func LoadCSV(path string) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var bars []Bar
	sawFirst := false

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}

		// Allow a single header row
		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		b, ok, err := parseBarRow(row)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		bars = append(bars, b)
	}

	return bars, nil
}

func parseBarRow(row []string) (Bar, bool, error) {
	// Need at least: time,symbol,open,high,low,close
	if len(row) < 6 {
		return Bar{}, false, nil
	}

	ts := strings.TrimSpace(row[0])
	if ts == "" {
		return Bar{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t2, err2 := time.Parse(time.RFC3339Nano, ts)
		if err2 != nil {
			return Bar{}, false, fmt.Errorf("bad time %q: %w", ts, err)
		}
		t = t2
	}

	sym := strings.TrimSpace(row[1])
	if sym == "" {
		return Bar{}, false, nil
	}

	var px [4]float64
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[2+i]), 64)
		if err != nil {
			return Bar{}, false, fmt.Errorf("bad price %q: %w", row[2+i], err)
		}
		px[i] = v
	}

	var vol float64
	if len(row) > 6 && strings.TrimSpace(row[6]) != "" {
		vol, err = strconv.ParseFloat(strings.TrimSpace(row[6]), 64)
		if err != nil {
			return Bar{}, false, fmt.Errorf("bad volume %q: %w", row[6], err)
		}
	}

	return Bar{
		Symbol: sym,
		Time:   t,
		Open:   px[0],
		High:   px[1],
		Low:    px[2],
		Close:  px[3],
		Volume: vol,
	}, true, nil
}
