package scan

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/wifibear/wifiaudit/pkg/wifi"
)

// Column layout of the access-point table in an airodump-ng CSV dump.
const (
	colBSSID     = 0
	colFirstSeen = 1
	colLastSeen  = 2
	colChannel   = 3
	colPrivacy   = 5
	colPower     = 8
	colBeacons   = 9
	colESSID     = 13

	minAPFields = 14
)

// ParseScanDump reads an airodump-ng CSV dump and returns its access-point
// rows in file order. Station rows, headers and short rows are skipped. A
// missing or unreadable file yields an empty result and a logged warning.
func ParseScanDump(path string) []wifi.AccessPoint {
	f, err := os.Open(path)
	if err != nil {
		log.Warn("scan dump unavailable", "path", path, "err", err)
		return []wifi.AccessPoint{}
	}
	defer f.Close()

	return ParseScanRecords(f)
}

// ParseScanRecords parses CSV dump content from r.
func ParseScanRecords(r io.Reader) []wifi.AccessPoint {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	aps := []wifi.AccessPoint{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				log.Debug("skipping malformed scan row", "line", parseErr.Line, "err", parseErr.Err)
				continue
			}
			log.Warn("scan dump read failed", "err", err)
			break
		}

		if ap, ok := parseAccessPoint(record); ok {
			aps = append(aps, ap)
		}
	}

	return aps
}

func parseAccessPoint(record []string) (wifi.AccessPoint, bool) {
	if len(record) < minAPFields {
		return wifi.AccessPoint{}, false
	}

	first := field(record, colBSSID)
	if first == "BSSID" || first == "Station MAC" {
		return wifi.AccessPoint{}, false
	}

	essid := field(record, colESSID)
	if first == "" || essid == "" {
		return wifi.AccessPoint{}, false
	}

	return wifi.AccessPoint{
		BSSID:     first,
		FirstSeen: field(record, colFirstSeen),
		LastSeen:  field(record, colLastSeen),
		Channel:   field(record, colChannel),
		Privacy:   field(record, colPrivacy),
		Power:     field(record, colPower),
		Beacons:   field(record, colBeacons),
		ESSID:     essid,
	}, true
}

// field returns the trimmed value at i, or "" for truncated rows.
func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
