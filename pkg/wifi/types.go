package wifi

import (
	"fmt"
	"strconv"
	"strings"
)

// AccessPoint is one access-point row of an airodump-ng CSV dump. Values are
// kept as the tool printed them (trimmed); the orchestrator only passes them
// back to other tools as literal arguments.
type AccessPoint struct {
	BSSID     string `json:"bssid"`
	FirstSeen string `json:"first_seen,omitempty"`
	LastSeen  string `json:"last_seen,omitempty"`
	Channel   string `json:"channel"`
	Privacy   string `json:"privacy"`
	Power     string `json:"power"`
	Beacons   string `json:"beacons"`
	ESSID     string `json:"essid"`
}

func (ap AccessPoint) String() string {
	return fmt.Sprintf("%s (BSSID: %s, Channel: %s, Security: %s)", ap.ESSID, ap.BSSID, ap.Channel, ap.Privacy)
}

// ChannelNumber returns the numeric channel, or 0 when airodump-ng reported
// something unusable (e.g. "-1" for hopping APs).
func (ap AccessPoint) ChannelNumber() int {
	ch, err := strconv.Atoi(strings.TrimSpace(ap.Channel))
	if err != nil || ch < 0 {
		return 0
	}
	return ch
}

// IsWPA reports whether the privacy column advertises WPA/WPA2/WPA3.
func (ap AccessPoint) IsWPA() bool {
	return strings.Contains(strings.ToUpper(ap.Privacy), "WPA")
}
