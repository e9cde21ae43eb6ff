package scan

import (
	"fmt"
	"strings"

	"github.com/wifibear/wifiaudit/pkg/wifi"
)

// FindBySSID returns the first access point whose ESSID equals ssid, falling
// back to a case-insensitive match.
func FindBySSID(aps []wifi.AccessPoint, ssid string) (wifi.AccessPoint, bool) {
	for _, ap := range aps {
		if ap.ESSID == ssid {
			return ap, true
		}
	}
	for _, ap := range aps {
		if strings.EqualFold(ap.ESSID, ssid) {
			return ap, true
		}
	}
	return wifi.AccessPoint{}, false
}

// Labels returns one selectable line per access point.
func Labels(aps []wifi.AccessPoint) []string {
	labels := make([]string, len(aps))
	for i, ap := range aps {
		labels[i] = fmt.Sprintf("BSSID: %s, Channel: %s, ESSID: %s", ap.BSSID, ap.Channel, ap.ESSID)
	}
	return labels
}

// FormatTable creates a formatted table of access points for display.
func FormatTable(aps []wifi.AccessPoint) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  %-4s %-24s %-19s %4s %-10s %5s %s\n",
		"#", "ESSID", "BSSID", "CH", "PRIVACY", "PWR", "BEACONS")
	fmt.Fprintf(&sb, "  %-4s %-24s %-19s %4s %-10s %5s %s\n",
		"─", "─────", "─────", "──", "───────", "───", "───────")

	for i, ap := range aps {
		essid := ap.ESSID
		if len(essid) > 22 {
			essid = essid[:22] + ".."
		}
		fmt.Fprintf(&sb, "  %-4d %-24s %-19s %4s %-10s %5s %s\n",
			i+1, essid, ap.BSSID, ap.Channel, ap.Privacy, ap.Power, ap.Beacons)
	}

	return sb.String()
}
