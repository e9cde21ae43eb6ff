package session

import (
	"bytes"
	"strconv"
	"testing"
	"time"

	"github.com/wifibear/wifiaudit/internal/config"
	"github.com/wifibear/wifiaudit/internal/iface"
	"github.com/wifibear/wifiaudit/internal/testutil"
	"github.com/wifibear/wifiaudit/ui"
)

const fakeIwconfig = `case "$1" in
'') cat <<'OUT'
lo        no wireless extensions.

wlan0     IEEE 802.11  ESSID:off/any
          Mode:Managed  Access Point: Not-Associated

wlan0mon  IEEE 802.11  Mode:Monitor  Frequency:2.437 GHz
OUT
;;
esac
exit 0`

const fakeAirodump = `prefix=""
while [ $# -gt 0 ]; do
  case "$1" in
    -w) prefix="$2"; shift 2 ;;
    *) shift ;;
  esac
done
case "$prefix" in
*/scan)
cat > "$prefix-01.csv" <<'CSV'
BSSID, First time seen, Last time seen, channel, Speed, Privacy, Cipher, Authentication, Power, # beacons, # IV, LAN IP, ID-length, ESSID, Key
AA:BB:CC:DD:EE:01, 2024-01-01 10:00:00, 2024-01-01 10:00:30,  6,  54, WPA2, CCMP, PSK, -40,       12,        0,   0.  0.  0.  0,   7, HomeNet,
AA:BB:CC:DD:EE:02, 2024-01-01 10:00:01, 2024-01-01 10:00:31, 11, 130, WPA2, CCMP, PSK, -71,        3,        0,   0.  0.  0.  0,   6, Office,
CSV
;;
*) printf 'pcap' > "$prefix-01.cap" ;;
esac
exec sleep 30`

// fakeAircrack reports handshakes when verifying and finds the key when
// cracking.
func fakeAircrack(handshakes int, key string) string {
	crack := "echo 'Passphrase not in dictionary'; exit 1"
	if key != "" {
		crack = "echo '      KEY FOUND! [ " + key + " ]'"
	}
	return `case "$*" in
*/dev/null*) echo '   1  AA:BB:CC:DD:EE:01  HomeNet  WPA (` + strconv.Itoa(handshakes) + ` handshake)'; exit 1 ;;
*) ` + crack + ` ;;
esac`
}

func installFakeSuite(t *testing.T, handshakes int, key string) *testutil.Bin {
	t.Helper()
	bin := testutil.NewBin(t)
	bin.Add("iwconfig", fakeIwconfig)
	bin.Add("airmon-ng", "exit 0")
	bin.Add("airodump-ng", fakeAirodump)
	bin.Add("aireplay-ng", "exit 0")
	bin.Add("aircrack-ng", fakeAircrack(handshakes, key))
	bin.Add("service", "exit 0")
	return bin
}

func testConfig(auto bool) *config.Config {
	cfg := config.DefaultConfig()
	cfg.AutoMode = auto
	cfg.Scan.Timeout = 300 * time.Millisecond
	cfg.Capture.Timeout = 300 * time.Millisecond
	cfg.Capture.Warmup = 0
	cfg.Normalize()
	return cfg
}

type harness struct {
	cfg     *config.Config
	out     *bytes.Buffer
	rep     *ui.Reporter
	sess    *Session
	ctrl    *Controller
	cleanup *Cleanup
}

func newHarness(cfg *config.Config, prompt ui.Prompter) *harness {
	var out bytes.Buffer
	rep := ui.NewReporter(&out, true)
	sess := New()
	ifaces := iface.NewManager()
	return &harness{
		cfg:     cfg,
		out:     &out,
		rep:     rep,
		sess:    sess,
		ctrl:    NewController(cfg, rep, prompt, sess, ifaces),
		cleanup: NewCleanup(sess, ifaces, rep),
	}
}
