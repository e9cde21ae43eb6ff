package result

import (
	"encoding/json"
	"time"
)

// CrackResult holds the outcome of a dictionary attack against a capture.
type CrackResult struct {
	BSSID       string    `json:"bssid"`
	ESSID       string    `json:"essid"`
	Key         string    `json:"key,omitempty"`
	Wordlist    string    `json:"wordlist"`
	CaptureFile string    `json:"capture_file"`
	Duration    Duration  `json:"duration"`
	Timestamp   time.Time `json:"timestamp"`
}

// Duration wraps time.Duration for JSON serialization.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (r *CrackResult) Cracked() bool {
	return r.Key != ""
}
