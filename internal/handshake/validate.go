package handshake

import (
	"context"

	"github.com/wifibear/wifiaudit/internal/tools"
)

// Validator checks if a capture file contains a valid handshake.
type Validator interface {
	Name() string
	Validate(ctx context.Context, capFile, bssid string) (bool, error)
}

var (
	_ Validator = (*AircrackValidator)(nil)
	_ Validator = (*PcapValidator)(nil)
)

// AircrackValidator asks aircrack-ng what the capture holds and matches its
// report against a marker.
type AircrackValidator struct {
	aircrack *tools.AircrackNG
	marker   string

	// Output is the last verification report, kept for status payloads.
	Output string
}

func NewAircrackValidator(marker string) *AircrackValidator {
	return &AircrackValidator{
		aircrack: tools.NewAircrackNG(),
		marker:   marker,
	}
}

// Available reports whether aircrack-ng is installed.
func (v *AircrackValidator) Available() bool {
	return v.aircrack.Available()
}

func (v *AircrackValidator) Name() string {
	return "aircrack-ng"
}

func (v *AircrackValidator) Validate(ctx context.Context, capFile, bssid string) (bool, error) {
	out, err := v.aircrack.Verify(ctx, capFile, bssid)
	v.Output = out
	if err != nil {
		return false, err
	}
	return tools.HasHandshake(out, v.marker), nil
}

// PcapValidator reads the capture natively and looks for a usable EAPOL
// exchange.
type PcapValidator struct {
	// Summary is the last capture summary, kept for status payloads.
	Summary *Summary
}

func NewPcapValidator() *PcapValidator {
	return &PcapValidator{}
}

func (v *PcapValidator) Name() string {
	return "gopacket"
}

func (v *PcapValidator) Validate(ctx context.Context, capFile, bssid string) (bool, error) {
	sum, err := Summarize(capFile, bssid)
	v.Summary = sum
	if err != nil {
		return false, err
	}
	return sum.HasCompleteHandshake(), nil
}
