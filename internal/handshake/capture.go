package handshake

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// ClientHandshake records which 4-way handshake messages were seen for one
// client station.
type ClientHandshake struct {
	Client   string  `json:"client"`
	Messages [4]bool `json:"messages"`
}

// Complete reports whether the captured messages are enough for offline key
// recovery: M2 plus the ANonce from M1 or M3.
func (c *ClientHandshake) Complete() bool {
	return c.Messages[1] && (c.Messages[0] || c.Messages[2])
}

// MessageCount returns how many distinct handshake messages were seen.
func (c *ClientHandshake) MessageCount() int {
	n := 0
	for _, seen := range c.Messages {
		if seen {
			n++
		}
	}
	return n
}

// Summary is what a capture file contains for one BSSID.
type Summary struct {
	Packets     int                         `json:"packets"`
	EAPOLFrames int                         `json:"eapol_frames"`
	Clients     map[string]*ClientHandshake `json:"clients"`
}

// HasCompleteHandshake checks if any client has a complete handshake.
func (s *Summary) HasCompleteHandshake() bool {
	for _, hs := range s.Clients {
		if hs.Complete() {
			return true
		}
	}
	return false
}

// Summarize reads a pcap or pcapng capture and tallies the EAPOL key
// messages exchanged with targetBSSID (all BSSIDs when empty).
func Summarize(capFile, targetBSSID string) (*Summary, error) {
	f, err := os.Open(capFile)
	if err != nil {
		return nil, fmt.Errorf("open cap file: %w", err)
	}
	defer f.Close()

	source, err := openSource(f)
	if err != nil {
		return nil, err
	}

	targetBSSID = strings.ToLower(targetBSSID)
	sum := &Summary{Clients: make(map[string]*ClientHandshake)}

	for {
		data, _, err := source.ReadPacketData()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return sum, fmt.Errorf("read packet: %w", err)
		}
		sum.Packets++

		packet := gopacket.NewPacket(data, source.linkType, gopacket.Lazy)
		sum.add(packet, targetBSSID)
	}

	return sum, nil
}

func (s *Summary) add(packet gopacket.Packet, targetBSSID string) {
	dot11Layer := packet.Layer(layers.LayerTypeDot11)
	if dot11Layer == nil {
		return
	}
	dot11 := dot11Layer.(*layers.Dot11)

	keyLayer := packet.Layer(layers.LayerTypeEAPOLKey)
	if keyLayer == nil {
		return
	}
	key := keyLayer.(*layers.EAPOLKey)

	bssid, client := extractAddresses(dot11)
	if bssid == "" {
		return
	}
	if targetBSSID != "" && bssid != targetBSSID {
		return
	}

	msg := MessageNumber(key)
	if msg == 0 {
		return
	}

	s.EAPOLFrames++
	hs, ok := s.Clients[client]
	if !ok {
		hs = &ClientHandshake{Client: client}
		s.Clients[client] = hs
	}
	hs.Messages[msg-1] = true
}

// MessageNumber classifies a pairwise EAPOL key frame as message 1-4 of the
// 4-way handshake, or 0 when it is not part of one.
func MessageNumber(key *layers.EAPOLKey) int {
	if key.KeyType != layers.EAPOLKeyTypePairwise {
		return 0
	}
	switch {
	case key.KeyACK && !key.KeyMIC:
		return 1
	case key.KeyACK && key.KeyMIC && key.Install:
		return 3
	case !key.KeyACK && key.KeyMIC && !key.Install:
		// M4 carries no nonce; WPA2 also sets Secure on it.
		if key.Secure || allZero(key.Nonce) {
			return 4
		}
		return 2
	}
	return 0
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func extractAddresses(dot11 *layers.Dot11) (bssid, client string) {
	switch {
	case dot11.Flags.ToDS() && !dot11.Flags.FromDS():
		return dot11.Address1.String(), dot11.Address2.String()
	case !dot11.Flags.ToDS() && dot11.Flags.FromDS():
		return dot11.Address2.String(), dot11.Address1.String()
	case !dot11.Flags.ToDS() && !dot11.Flags.FromDS():
		return dot11.Address3.String(), dot11.Address2.String()
	default:
		return "", ""
	}
}

type packetSource struct {
	gopacket.PacketDataSource
	linkType layers.LinkType
}

// openSource accepts both classic pcap (airodump-ng's default) and pcapng.
func openSource(f *os.File) (*packetSource, error) {
	if r, err := pcapgo.NewReader(f); err == nil {
		return &packetSource{PacketDataSource: r, linkType: r.LinkType()}, nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind cap file: %w", err)
	}
	r, err := pcapgo.NewNgReader(f, pcapgo.DefaultNgReaderOptions)
	if err != nil {
		return nil, fmt.Errorf("unrecognized capture format: %w", err)
	}
	return &packetSource{PacketDataSource: r, linkType: r.LinkType()}, nil
}
