package device

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fystack/radixium/pkg/logger"
	"github.com/karalabe/usb"
)

// Ledger HID transport. APDUs are wrapped into 64 byte HID reports: every
// report carries the channel id, a payload tag and a sequence index; the
// first report additionally carries the total APDU length.
//
// Report layout: channel(2, big-endian) ‖ tag(1) ‖ sequence(2, big-endian)
// ‖ payload, the first report's payload prefixed with length(2, big-endian).
const (
	ledgerVendorID  = 0x2C97
	ledgerUsagePage = 0xFFA0

	hidChannel    = uint16(0x0101)
	hidTag        = byte(0x05)
	hidReportSize = 64
)

var errHIDReplyHeader = errors.New("device: reply header mismatch")

// HIDTransport is a Transport over a Ledger USB HID handle.
type HIDTransport struct {
	dev usb.Device
}

// OpenHID enumerates Ledger devices and opens the first usable one.
func OpenHID() (*HIDTransport, error) {
	infos, err := usb.Enumerate(ledgerVendorID, 0)
	if err != nil {
		return nil, fmt.Errorf("device: enumerate: %w", err)
	}
	for _, info := range infos {
		if info.UsagePage != ledgerUsagePage && info.Interface != 0 {
			continue
		}
		dev, err := info.Open()
		if err != nil {
			logger.Warn("Failed to open HID device, trying next", "path", info.Path, "error", err)
			continue
		}
		logger.Info("Opened Ledger device", "path", info.Path, "productID", info.ProductID)
		return &HIDTransport{dev: dev}, nil
	}
	return nil, errors.New("device: no Ledger device found")
}

// Exchange writes one APDU and reads back the full reply, reassembling the
// HID report stream on both sides.
func (t *HIDTransport) Exchange(apdu []byte) ([]byte, error) {
	if err := t.write(apdu); err != nil {
		return nil, err
	}
	return t.read()
}

func (t *HIDTransport) write(payload []byte) error {
	// first report carries the total length prefix
	framed := make([]byte, 2+len(payload))
	binary.BigEndian.PutUint16(framed, uint16(len(payload)))
	copy(framed[2:], payload)

	report := make([]byte, hidReportSize)
	for seq := uint16(0); len(framed) > 0; seq++ {
		binary.BigEndian.PutUint16(report, hidChannel)
		report[2] = hidTag
		binary.BigEndian.PutUint16(report[3:], seq)

		n := copy(report[5:], framed)
		framed = framed[n:]
		// pad the tail report with zeros
		for i := 5 + n; i < hidReportSize; i++ {
			report[i] = 0
		}
		if _, err := t.dev.Write(report); err != nil {
			return fmt.Errorf("device: hid write: %w", err)
		}
	}
	return nil
}

func (t *HIDTransport) read() ([]byte, error) {
	report := make([]byte, hidReportSize)

	var (
		reply []byte
		total int
	)
	for seq := uint16(0); ; seq++ {
		if _, err := t.dev.Read(report); err != nil {
			return nil, fmt.Errorf("device: hid read: %w", err)
		}
		if binary.BigEndian.Uint16(report) != hidChannel || report[2] != hidTag {
			return nil, errHIDReplyHeader
		}
		if binary.BigEndian.Uint16(report[3:]) != seq {
			return nil, errHIDReplyHeader
		}

		chunk := report[5:]
		if seq == 0 {
			total = int(binary.BigEndian.Uint16(chunk))
			chunk = chunk[2:]
		}
		reply = append(reply, chunk...)
		if len(reply) >= total {
			return reply[:total], nil
		}
	}
}

func (t *HIDTransport) Close() error {
	return t.dev.Close()
}
