package memory

import (
	"io/ioutil"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.td.teradata.com/sandbox/mcs8-sim/internal/log"
)

// Size is the full 14-bit address space.
const Size = 0x4000

// Memory is the RAM/ROM collaborator. It decodes the latched cycle
// address, drives the data bus during the data-transfer state of fetch
// and read cycles, and accepts data during write cycles. Addresses
// below the ROM boundary are read-only.
type Memory struct {
	data   [Size]uint8
	romTop uint16 // first writable address
	loaded int
	log    *log.CoreLogger

	lastRead  uint16
	lastWrite uint16
}

func New(logger *log.CoreLogger) *Memory {
	return &Memory{log: logger}
}

// Load initializes memory from a program image starting at address 0
// and marks the loaded range read-only. Three formats are recognized
// by extension: .hex (Intel HEX records), .mem (one hex byte per
// line, the original tooling's format), anything else raw binary.
func (m *Memory) Load(filename string) error {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrap(err, "failed to read ROM image")
	}

	var image []uint8
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hex":
		image, err = parseIntelHex(string(bs))
	case ".mem":
		image, err = parseMem(string(bs))
	default:
		image = bs
	}
	if err != nil {
		return errors.Wrapf(err, "failed to parse ROM image %s", filename)
	}
	if len(image) > Size {
		return errors.Errorf("ROM image is %d bytes, address space is %d", len(image), Size)
	}

	copy(m.data[:], image)
	m.romTop = uint16(len(image))
	m.loaded = len(image)
	m.log.Infof("%d byte(s) loaded from %s, ROM top %04X", len(image), filename, m.romTop)
	return nil
}

// SetRomTop overrides the read-only boundary.
func (m *Memory) SetRomTop(top uint16) {
	m.romTop = top & (Size - 1)
}

// Selected reports whether this device decodes the address. The whole
// 14-bit space belongs to memory; the mask models the address decoder
// dropping the cycle tag bits.
func (m *Memory) Selected(addr uint16) bool {
	return addr < Size
}

// Read drives a byte onto the bus.
func (m *Memory) Read(addr uint16) uint8 {
	addr &= Size - 1
	m.lastRead = addr
	return m.data[addr]
}

// Write accepts a byte from the bus. Writes into ROM are dropped with
// a diagnostic, as a real write into a masked ROM chip would be.
func (m *Memory) Write(addr uint16, v uint8) {
	addr &= Size - 1
	if addr < m.romTop {
		m.log.Warnf("write of %02X into ROM at %04X ignored", v, addr)
		return
	}
	m.lastWrite = addr
	m.data[addr] = v
}

// Peek reads without touching the access trackers. Debug only.
func (m *Memory) Peek(addr uint16) uint8 {
	return m.data[addr&(Size-1)]
}

// Poke writes ignoring the ROM boundary. Debug only.
func (m *Memory) Poke(addr uint16, v uint8) {
	m.data[addr&(Size-1)] = v
}

// LastRead and LastWrite report the most recent access addresses for
// the monitor display.
func (m *Memory) LastRead() uint16 {
	return m.lastRead
}
func (m *Memory) LastWrite() uint16 {
	return m.lastWrite
}

// Loaded reports the image size from the last Load.
func (m *Memory) Loaded() int {
	return m.loaded
}

// parseMem reads the one-hex-byte-per-line format.
func parseMem(text string) ([]uint8, error) {
	var image []uint8
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v, err := strconv.ParseUint(line, 16, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", n+1)
		}
		image = append(image, uint8(v))
	}
	return image, nil
}

// parseIntelHex reads type-00 data records until the end-of-file
// record. Gaps are zero filled.
func parseIntelHex(text string) ([]uint8, error) {
	var image []uint8
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, ":") {
			continue
		}
		if len(line) < 11 {
			return nil, errors.Errorf("line %d: truncated record", n+1)
		}
		count, err := strconv.ParseUint(line[1:3], 16, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", n+1)
		}
		addr, err := strconv.ParseUint(line[3:7], 16, 16)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", n+1)
		}
		kind, err := strconv.ParseUint(line[7:9], 16, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", n+1)
		}
		if kind == 0x01 {
			break
		}
		if kind != 0x00 {
			continue
		}
		if len(line) < 9+int(count)*2 {
			return nil, errors.Errorf("line %d: record shorter than its byte count", n+1)
		}
		for i := 0; i < int(count); i++ {
			v, err := strconv.ParseUint(line[9+i*2:11+i*2], 16, 8)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", n+1)
			}
			at := int(addr) + i
			for len(image) <= at {
				image = append(image, 0)
			}
			image[at] = uint8(v)
		}
	}
	return image, nil
}
