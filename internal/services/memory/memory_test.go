package memory

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.td.teradata.com/sandbox/mcs8-sim/internal/log"
)

func newTestMemory() *Memory {
	logger := log.New()
	logger.SetLogLevel(log.ERROR)
	logger.SetOutput(ioutil.Discard)
	return New(logger)
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "mem")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, name)
	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMemFormat(t *testing.T) {
	m := newTestMemory()
	path := writeTemp(t, "rom.mem", "C0\n06\n2A\n\n# comment\nFF\n")
	if err := m.Load(path); err != nil {
		t.Fatal(err)
	}
	want := []uint8{0xC0, 0x06, 0x2A, 0xFF}
	for i, w := range want {
		if got := m.Peek(uint16(i)); got != w {
			t.Errorf("byte %d: got %02X want %02X", i, got, w)
		}
	}
	if m.Loaded() != 4 {
		t.Errorf("loaded %d bytes, want 4", m.Loaded())
	}
}

func TestLoadIntelHex(t *testing.T) {
	m := newTestMemory()
	path := writeTemp(t, "rom.hex", ":02000000C006FF\n:020010002A55FF\n:00000001FF\n")
	if err := m.Load(path); err != nil {
		t.Fatal(err)
	}
	if m.Peek(0x0000) != 0xC0 || m.Peek(0x0001) != 0x06 {
		t.Errorf("record at 0: got %02X %02X", m.Peek(0), m.Peek(1))
	}
	if m.Peek(0x0010) != 0x2A || m.Peek(0x0011) != 0x55 {
		t.Errorf("record at 10: got %02X %02X", m.Peek(0x10), m.Peek(0x11))
	}
	if m.Peek(0x0008) != 0x00 {
		t.Errorf("gap should be zero filled, got %02X", m.Peek(8))
	}
}

func TestLoadRawBinary(t *testing.T) {
	m := newTestMemory()
	path := writeTemp(t, "rom.bin", "\x01\x02\x03")
	if err := m.Load(path); err != nil {
		t.Fatal(err)
	}
	if m.Peek(2) != 0x03 {
		t.Errorf("got %02X want 03", m.Peek(2))
	}
}

func TestRomWriteProtection(t *testing.T) {
	m := newTestMemory()
	path := writeTemp(t, "rom.mem", "11\n22\n")
	if err := m.Load(path); err != nil {
		t.Fatal(err)
	}
	m.Write(0x0000, 0xAA)
	if m.Peek(0x0000) != 0x11 {
		t.Errorf("ROM write should be dropped, got %02X", m.Peek(0))
	}
	m.Write(0x0002, 0xAA)
	if m.Peek(0x0002) != 0xAA {
		t.Errorf("RAM write should stick, got %02X", m.Peek(2))
	}
}

func TestBadMemLine(t *testing.T) {
	m := newTestMemory()
	path := writeTemp(t, "rom.mem", "C0\nzz\n")
	if err := m.Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestAddressMask(t *testing.T) {
	m := newTestMemory()
	m.Poke(0x0005, 0x42)
	if m.Read(0x4005) != 0x42 {
		t.Error("addresses should wrap at the 14-bit boundary")
	}
}
