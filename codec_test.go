package vscope

import (
	"math"
	"testing"
)

func TestCRC8TableLength(t *testing.T) {
	if len(crc8Table) != 256 {
		t.Errorf("len(crc8Table) = %d, want 256", len(crc8Table))
	}
}

func TestCRC8Deterministic(t *testing.T) {
	cases := [][]byte{
		{0x01},
		{0x04},
		{0x03, 0x00, 0x00, 0x00, 0x00, 0xE8, 0x03, 0x00, 0x00},
		{},
	}
	for _, data := range cases {
		crc := crc8(data)
		if got := crc8(data); got != crc {
			t.Errorf("crc8(%v) not stable: %x vs %x", data, crc, got)
		}
	}
}

func TestReadWriteU16(t *testing.T) {
	buf := make([]byte, 2)
	writeU16(buf, 0xBEEF)
	if got := readU16(buf); got != 0xBEEF {
		t.Errorf("readU16 = %x, want BEEF", got)
	}
}

func TestReadWriteU32(t *testing.T) {
	buf := make([]byte, 4)
	writeU32(buf, 0xDEADBEEF)
	if got := readU32(buf); got != 0xDEADBEEF {
		t.Errorf("readU32 = %x, want DEADBEEF", got)
	}
}

func TestReadWriteF32(t *testing.T) {
	buf := make([]byte, 4)
	want := float32(-3.25)
	writeF32(buf, want)
	if got := readF32(buf); got != want {
		t.Errorf("readF32 = %v, want %v", got, want)
	}
	if readU32(buf) != math.Float32bits(want) {
		t.Errorf("writeF32 did not store IEEE-754 bits")
	}
}
