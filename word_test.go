package pdp16e

import "testing"

func TestSignedWord(t *testing.T) {
	cases := []struct {
		in   Word
		want int32
	}{
		{0x0000, 0},
		{0x7FFF, 32767},
		{0x8000, -32768},
		{0xFFFF, -1},
	}
	for _, c := range cases {
		if got := SignedWord(c.in); got != c.want {
			t.Errorf("SignedWord(0x%04X) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestSignedByte(t *testing.T) {
	cases := []struct {
		in   Byte
		want int32
	}{
		{0x00, 0},
		{0x7F, 127},
		{0x80, -128},
		{0xFF, -1},
	}
	for _, c := range cases {
		if got := SignedByte(c.in); got != c.want {
			t.Errorf("SignedByte(0x%02X) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestSignExtendByte(t *testing.T) {
	if got := SignExtendByte(0x7F); got != 0x007F {
		t.Errorf("SignExtendByte(0x7F) = 0x%04X, want 0x007F", got)
	}
	if got := SignExtendByte(0x80); got != 0xFF80 {
		t.Errorf("SignExtendByte(0x80) = 0x%04X, want 0xFF80", got)
	}
}

func TestByteAccessors(t *testing.T) {
	w := Word(0x1234)
	if LowByte(w) != 0x34 {
		t.Errorf("LowByte = 0x%02X, want 0x34", LowByte(w))
	}
	if HighByte(w) != 0x12 {
		t.Errorf("HighByte = 0x%02X, want 0x12", HighByte(w))
	}
	if MakeWord(0x12, 0x34) != w {
		t.Errorf("MakeWord(0x12, 0x34) = 0x%04X, want 0x%04X", MakeWord(0x12, 0x34), w)
	}
	if got := ReplaceLowByte(w, 0xFF); got != 0x12FF {
		t.Errorf("ReplaceLowByte = 0x%04X, want 0x12FF", got)
	}
	if got := ReplaceHighByte(w, 0xFF); got != 0xFF34 {
		t.Errorf("ReplaceHighByte = 0x%04X, want 0xFF34", got)
	}
}

func TestSwab(t *testing.T) {
	if got := Swab(0x1234); got != 0x3412 {
		t.Errorf("Swab(0x1234) = 0x%04X, want 0x3412", got)
	}
}

func TestAddSubWordWraparound(t *testing.T) {
	if got := AddWord(0xFFFF, 1); got != 0 {
		t.Errorf("AddWord(0xFFFF, 1) = 0x%04X, want 0", got)
	}
	if got := SubWord(0, 1); got != 0xFFFF {
		t.Errorf("SubWord(0, 1) = 0x%04X, want 0xFFFF", got)
	}
}

func TestIsEven(t *testing.T) {
	if !IsEven(0x1000) {
		t.Error("0x1000 should be even")
	}
	if IsEven(0x1001) {
		t.Error("0x1001 should be odd")
	}
}
