package cpu

import "testing"

func TestAluArithmetic(t *testing.T) {
	tests := []struct {
		name  string
		op    ALUOp
		a, b  uint8
		cin   bool
		want  uint8
		carry bool
	}{
		{"add", OpAdd, 5, 3, false, 8, false},
		{"add overflow", OpAdd, 0xFF, 1, false, 0, true},
		{"add ignores carry in", OpAdd, 5, 3, true, 8, false},
		{"adc uses carry in", OpAddCarry, 5, 3, true, 9, false},
		{"adc overflow", OpAddCarry, 0xFF, 0, true, 0, true},
		{"sub", OpSub, 5, 3, false, 2, false},
		{"sub borrow", OpSub, 3, 5, false, 0xFE, true},
		{"sbb uses borrow in", OpSubBorrow, 5, 3, true, 1, false},
		{"cmp is subtract", OpCompare, 3, 5, false, 0xFE, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, carry := Alu(tc.op, tc.a, tc.b, tc.cin)
			if got != tc.want || carry != tc.carry {
				t.Errorf("Alu(%v, %02X, %02X, %v) = %02X,%v want %02X,%v",
					tc.op, tc.a, tc.b, tc.cin, got, carry, tc.want, tc.carry)
			}
		})
	}
}

func TestAluLogicClearsCarry(t *testing.T) {
	for _, op := range []ALUOp{OpAnd, OpXor, OpOr} {
		if _, carry := Alu(op, 0xFF, 0xFF, true); carry {
			t.Errorf("%v should clear carry", op)
		}
	}
	if r, _ := Alu(OpAnd, 0xF0, 0x3C, false); r != 0x30 {
		t.Errorf("and = %02X", r)
	}
	if r, _ := Alu(OpXor, 0xF0, 0x3C, false); r != 0xCC {
		t.Errorf("xor = %02X", r)
	}
	if r, _ := Alu(OpOr, 0xF0, 0x3C, false); r != 0xFC {
		t.Errorf("or = %02X", r)
	}
}

func TestParity(t *testing.T) {
	// even number of one bits
	for v, want := range map[uint8]bool{0x00: true, 0x01: false, 0x03: true, 0x07: false, 0xFF: true} {
		if Parity(v) != want {
			t.Errorf("Parity(%02X) = %v", v, !want)
		}
	}
}
