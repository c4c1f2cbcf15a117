package decoder

// Common pattern
//
// |  op  | reg/mem with reg | immediate to reg/mem | immediate to accumulator |
// ---------------------------------------------------------------------------
// | ADD  | 000000           | 100000 + 000         | 0000010                  |
// | ADC  | 000100           | 100000 + 010         | 0001010                  |
// | SUB  | 001010           | 100000 + 101         | 0010110                  |
// | SBB  | 000110           | 100000 + 011         | 0001110                  |
// | CMP  | 001110           | 100000 + 111         | 0011110                  |
//
// [opcode|d|w] [mod|reg|r/m] [disp-lo?] [disp-hi?]
// [100000|s|w] [mod|pattern|r/m] [disp-lo?] [disp-hi?] [data-lo] [data-hi if s|w = 01]
// [opcode|w] [data-lo] [data-hi?]
func arithmeticFamily(op Operation, regMem string, pattern string, accumulator string) []Format {
	return []Format{
		inst(op, b(regMem), dBit, wBit, modField, regField, rmField),
		inst(op, b("100000"), sBit, wBit, modField, b(pattern), rmField, data, dataIfW),
		inst(op, b(accumulator), wBit, data, dataIfW, impReg(0), impD(1)),
	}
}

// [1111011|w] [mod|pattern|r/m] [disp-lo?] [disp-hi?]
func unary(op Operation, pattern string, fields ...Field) Format {
	return inst(op, append([]Field{b("1111011"), wBit, modField, b(pattern), rmField}, fields...)...)
}

var arithmetic = concat(
	arithmeticFamily(OpAdd, "000000", "000", "0000010"),
	arithmeticFamily(OpAdc, "000100", "010", "0001010"),
	[]Format{
		// INC: Register/memory
		// [1111111|w] [mod|000|r/m] [disp-lo?] [disp-hi?]
		inst(OpInc, b("1111111"), wBit, modField, b("000"), rmField),
		// INC: Register
		// [01000|reg]
		inst(OpInc, b("01000"), regField, impW(1)),

		inst(OpAaa, b("00110111")),
		inst(OpDaa, b("00100111")),
	},
	arithmeticFamily(OpSub, "001010", "101", "0010110"),
	arithmeticFamily(OpSbb, "000110", "011", "0001110"),
	[]Format{
		// DEC: Register/memory
		// [1111111|w] [mod|001|r/m] [disp-lo?] [disp-hi?]
		inst(OpDec, b("1111111"), wBit, modField, b("001"), rmField),
		// DEC: Register
		// [01001|reg]
		inst(OpDec, b("01001"), regField, impW(1)),

		unary(OpNeg, "011"),
	},
	arithmeticFamily(OpCmp, "001110", "111", "0011110"),
	[]Format{
		inst(OpAas, b("00111111")),
		inst(OpDas, b("00101111")),

		unary(OpMul, "100", impS(0)),
		unary(OpImul, "101", impS(1)),
		// [11010100] [00001010]
		inst(OpAam, b("11010100"), b("00001010")),
		unary(OpDiv, "110", impS(0)),
		unary(OpIdiv, "111", impS(1)),
		// [11010101] [00001010]
		inst(OpAad, b("11010101"), b("00001010")),
		inst(OpCbw, b("10011000")),
		inst(OpCwd, b("10011001")),
	},
)
