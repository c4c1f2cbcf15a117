package decoder

// Shifts and rotates
// [110100|v|w] [mod|pattern|r/m] [disp-lo?] [disp-hi?]
// v = 0 - the count is 1, v = 1 - the count is in cl
func shift(op Operation, pattern string) Format {
	return inst(op, b("110100"), vBit, wBit, modField, b(pattern), rmField)
}

var logic = concat(
	[]Format{
		// NOT: Invert
		// [1111011|w] [mod|010|r/m] [disp-lo?] [disp-hi?]
		unary(OpNot, "010"),

		shift(OpShl, "100"),
		shift(OpShr, "101"),
		shift(OpSar, "111"),
		shift(OpRol, "000"),
		shift(OpRor, "001"),
		shift(OpRcl, "010"),
		shift(OpRcr, "011"),
	},
	arithmeticFamily(OpAnd, "001000", "100", "0010010"),
	[]Format{
		// TEST: Register/memory and register
		// [1000010|w] [mod|reg|r/m] [disp-lo?] [disp-hi?]
		inst(OpTest, b("1000010"), wBit, modField, regField, rmField),
		// TEST: Immediate data and register/memory
		// [1111011|w] [mod|000|r/m] [disp-lo?] [disp-hi?] [data-lo] [data-hi?]
		unary(OpTest, "000", data, dataIfW),
		// TEST: Immediate data and accumulator
		// [1010100|w] [data-lo] [data-hi?]
		inst(OpTest, b("1010100"), wBit, data, dataIfW, impReg(0), impD(1)),
	},
	arithmeticFamily(OpOr, "000010", "001", "0000110"),
	arithmeticFamily(OpXor, "001100", "110", "0011010"),
)
