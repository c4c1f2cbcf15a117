package decoder

var stringManipulation = []Format{
	// [1111001|z]
	// z = 1 - repeat while zero (rep, repe, repz)
	// z = 0 - repeat while not zero (repne, repnz)
	inst(OpRep, b("1111001"), zBit),
	// [1010010|w]
	inst(OpMovs, b("1010010"), wBit),
	// [1010011|w]
	inst(OpCmps, b("1010011"), wBit),
	// [1010111|w]
	inst(OpScas, b("1010111"), wBit),
	// [1010110|w]
	inst(OpLods, b("1010110"), wBit),
	// [1010101|w]
	inst(OpStos, b("1010101"), wBit),
}
