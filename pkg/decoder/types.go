package decoder

type Operation uint8

const (
	OpNone Operation = iota

	OpMov
	OpPush
	OpPop
	OpXchg
	OpIn
	OpOut
	OpXlat
	OpLea
	OpLds
	OpLes
	OpLahf
	OpSahf
	OpPushf
	OpPopf

	OpAdd
	OpAdc
	OpInc
	OpAaa
	OpDaa
	OpSub
	OpSbb
	OpDec
	OpNeg
	OpCmp
	OpAas
	OpDas
	OpMul
	OpImul
	OpAam
	OpDiv
	OpIdiv
	OpAad
	OpCbw
	OpCwd

	OpNot
	OpShl
	OpShr
	OpSar
	OpRol
	OpRor
	OpRcl
	OpRcr
	OpAnd
	OpTest
	OpOr
	OpXor

	OpRep
	OpMovs
	OpCmps
	OpScas
	OpLods
	OpStos

	OpCall
	OpJmp
	OpRet
	OpRetf
	OpJe
	OpJl
	OpJle
	OpJb
	OpJbe
	OpJp
	OpJo
	OpJs
	OpJne
	OpJnl
	OpJg
	OpJnb
	OpJa
	OpJnp
	OpJno
	OpJns
	OpLoop
	OpLoopz
	OpLoopnz
	OpJcxz

	OpInt
	OpInt3
	OpInto
	OpIret

	OpClc
	OpCmc
	OpStc
	OpCld
	OpStd
	OpCli
	OpSti
	OpHlt
	OpWait
	OpNop
	OpEsc

	OpLock
	OpSegment

	opCount
)

var mnemonics = [opCount]string{
	OpNone: "",

	OpMov: "mov", OpPush: "push", OpPop: "pop", OpXchg: "xchg", OpIn: "in", OpOut: "out",
	OpXlat: "xlat", OpLea: "lea", OpLds: "lds", OpLes: "les", OpLahf: "lahf", OpSahf: "sahf",
	OpPushf: "pushf", OpPopf: "popf",

	OpAdd: "add", OpAdc: "adc", OpInc: "inc", OpAaa: "aaa", OpDaa: "daa", OpSub: "sub",
	OpSbb: "sbb", OpDec: "dec", OpNeg: "neg", OpCmp: "cmp", OpAas: "aas", OpDas: "das",
	OpMul: "mul", OpImul: "imul", OpAam: "aam", OpDiv: "div", OpIdiv: "idiv", OpAad: "aad",
	OpCbw: "cbw", OpCwd: "cwd",

	OpNot: "not", OpShl: "shl", OpShr: "shr", OpSar: "sar", OpRol: "rol", OpRor: "ror",
	OpRcl: "rcl", OpRcr: "rcr", OpAnd: "and", OpTest: "test", OpOr: "or", OpXor: "xor",

	OpRep: "rep", OpMovs: "movs", OpCmps: "cmps", OpScas: "scas", OpLods: "lods", OpStos: "stos",

	OpCall: "call", OpJmp: "jmp", OpRet: "ret", OpRetf: "retf",
	OpJe: "je", OpJl: "jl", OpJle: "jle", OpJb: "jb", OpJbe: "jbe", OpJp: "jp", OpJo: "jo",
	OpJs: "js", OpJne: "jne", OpJnl: "jnl", OpJg: "jg", OpJnb: "jnb", OpJa: "ja", OpJnp: "jnp",
	OpJno: "jno", OpJns: "jns", OpLoop: "loop", OpLoopz: "loopz", OpLoopnz: "loopnz", OpJcxz: "jcxz",

	OpInt: "int", OpInt3: "int3", OpInto: "into", OpIret: "iret",

	OpClc: "clc", OpCmc: "cmc", OpStc: "stc", OpCld: "cld", OpStd: "std", OpCli: "cli",
	OpSti: "sti", OpHlt: "hlt", OpWait: "wait", OpNop: "nop", OpEsc: "esc",

	OpLock: "lock", OpSegment: "segment",
}

func (op Operation) String() string {
	if op >= opCount {
		return "unknown"
	}

	return mnemonics[op]
}

// IsPrefix reports whether the operation only modifies the instruction that follows it.
func (op Operation) IsPrefix() bool {
	return op == OpLock || op == OpRep || op == OpSegment
}

type RegisterIndex uint8

const (
	RegisterNone RegisterIndex = iota
	RegisterA
	RegisterB
	RegisterC
	RegisterD
	RegisterSP
	RegisterBP
	RegisterSI
	RegisterDI
	RegisterES
	RegisterCS
	RegisterSS
	RegisterDS
	RegisterIP
	RegisterFlags

	RegisterCount
)

// [low, high, word]
var registerNames = [RegisterCount][3]string{
	RegisterNone:  {"", "", ""},
	RegisterA:     {"al", "ah", "ax"},
	RegisterB:     {"bl", "bh", "bx"},
	RegisterC:     {"cl", "ch", "cx"},
	RegisterD:     {"dl", "dh", "dx"},
	RegisterSP:    {"sp", "sp", "sp"},
	RegisterBP:    {"bp", "bp", "bp"},
	RegisterSI:    {"si", "si", "si"},
	RegisterDI:    {"di", "di", "di"},
	RegisterES:    {"es", "es", "es"},
	RegisterCS:    {"cs", "cs", "cs"},
	RegisterSS:    {"ss", "ss", "ss"},
	RegisterDS:    {"ds", "ds", "ds"},
	RegisterIP:    {"ip", "ip", "ip"},
	RegisterFlags: {"flags", "flags", "flags"},
}

func (r RegisterIndex) String() string {
	if r >= RegisterCount {
		return "unknown"
	}

	return registerNames[r][2]
}

// EffectiveAddressBase is the register expression of a memory operand.
// Table 4-10 in the "Instruction reference", indexed by r/m + 1.
type EffectiveAddressBase uint8

const (
	BaseDirect EffectiveAddressBase = iota
	BaseBxSi
	BaseBxDi
	BaseBpSi
	BaseBpDi
	BaseSi
	BaseDi
	BaseBp
	BaseBx
)

var baseEquations = [...]string{
	BaseDirect: "",
	BaseBxSi:   "bx + si",
	BaseBxDi:   "bx + di",
	BaseBpSi:   "bp + si",
	BaseBpDi:   "bp + di",
	BaseSi:     "si",
	BaseDi:     "di",
	BaseBp:     "bp",
	BaseBx:     "bx",
}

var baseTerms = [...][2]RegisterIndex{
	BaseDirect: {RegisterNone, RegisterNone},
	BaseBxSi:   {RegisterB, RegisterSI},
	BaseBxDi:   {RegisterB, RegisterDI},
	BaseBpSi:   {RegisterBP, RegisterSI},
	BaseBpDi:   {RegisterBP, RegisterDI},
	BaseSi:     {RegisterSI, RegisterNone},
	BaseDi:     {RegisterDI, RegisterNone},
	BaseBp:     {RegisterBP, RegisterNone},
	BaseBx:     {RegisterB, RegisterNone},
}

func (b EffectiveAddressBase) String() string {
	return baseEquations[b]
}

// Terms returns the registers that are summed up by the base.
// Unused terms are RegisterNone.
func (b EffectiveAddressBase) Terms() (RegisterIndex, RegisterIndex) {
	terms := baseTerms[b]
	return terms[0], terms[1]
}

// Operand is one of RegisterAccess, EffectiveAddress, Immediate or RelativeImmediate.
// An unused operand slot is nil.
type Operand interface {
	isOperand()
}

// RegisterAccess selects Count bytes of a register starting at byte Offset
// (al = {A, 0, 1}, ah = {A, 1, 1}, ax = {A, 0, 2}).
type RegisterAccess struct {
	Index  RegisterIndex
	Offset uint8
	Count  uint8
}

func (r RegisterAccess) Name() string {
	if r.Index >= RegisterCount {
		return "unknown"
	}

	switch {
	case r.Count == 2:
		return registerNames[r.Index][2]
	case r.Offset == 1:
		return registerNames[r.Index][1]
	default:
		return registerNames[r.Index][0]
	}
}

func (r RegisterAccess) IsWide() bool {
	return r.Count == 2
}

type EffectiveAddress struct {
	Segment      RegisterIndex
	Base         EffectiveAddressBase
	Displacement int16
}

// Immediate holds the value after sign extension, if any was applied.
type Immediate struct {
	Value uint32
}

// RelativeImmediate is an offset from the start of the instruction that carries it.
type RelativeImmediate struct {
	Value int32
}

func (RegisterAccess) isOperand()    {}
func (EffectiveAddress) isOperand()  {}
func (Immediate) isOperand()         {}
func (RelativeImmediate) isOperand() {}

type Flags uint16

const (
	FlagLock Flags = 1 << iota
	FlagRep
	// FlagRepNZ is set together with FlagRep when the z bit of the prefix is 0 (repne/repnz)
	FlagRepNZ
	FlagSegment
	FlagWide
	FlagFar
)

func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

type Instruction struct {
	Address  uint32
	Size     uint32
	Op       Operation
	Flags    Flags
	Operands [3]Operand
}

func (i Instruction) IsPrefix() bool {
	return i.Op.IsPrefix()
}

// Memory returns the first memory operand of the instruction.
func (i Instruction) Memory() (EffectiveAddress, bool) {
	for _, operand := range i.Operands {
		if ea, ok := operand.(EffectiveAddress); ok {
			return ea, true
		}
	}

	return EffectiveAddress{}, false
}
