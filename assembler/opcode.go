package assembler

import "fmt"

// The 6502a instruction subset targeted by the compiler. Every instruction is one op code
// byte followed by zero, one or two operand bytes depending on its addressing mode.
// Absolute operands are little endian, the high byte is always 00 since the whole
// machine is 256 bytes.

type AddressingMode int

const (
	Implied   AddressingMode = iota // BRK
	Immediate                       // LDA #$01
	Absolute                        // LDA $0040
	Relative                        // BNE $05
)

// Width is the number of bytes an instruction with this addressing mode occupies.
func (mode AddressingMode) Width() int {
	switch mode {
	case Immediate, Relative:
		return 2
	case Absolute:
		return 3
	}
	return 1
}

type OpCode struct {
	Mnemonic string
	Mode     AddressingMode
	Code     string
}

func (op OpCode) String() string {
	return fmt.Sprintf("%s(%s)", op.Mnemonic, op.Code)
}

var (
	LoadAccumulatorConstant = OpCode{Mnemonic: "LDA", Mode: Immediate, Code: "A9"}
	LoadAccumulatorMemory   = OpCode{Mnemonic: "LDA", Mode: Absolute, Code: "AD"}
	StoreAccumulator        = OpCode{Mnemonic: "STA", Mode: Absolute, Code: "8D"}
	AddWithCarry            = OpCode{Mnemonic: "ADC", Mode: Absolute, Code: "6D"}
	LoadXConstant           = OpCode{Mnemonic: "LDX", Mode: Immediate, Code: "A2"}
	LoadXMemory             = OpCode{Mnemonic: "LDX", Mode: Absolute, Code: "AE"}
	LoadYConstant           = OpCode{Mnemonic: "LDY", Mode: Immediate, Code: "A0"}
	LoadYMemory             = OpCode{Mnemonic: "LDY", Mode: Absolute, Code: "AC"}
	NoOperation             = OpCode{Mnemonic: "NOP", Mode: Implied, Code: "EA"}
	Break                   = OpCode{Mnemonic: "BRK", Mode: Implied, Code: "00"}
	CompareX                = OpCode{Mnemonic: "CPX", Mode: Absolute, Code: "EC"}
	BranchNotEqual          = OpCode{Mnemonic: "BNE", Mode: Relative, Code: "D0"}
	Increment               = OpCode{Mnemonic: "INC", Mode: Absolute, Code: "EE"}
	SystemCall              = OpCode{Mnemonic: "SYS", Mode: Implied, Code: "FF"}
)

var opCodes = []OpCode{
	LoadAccumulatorConstant, LoadAccumulatorMemory, StoreAccumulator, AddWithCarry,
	LoadXConstant, LoadXMemory, LoadYConstant, LoadYMemory,
	NoOperation, Break, CompareX, BranchNotEqual, Increment, SystemCall,
}

// opCodeByCode is the mapping from the op code byte to its instruction.
var opCodeByCode = map[string]OpCode{}

// opCodeByMnemonic is the mapping from mnemonic to the instructions sharing it, one per mode.
var opCodeByMnemonic = map[string]map[AddressingMode]OpCode{}

func init() {
	for _, op := range opCodes {
		opCodeByCode[op.Code] = op
		modes, ok := opCodeByMnemonic[op.Mnemonic]
		if !ok {
			modes = map[AddressingMode]OpCode{}
			opCodeByMnemonic[op.Mnemonic] = modes
		}
		modes[op.Mode] = op
	}
}

// LookUpCode returns the instruction encoded by code.
func LookUpCode(code string) (OpCode, bool) {
	op, ok := opCodeByCode[code]
	return op, ok
}

// LookUpMnemonic returns the instruction named mnemonic in the given mode.
func LookUpMnemonic(mnemonic string, mode AddressingMode) (OpCode, bool) {
	modes, ok := opCodeByMnemonic[mnemonic]
	if !ok {
		return OpCode{}, false
	}
	op, ok := modes[mode]
	return op, ok
}
