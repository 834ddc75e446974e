package assembler

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// Instruction is one decoded instruction of an image.
type Instruction struct {
	Addr     int
	Op       OpCode
	Operands []string
}

func (instruction Instruction) String() string {
	switch instruction.Op.Mode {
	case Immediate:
		return fmt.Sprintf("%s #$%s", instruction.Op.Mnemonic, instruction.Operands[0])
	case Absolute:
		return fmt.Sprintf("%s $%s%s", instruction.Op.Mnemonic, instruction.Operands[1], instruction.Operands[0])
	case Relative:
		return fmt.Sprintf("%s $%s", instruction.Op.Mnemonic, instruction.Operands[0])
	}
	return instruction.Op.Mnemonic
}

// Disassemble decodes the text region of an image, which starts at 0 and ends with the
// first BRK reached in instruction position.
func Disassemble(image []string) ([]Instruction, error) {
	var ret []Instruction
	for addr := 0; addr < len(image); {
		op, exist := LookUpCode(image[addr])
		if !exist {
			return ret, errors.New(fmt.Sprintf("unknown op code %s at %02X", image[addr], addr))
		}
		width := op.Mode.Width()
		if addr+width > len(image) {
			return ret, errors.New(fmt.Sprintf("truncated %s at %02X", op.Mnemonic, addr))
		}
		ret = append(ret, Instruction{Addr: addr, Op: op, Operands: image[addr+1 : addr+width]})
		if op == Break {
			return ret, nil
		}
		addr += width
	}
	return ret, nil
}

// Listing formats instructions as address, raw bytes and mnemonic columns.
func Listing(instructions []Instruction) string {
	bf := bytes.Buffer{}
	for _, instruction := range instructions {
		raw := append([]string{instruction.Op.Code}, instruction.Operands...)
		bf.WriteString(fmt.Sprintf("%02X  %-9s %s\n", instruction.Addr, strings.Join(raw, " "), instruction))
	}
	return bf.String()
}
