package assembler

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"compiler_for_6502a/util"
)

// A small two pass assembler for 6502a listings, producing the same 256 byte image the
// compiler produces. Each line holds at most one instruction:
// * `loop:` declares a label at the current address, it may share the line with an instruction.
// * `LDA #$05`, an immediate operand.
// * `STA $0040` or `STA label`, an absolute operand. Labels used as absolute operands resolve
//   to the label address.
// * `BNE $05` or `BNE label`, a relative operand. Labels resolve to the distance between the
//   end of the branch and the label, wrapping around for backward branches.
// * `BRK`, `SYS`, `NOP`, implied.
// * `DB $41`, a raw data byte.
// Anything after ';' is a comment.

// ImageSize is the size of the whole 6502a memory.
const ImageSize = 256

type Assembler struct {
	line             int
	currentAddr      int
	labelLocationMap map[string]int
	symbolLocations  []symbolLocation
	cells            []string
}

type symbolLocation struct {
	symbol string
	line   int
	addr   int // the operand cell waiting for the symbol
	mode   AddressingMode
}

func CreateAssembler() *Assembler {
	return &Assembler{
		line:             1,
		labelLocationMap: map[string]int{},
	}
}

// Assemble reads a listing and returns the resulting image. Label operands are placeholders
// until the whole listing has been read, then they are resolved in a second pass.
func (asm *Assembler) Assemble(rd io.Reader) ([]string, error) {
	bfReader := bufio.NewReader(rd)
	for {
		line, err := bfReader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if trimmed, ok := asm.trimLine(line); ok {
			if err := asm.transformLine(trimmed); err != nil {
				return nil, err
			}
		}
		if err == io.EOF {
			break
		}
		asm.line++
	}
	if err := asm.updateLabelLocations(); err != nil {
		return nil, err
	}
	image := make([]string, ImageSize)
	for i := range image {
		image[i] = "00"
	}
	copy(image, asm.cells)
	return image, nil
}

// updateLabelLocations rewrites every label operand now that all labels are declared.
func (asm *Assembler) updateLabelLocations() error {
	for _, location := range asm.symbolLocations {
		labelAddr, exist := asm.labelLocationMap[location.symbol]
		if !exist {
			return asm.makeSyntaxErrAtSpecificLine(location.line, fmt.Sprintf("undefined label %s", location.symbol))
		}
		switch location.mode {
		case Relative:
			asm.cells[location.addr] = util.FormatByte(labelAddr - (location.addr + 1))
		default:
			asm.cells[location.addr] = util.FormatByte(labelAddr)
		}
	}
	return nil
}

// trimLine will remove space from line, also remove comments if it has, then return whether
// the line still has other characters.
func (asm *Assembler) trimLine(line []byte) ([]byte, bool) {
	index := bytes.IndexByte(line, ';')
	if index != -1 {
		line = line[:index]
	}
	line = bytes.TrimSpace(line)
	return line, len(line) > 0
}

var labelFormat = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (asm *Assembler) transformLine(line []byte) error {
	if colon := bytes.IndexByte(line, ':'); colon != -1 {
		if err := asm.transformLabel(string(bytes.TrimSpace(line[:colon]))); err != nil {
			return err
		}
		line = bytes.TrimSpace(line[colon+1:])
		if len(line) == 0 {
			return nil
		}
	}
	fields := strings.Fields(string(line))
	mnemonic := strings.ToUpper(fields[0])
	if len(fields) > 2 {
		return asm.makeSyntaxErr(fmt.Sprintf("too many operands near %s", string(line)))
	}
	operand := ""
	if len(fields) == 2 {
		operand = fields[1]
	}
	if mnemonic == "DB" {
		return asm.transformData(operand)
	}
	return asm.transformInstruction(mnemonic, operand)
}

func (asm *Assembler) transformLabel(label string) error {
	if !labelFormat.MatchString(label) {
		return asm.makeSyntaxErr("wrong label format")
	}
	if _, exist := asm.labelLocationMap[label]; exist {
		return asm.makeSyntaxErr("found duplicate label")
	}
	asm.labelLocationMap[label] = asm.currentAddr
	return nil
}

func (asm *Assembler) transformData(operand string) error {
	value, err := util.ParseByte(operand)
	if err != nil {
		return asm.makeSyntaxErr(err.Error())
	}
	return asm.emit(util.FormatByte(value))
}

func (asm *Assembler) transformInstruction(mnemonic, operand string) error {
	mode := asm.operandMode(mnemonic, operand)
	op, exist := LookUpMnemonic(mnemonic, mode)
	if !exist {
		return asm.makeSyntaxErr(fmt.Sprintf("wrong instruction format near %s %s", mnemonic, operand))
	}
	if err := asm.emit(op.Code); err != nil {
		return err
	}
	switch mode {
	case Implied:
		return nil
	case Immediate:
		return asm.transformByteOperand(operand[1:])
	case Relative:
		if labelFormat.MatchString(operand) {
			return asm.transformLabelOperand(operand, mode)
		}
		return asm.transformByteOperand(operand)
	default:
		if labelFormat.MatchString(operand) {
			if err := asm.transformLabelOperand(operand, mode); err != nil {
				return err
			}
			return asm.emit("00")
		}
		return asm.transformAddressOperand(operand)
	}
}

func (asm *Assembler) operandMode(mnemonic, operand string) AddressingMode {
	switch {
	case operand == "":
		return Implied
	case strings.HasPrefix(operand, "#"):
		return Immediate
	case mnemonic == BranchNotEqual.Mnemonic:
		return Relative
	}
	return Absolute
}

func (asm *Assembler) transformByteOperand(operand string) error {
	value, err := util.ParseByte(operand)
	if err != nil {
		return asm.makeSyntaxErr(err.Error())
	}
	return asm.emit(util.FormatByte(value))
}

// transformAddressOperand emits a $hhhh operand low byte first.
func (asm *Assembler) transformAddressOperand(operand string) error {
	operand = strings.TrimPrefix(operand, "$")
	if len(operand) != 4 {
		return asm.makeSyntaxErr(fmt.Sprintf("wrong address format near %s", operand))
	}
	high, err := util.ParseByte(operand[:2])
	if err != nil {
		return asm.makeSyntaxErr(err.Error())
	}
	low, err := util.ParseByte(operand[2:])
	if err != nil {
		return asm.makeSyntaxErr(err.Error())
	}
	if err := asm.emit(util.FormatByte(low)); err != nil {
		return err
	}
	return asm.emit(util.FormatByte(high))
}

// transformLabelOperand puts a placeholder and remembers where it is, labels can be used
// before they are declared.
func (asm *Assembler) transformLabelOperand(label string, mode AddressingMode) error {
	asm.symbolLocations = append(asm.symbolLocations, symbolLocation{
		symbol: label,
		line:   asm.line,
		addr:   asm.currentAddr,
		mode:   mode,
	})
	return asm.emit(label)
}

func (asm *Assembler) emit(cell string) error {
	if asm.currentAddr >= ImageSize {
		return asm.makeSyntaxErr("program does not fit in 256 bytes")
	}
	asm.cells = append(asm.cells, cell)
	asm.currentAddr++
	return nil
}

func (asm *Assembler) makeSyntaxErr(msg string) error {
	return asm.makeSyntaxErrAtSpecificLine(asm.line, msg)
}

func (asm *Assembler) makeSyntaxErrAtSpecificLine(line int, msg string) error {
	return errors.New(fmt.Sprintf("syntax err at line %d: %s", line, msg))
}
