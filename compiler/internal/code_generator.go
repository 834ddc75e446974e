package internal

import (
	"fmt"
	"strings"

	"compiler_for_6502a/assembler"
	"compiler_for_6502a/logging"
	"compiler_for_6502a/util"
)

// StaticEntry is the slot of one variable, Temp is the placeholder written into the code
// until backpatching resolves it to Address.
type StaticEntry struct {
	Temp    string
	Name    string
	Scope   int
	Address int
}

// HeapEntry is one interned string, Address points at its first character.
type HeapEntry struct {
	Address int
	Text    string
}

// JumpEntry is one relative branch, Operand is the image cell holding its offset.
type JumpEntry struct {
	Temp     string
	Operand  int
	Target   int
	Distance int
}

// CodeImage is the output of one generation. Text holds the code up to and including the
// final BRK, the static region follows it and the heap grows down from the top.
type CodeImage struct {
	Cells    []string
	TextSize int
	Static   []*StaticEntry
	Heap     []*HeapEntry
	Jumps    []*JumpEntry
}

type operand struct {
	kind  OperandKind
	value string
	tp    VarType
}

type staticKey struct {
	name  string
	scope int
}

const (
	scratchName  = "$scratch"
	heapSeed     = assembler.ImageSize - 1
	trueLiteral  = "true"
	falseLiteral = "false"
)

// CodeGenerator emits the image of an analyzed program. A fatal error stops all further
// emission, the traversal still unwinds normally.
type CodeGenerator struct {
	templates *BlockTemplates
	logger    *logging.Logger

	ast    *Tree
	scopes *ScopeTable

	cells      [assembler.ImageSize]string
	textCursor int
	heapCursor int

	static      []*StaticEntry
	staticIndex map[staticKey]*StaticEntry
	heap        []*HeapEntry
	heapIndex   map[string]*HeapEntry
	jumps       []*JumpEntry

	scopeCounter int
	scopeStack   []int
	loopStarts   []int
	openJumps    []*JumpEntry

	truePointer  string
	falsePointer string
	scratch      *StaticEntry

	generating bool
	errorCount int
	err        error
}

func NewCodeGenerator(templates *BlockTemplates, logger *logging.Logger) *CodeGenerator {
	gen := &CodeGenerator{templates: templates, logger: logger}
	gen.Reset()
	return gen
}

func (gen *CodeGenerator) Reset() {
	for i := range gen.cells {
		gen.cells[i] = "00"
	}
	gen.ast, gen.scopes = nil, nil
	gen.textCursor, gen.heapCursor = 0, heapSeed
	gen.static, gen.staticIndex = nil, map[staticKey]*StaticEntry{}
	gen.heap, gen.heapIndex = nil, map[string]*HeapEntry{}
	gen.jumps = nil
	gen.scopeCounter, gen.scopeStack = 0, nil
	gen.loopStarts, gen.openJumps = nil, nil
	gen.truePointer, gen.falsePointer, gen.scratch = "", "", nil
	gen.generating, gen.errorCount, gen.err = true, 0, nil
}

func (gen *CodeGenerator) ErrorCount() int {
	return gen.errorCount
}

// Generate emits ast into a fresh image. Once a generation failed, calling Generate again
// returns the same partial image and error without logging anything until Reset is called.
func (gen *CodeGenerator) Generate(ast *Tree, scopes *ScopeTable) (*CodeImage, error) {
	if gen.err != nil {
		return gen.snapshot(), gen.err
	}
	gen.Reset()
	gen.ast, gen.scopes = ast, scopes
	gen.logger.Info("generating code")

	gen.truePointer = util.FormatByte(gen.appendHeap(trueLiteral))
	gen.falsePointer = util.FormatByte(gen.appendHeap(falseLiteral))
	gen.scratch = gen.appendStack(scratchName, noNode)
	if ast.Root() != noNode {
		gen.generate(ast.Root())
	}
	gen.emitOp(assembler.Break)
	gen.backpatch()
	if gen.err != nil {
		return gen.snapshot(), gen.err
	}
	gen.logger.Info("code generation completed, %d code bytes, %d static bytes, %d heap bytes",
		gen.textCursor, len(gen.static), heapSeed-gen.heapCursor)
	return gen.snapshot(), nil
}

func (gen *CodeGenerator) snapshot() *CodeImage {
	cells := make([]string, len(gen.cells))
	copy(cells, gen.cells[:])
	return &CodeImage{Cells: cells, TextSize: gen.textCursor, Static: gen.static, Heap: gen.heap, Jumps: gen.jumps}
}

func (gen *CodeGenerator) currentScope() int {
	if len(gen.scopeStack) == 0 {
		return noNode
	}
	return gen.scopeStack[len(gen.scopeStack)-1]
}

func (gen *CodeGenerator) generate(id int) {
	if !gen.generating {
		return
	}
	node := gen.ast.Node(id)
	if node.Name == BlockProduction && !node.IsTerminal() {
		gen.scopeStack = append(gen.scopeStack, gen.scopeCounter)
		gen.scopeCounter++
		for _, child := range node.Children {
			gen.generate(child)
		}
		gen.scopeStack = gen.scopeStack[:len(gen.scopeStack)-1]
		return
	}
	template, ok := gen.templates.Lookup(node.Name)
	if !ok {
		gen.fail(InternalCodeGenError, "no block template for %s", node.Name)
		return
	}
	gen.logger.Debug("production", logging.F("name", node.Name), logging.F("line", node.Loc.Line), logging.F("col", node.Loc.Col))
	if template.enter != nil {
		template.enter(gen, id)
	}
	handled := map[int]bool{}
	if template.First != nil {
		handled[template.First.Child] = true
		gen.allocate(template.Register, template.First.Action, node.Children[template.First.Child])
	}
	if template.Final != nil {
		handled[template.Final.Child] = true
	}
	for i, child := range node.Children {
		if !handled[i] && !gen.ast.Node(child).IsTerminal() {
			gen.generate(child)
		}
	}
	if template.Final != nil {
		gen.allocate(template.Register, template.Final.Action, node.Children[template.Final.Child])
	}
	if template.finish != nil {
		template.finish(gen, id)
	}
}

func (gen *CodeGenerator) allocate(register Register, action Action, id int) {
	if !gen.generating {
		return
	}
	op, ok := gen.operandOf(id)
	if !ok {
		return
	}
	switch register {
	case Accumulator:
		gen.generateAccumulatorCode(action, op)
	case XRegister:
		gen.generateXRegisterCode(action, op)
	case YRegister:
		gen.generateYRegisterCode(action, op)
	}
}

// operandOf classifies an expression node, emitting the code of operators on the way.
func (gen *CodeGenerator) operandOf(id int) (operand, bool) {
	node := gen.ast.Node(id)
	if len(node.Children) > 0 {
		return gen.generateOperatorCode(id)
	}
	switch node.Token.Type() {
	case DigitTP:
		return operand{kind: ConstantOperand, value: "0" + node.Name, tp: IntType}, true
	case BoolValTP:
		if node.Name == trueLiteral {
			return operand{kind: ConstantOperand, value: gen.truePointer, tp: BooleanType}, true
		}
		return operand{kind: ConstantOperand, value: gen.falsePointer, tp: BooleanType}, true
	case QuoteTP:
		pointer := gen.appendHeap(node.Name)
		return operand{kind: ConstantOperand, value: util.FormatByte(pointer), tp: StringType}, gen.generating
	case IdTP:
		info, scope, ok := gen.scopes.ResolveAt(gen.currentScope(), node.Name, node.Loc)
		if !ok {
			gen.fail(InternalCodeGenError, "variable %s at %s has no declaration", node.Name, node.Loc)
			return operand{}, false
		}
		entry := gen.appendStack(node.Name, scope)
		return operand{kind: MemoryOperand, value: entry.Temp, tp: info.Type}, true
	}
	gen.fail(InternalCodeGenError, "cannot generate %s", node.Name)
	return operand{}, false
}

func (gen *CodeGenerator) scratchOperand(tp VarType) operand {
	return operand{kind: MemoryOperand, value: gen.scratch.Temp, tp: tp}
}

func (gen *CodeGenerator) generateAccumulatorCode(action Action, op operand) {
	switch action {
	case LoadAction:
		if op.kind == ConstantOperand {
			gen.emitOp(assembler.LoadAccumulatorConstant, op.value)
		} else {
			gen.emitOp(assembler.LoadAccumulatorMemory, op.value, "00")
		}
	case StoreAction:
		if op.kind != MemoryOperand {
			gen.fail(InternalCodeGenError, "cannot store the accumulator into constant %s", op.value)
			return
		}
		gen.emitOp(assembler.StoreAccumulator, op.value, "00")
	default:
		gen.fail(InternalCodeGenError, "the accumulator does not support %s", action)
	}
}

func (gen *CodeGenerator) generateXRegisterCode(action Action, op operand) {
	switch action {
	case LoadAction:
		if op.kind == ConstantOperand {
			gen.emitOp(assembler.LoadXConstant, op.value)
		} else {
			gen.emitOp(assembler.LoadXMemory, op.value, "00")
		}
	case CompareAction:
		if op.kind == ConstantOperand {
			gen.emitOp(assembler.LoadAccumulatorConstant, op.value)
			gen.emitOp(assembler.StoreAccumulator, gen.scratch.Temp, "00")
			op = gen.scratchOperand(op.tp)
		}
		gen.emitOp(assembler.LoadXConstant, gen.truePointer)
		gen.emitOp(assembler.CompareX, op.value, "00")
		gen.openJumps = append(gen.openJumps, gen.emitBranch(noNode))
	default:
		gen.fail(InternalCodeGenError, "the X register does not support %s", action)
	}
}

func (gen *CodeGenerator) generateYRegisterCode(action Action, op operand) {
	switch action {
	case LoadAction, PrintAction:
		if op.kind == ConstantOperand {
			gen.emitOp(assembler.LoadYConstant, op.value)
		} else {
			gen.emitOp(assembler.LoadYMemory, op.value, "00")
		}
		if action == PrintAction {
			// 01 prints Y as a number, 02 prints the string Y points to
			discriminator := "02"
			if op.tp == IntType {
				discriminator = "01"
			}
			gen.emitOp(assembler.LoadXConstant, discriminator)
		}
	default:
		gen.fail(InternalCodeGenError, "the Y register does not support %s", action)
	}
}

// generateOperatorCode emits an operator and returns the scratch slot holding its result.
func (gen *CodeGenerator) generateOperatorCode(id int) (operand, bool) {
	node := gen.ast.Node(id)
	left, right := node.Children[0], node.Children[1]
	switch node.Name {
	case AdditionOperator:
		rightOp, ok := gen.operandOf(right)
		if !ok {
			return operand{}, false
		}
		leftOp, ok := gen.operandOf(left)
		if !ok {
			return operand{}, false
		}
		gen.generateAccumulatorCode(LoadAction, rightOp)
		gen.emitOp(assembler.StoreAccumulator, gen.scratch.Temp, "00")
		gen.generateAccumulatorCode(LoadAction, leftOp)
		gen.emitOp(assembler.AddWithCarry, gen.scratch.Temp, "00")
		gen.emitOp(assembler.StoreAccumulator, gen.scratch.Temp, "00")
		return gen.scratchOperand(IntType), gen.generating
	case EqualityOperator, InequalityOperator:
		for _, child := range node.Children {
			if name := gen.ast.Node(child).Name; name == EqualityOperator || name == InequalityOperator {
				gen.fail(UnsupportedCodeGenError, "nested boolean expression at %s", node.Loc)
				return operand{}, false
			}
		}
		leftOp, ok := gen.operandOf(left)
		if !ok {
			return operand{}, false
		}
		gen.generateXRegisterCode(LoadAction, leftOp)
		rightOp, ok := gen.operandOf(right)
		if !ok {
			return operand{}, false
		}
		gen.generateAccumulatorCode(LoadAction, rightOp)
		gen.emitOp(assembler.StoreAccumulator, gen.scratch.Temp, "00")
		// A = X == scratch ? true : false, swapped for !=
		unequal, equal := gen.falsePointer, gen.truePointer
		if node.Name == InequalityOperator {
			unequal, equal = equal, unequal
		}
		gen.emitOp(assembler.LoadAccumulatorConstant, unequal)
		gen.emitOp(assembler.CompareX, gen.scratch.Temp, "00")
		gen.emitOp(assembler.BranchNotEqual, util.FormatByte(assembler.LoadAccumulatorConstant.Mode.Width()))
		gen.emitOp(assembler.LoadAccumulatorConstant, equal)
		gen.emitOp(assembler.StoreAccumulator, gen.scratch.Temp, "00")
		return gen.scratchOperand(BooleanType), gen.generating
	}
	gen.fail(InternalCodeGenError, "unknown operator %s", node.Name)
	return operand{}, false
}

// generateDeclarationCode gives every variable a value when it is declared.
func (gen *CodeGenerator) generateDeclarationCode(id int) {
	node := gen.ast.Node(id)
	value := "00"
	switch VarType(gen.ast.Node(node.Children[0]).Name) {
	case BooleanType:
		value = gen.falsePointer
	case StringType:
		value = util.FormatByte(gen.appendHeap(""))
	}
	gen.emitOp(assembler.LoadAccumulatorConstant, value)
	gen.allocate(Accumulator, StoreAction, node.Children[1])
}

func (gen *CodeGenerator) generateSystemCallCode(int) {
	gen.emitOp(assembler.SystemCall)
}

func (gen *CodeGenerator) markLoopStart(int) {
	gen.loopStarts = append(gen.loopStarts, gen.textCursor)
}

// closeLoop jumps back to the condition unconditionally: X is 01 and cell FF always holds
// the 00 closing the first interned string.
func (gen *CodeGenerator) closeLoop(id int) {
	if !gen.generating {
		return
	}
	start := gen.loopStarts[len(gen.loopStarts)-1]
	gen.loopStarts = gen.loopStarts[:len(gen.loopStarts)-1]
	gen.emitOp(assembler.LoadXConstant, "01")
	gen.emitOp(assembler.CompareX, util.FormatByte(heapSeed), "00")
	gen.emitBranch(start)
	gen.closeCondition(id)
}

func (gen *CodeGenerator) closeCondition(int) {
	if !gen.generating || len(gen.openJumps) == 0 {
		return
	}
	jump := gen.openJumps[len(gen.openJumps)-1]
	gen.openJumps = gen.openJumps[:len(gen.openJumps)-1]
	jump.Target = gen.textCursor
}

// emitBranch emits a BNE with a placeholder offset to be resolved against target.
func (gen *CodeGenerator) emitBranch(target int) *JumpEntry {
	jump := &JumpEntry{Temp: fmt.Sprintf("J%d", len(gen.jumps)), Operand: gen.textCursor + 1, Target: target}
	gen.jumps = append(gen.jumps, jump)
	gen.emitOp(assembler.BranchNotEqual, jump.Temp)
	return jump
}

func (gen *CodeGenerator) emitOp(op assembler.OpCode, operands ...string) {
	if len(operands) != op.Mode.Width()-1 {
		gen.fail(InternalCodeGenError, "%s takes %d operand byte(s), got %d", op, op.Mode.Width()-1, len(operands))
		return
	}
	gen.emit(op.Code)
	for _, cell := range operands {
		gen.emit(cell)
	}
}

func (gen *CodeGenerator) emit(cell string) {
	if !gen.generating {
		return
	}
	if gen.textCursor > gen.heapCursor {
		gen.fail(CollisionCodeGenError, "code reached the heap at %s", util.FormatByte(gen.textCursor))
		return
	}
	gen.logger.Debug("emit", logging.F("byte", cell), logging.F("index", util.FormatByte(gen.textCursor)))
	gen.cells[gen.textCursor] = cell
	gen.textCursor++
}

// appendHeap interns text, surrounding quotes stripped, and returns its address. The
// characters are laid out ascending from the address and closed by 00.
func (gen *CodeGenerator) appendHeap(text string) int {
	if strings.HasPrefix(text, `"`) {
		text = strings.TrimSuffix(strings.TrimPrefix(text, `"`), `"`)
	}
	if entry, ok := gen.heapIndex[text]; ok {
		return entry.Address
	}
	gen.writeHeap("00")
	for i := len(text) - 1; i >= 0; i-- {
		gen.writeHeap(util.HexOfChar(text[i]))
	}
	if !gen.generating {
		return 0
	}
	entry := &HeapEntry{Address: gen.heapCursor + 1, Text: text}
	gen.heap = append(gen.heap, entry)
	gen.heapIndex[text] = entry
	gen.logger.Debug("heap", logging.F("text", text), logging.F("index", util.FormatByte(entry.Address)))
	return entry.Address
}

func (gen *CodeGenerator) writeHeap(cell string) {
	if !gen.generating {
		return
	}
	if gen.heapCursor < gen.textCursor {
		gen.fail(CollisionCodeGenError, "heap reached the code at %s", util.FormatByte(gen.heapCursor))
		return
	}
	gen.cells[gen.heapCursor] = cell
	gen.heapCursor--
}

// appendStack returns the static slot of name in scope, creating it on first use.
func (gen *CodeGenerator) appendStack(name string, scope int) *StaticEntry {
	key := staticKey{name: name, scope: scope}
	if entry, ok := gen.staticIndex[key]; ok {
		return entry
	}
	entry := &StaticEntry{Temp: fmt.Sprintf("T%d", len(gen.static)), Name: name, Scope: scope, Address: noNode}
	gen.static = append(gen.static, entry)
	gen.staticIndex[key] = entry
	return entry
}

// backpatch places the static region right after the code and rewrites every placeholder.
func (gen *CodeGenerator) backpatch() {
	if !gen.generating {
		return
	}
	base := gen.textCursor
	if base+len(gen.static)-1 > gen.heapCursor {
		gen.fail(CollisionCodeGenError, "static data from %s to %s overlaps the heap",
			util.FormatByte(base), util.FormatByte(base+len(gen.static)-1))
		return
	}
	addresses := map[string]string{}
	for i, entry := range gen.static {
		entry.Address = base + i
		addresses[entry.Temp] = util.FormatByte(entry.Address)
		gen.logger.Debug("backpatch", logging.F("temp", entry.Temp), logging.F("index", addresses[entry.Temp]))
	}
	for _, jump := range gen.jumps {
		jump.Distance = (jump.Target - (jump.Operand + 1)) & 0xFF
		addresses[jump.Temp] = util.FormatByte(jump.Distance)
		gen.cells[jump.Operand] = addresses[jump.Temp]
		gen.logger.Debug("backpatch", logging.F("temp", jump.Temp), logging.F("distance", addresses[jump.Temp]))
	}
	for i := 0; i < base; i++ {
		if address, ok := addresses[gen.cells[i]]; ok {
			gen.cells[i] = address
		}
		if !util.IsHexByte(gen.cells[i]) {
			gen.fail(InternalCodeGenError, "unresolved cell %s at %s", gen.cells[i], util.FormatByte(i))
			return
		}
	}
}

func (gen *CodeGenerator) fail(kind CodeGenErrorKind, format string, args ...interface{}) {
	if !gen.generating {
		return
	}
	gen.errorCount++
	gen.generating = false
	err := &CodeGenError{Kind: kind, Message: fmt.Sprintf(format, args...)}
	gen.err = err
	gen.logger.Error("%s", err.Error())
}
