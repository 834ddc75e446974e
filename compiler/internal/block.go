package internal

// Register is the machine register an allocation targets.
type Register int

const (
	Accumulator Register = iota
	XRegister
	YRegister
)

func (register Register) String() string {
	switch register {
	case Accumulator:
		return "A"
	case XRegister:
		return "X"
	case YRegister:
		return "Y"
	}
	return "?"
}

type Action int

const (
	LoadAction Action = iota
	StoreAction
	CompareAction // compare with the true pointer and branch over the body when unequal
	PrintAction   // load Y with the operand and X with the print discriminator
)

func (action Action) String() string {
	switch action {
	case LoadAction:
		return "load"
	case StoreAction:
		return "store"
	case CompareAction:
		return "compare"
	case PrintAction:
		return "print"
	}
	return "?"
}

type OperandKind int

const (
	ConstantOperand OperandKind = iota
	MemoryOperand
)

// AllocationStep runs Action on register for the AST child at Child.
type AllocationStep struct {
	Child  int
	Action Action
}

// BlockTemplate is the code recipe of one statement production. enter runs before the
// first step and finish after the final step.
type BlockTemplate struct {
	Production string
	Register   Register
	First      *AllocationStep
	Final      *AllocationStep
	enter      func(gen *CodeGenerator, id int)
	finish     func(gen *CodeGenerator, id int)
}

// BlockTemplates is immutable after construction.
type BlockTemplates struct {
	templates map[string]*BlockTemplate
}

func NewBlockTemplates(templates []*BlockTemplate) *BlockTemplates {
	ret := &BlockTemplates{templates: map[string]*BlockTemplate{}}
	for _, template := range templates {
		ret.templates[template.Production] = template
	}
	return ret
}

func (templates *BlockTemplates) Lookup(production string) (*BlockTemplate, bool) {
	template, ok := templates.templates[production]
	return template, ok
}

var defaultBlockTemplates = NewBlockTemplates([]*BlockTemplate{
	{
		Production: AssignmentProduction,
		Register:   Accumulator,
		First:      &AllocationStep{Child: 1, Action: LoadAction},
		Final:      &AllocationStep{Child: 0, Action: StoreAction},
	},
	{
		Production: VarDeclProduction,
		Register:   Accumulator,
		finish:     (*CodeGenerator).generateDeclarationCode,
	},
	{
		Production: PrintProduction,
		Register:   YRegister,
		Final:      &AllocationStep{Child: 0, Action: PrintAction},
		finish:     (*CodeGenerator).generateSystemCallCode,
	},
	{
		Production: WhileProduction,
		Register:   XRegister,
		First:      &AllocationStep{Child: 0, Action: CompareAction},
		enter:      (*CodeGenerator).markLoopStart,
		finish:     (*CodeGenerator).closeLoop,
	},
	{
		Production: IfProduction,
		Register:   XRegister,
		First:      &AllocationStep{Child: 0, Action: CompareAction},
		finish:     (*CodeGenerator).closeCondition,
	},
})

// DefaultBlockTemplates returns the code recipes of the source language statements.
func DefaultBlockTemplates() *BlockTemplates {
	return defaultBlockTemplates
}
