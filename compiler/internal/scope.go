package internal

import (
	"fmt"
	"strings"
)

type VarType string

const (
	IntType     VarType = "int"
	StringType  VarType = "string"
	BooleanType VarType = "boolean"
)

// VarInfo is everything the analyzer learned about one declared variable.
type VarInfo struct {
	Name            string
	Type            VarType
	DeclaredAt      Location
	Initializations []Location
	Uses            []Location
}

func (info *VarInfo) Initialized() bool {
	return len(info.Initializations) > 0
}

func (info *VarInfo) Used() bool {
	return len(info.Uses) > 0
}

// Scope holds the variables of one Block. Scopes live in a ScopeTable arena and refer to
// each other by id.
type Scope struct {
	ID       int
	Parent   int
	Children []int
	entries  map[string]*VarInfo
	order    []string
}

// Lookup only looks at this scope.
func (scope *Scope) Lookup(name string) (*VarInfo, bool) {
	info, ok := scope.entries[name]
	return info, ok
}

// Entries returns the variables in declaration order.
func (scope *Scope) Entries() []*VarInfo {
	ret := make([]*VarInfo, 0, len(scope.order))
	for _, name := range scope.order {
		ret = append(ret, scope.entries[name])
	}
	return ret
}

// ScopeTable is the scope tree of one program. Scope ids are handed out in Block pre-order,
// the code generator relies on the same numbering.
type ScopeTable struct {
	scopes  []*Scope
	current int
}

func NewScopeTable() *ScopeTable {
	return &ScopeTable{current: noNode}
}

// Push opens a scope nested in the current one and makes it current.
func (table *ScopeTable) Push() *Scope {
	scope := &Scope{ID: len(table.scopes), Parent: table.current, entries: map[string]*VarInfo{}}
	table.scopes = append(table.scopes, scope)
	if table.current != noNode {
		parent := table.scopes[table.current]
		parent.Children = append(parent.Children, scope.ID)
	}
	table.current = scope.ID
	return scope
}

// Pop makes the parent of the current scope current.
func (table *ScopeTable) Pop() {
	if table.current != noNode {
		table.current = table.scopes[table.current].Parent
	}
}

func (table *ScopeTable) Current() *Scope {
	if table.current == noNode {
		return nil
	}
	return table.scopes[table.current]
}

func (table *ScopeTable) Scope(id int) *Scope {
	return table.scopes[id]
}

func (table *ScopeTable) Len() int {
	return len(table.scopes)
}

// Declare adds name to the current scope. It returns false when the current scope
// already has it, outer scopes may be shadowed.
func (table *ScopeTable) Declare(name string, tp VarType, loc Location) (*VarInfo, bool) {
	scope := table.Current()
	if existing, ok := scope.entries[name]; ok {
		return existing, false
	}
	info := &VarInfo{Name: name, Type: tp, DeclaredAt: loc}
	scope.entries[name] = info
	scope.order = append(scope.order, name)
	return info, true
}

// Resolve looks name up from scope id outwards and returns the variable and the id of
// the scope declaring it.
func (table *ScopeTable) Resolve(id int, name string) (*VarInfo, int, bool) {
	for id != noNode {
		scope := table.scopes[id]
		if info, ok := scope.entries[name]; ok {
			return info, id, true
		}
		id = scope.Parent
	}
	return nil, noNode, false
}

// ResolveAt is Resolve for a read at loc once the whole table is built: declarations made
// after loc are skipped, as they were not visible yet when the read happened.
func (table *ScopeTable) ResolveAt(id int, name string, loc Location) (*VarInfo, int, bool) {
	for id != noNode {
		scope := table.scopes[id]
		if info, ok := scope.entries[name]; ok && !loc.Before(info.DeclaredAt) {
			return info, id, true
		}
		id = scope.Parent
	}
	return nil, noNode, false
}

// String dumps every scope with its variables.
func (table *ScopeTable) String() string {
	bf := strings.Builder{}
	for _, scope := range table.scopes {
		bf.WriteString(fmt.Sprintf("scope %d (parent %d)\n", scope.ID, scope.Parent))
		for _, info := range scope.Entries() {
			bf.WriteString(fmt.Sprintf("  %s %s declared %s initialized %d used %d\n",
				info.Type, info.Name, info.DeclaredAt, len(info.Initializations), len(info.Uses)))
		}
	}
	return bf.String()
}
