package models

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// GlobalScope is the caller name used for code outside any function.
const GlobalScope = "global"

// Location identifies where an entity is declared. Lines and columns are 1-based.
type Location struct {
	File      string `json:"file" toon:"file"`
	StartLine uint32 `json:"startLine" toon:"startLine"`
	EndLine   uint32 `json:"endLine" toon:"endLine"`
	Column    uint32 `json:"column" toon:"column"`
}

// FunctionKind distinguishes how a function was declared.
type FunctionKind string

const (
	FunctionDeclaration FunctionKind = "function"
	FunctionArrow       FunctionKind = "arrow"
	FunctionMethod      FunctionKind = "method"
	FunctionExpression  FunctionKind = "expression"
)

// FunctionEntity is a named function, arrow function or class method.
// Params holds parameter names in order. Destructured parameters contribute
// every identifier they bind, so `({ a: renamed, b = 2, ...rest })` yields
// renamed, b and rest.
type FunctionEntity struct {
	ID          string       `json:"id" toon:"id"`
	Name        string       `json:"name" toon:"name"`
	Params      []string     `json:"params" toon:"params"`
	Location    Location     `json:"location" toon:"location"`
	Complexity  int          `json:"complexity" toon:"complexity"`
	IsAsync     bool         `json:"isAsync" toon:"isAsync"`
	IsComponent bool         `json:"isComponent,omitempty" toon:"isComponent,omitempty"`
	Kind        FunctionKind `json:"kind" toon:"kind"`
	File        string       `json:"file" toon:"file"`
}

// VariableKind is the declaration keyword of a variable.
type VariableKind string

const (
	VariableConst    VariableKind = "const"
	VariableLet      VariableKind = "let"
	VariableVar      VariableKind = "var"
	VariableProperty VariableKind = "property"
)

// VariableEntity is a declared binding or a class property.
type VariableEntity struct {
	Name     string       `json:"name" toon:"name"`
	Kind     VariableKind `json:"kind" toon:"kind"`
	File     string       `json:"file" toon:"file"`
	Line     uint32       `json:"line" toon:"line"`
	IsState  bool         `json:"isState" toon:"isState"`
	TypeNote string       `json:"type,omitempty" toon:"type,omitempty"`
}

// ImportEntity is one local binding introduced by an import or require.
type ImportEntity struct {
	Name        string `json:"name" toon:"name"`
	Source      string `json:"source" toon:"source"`
	File        string `json:"file" toon:"file"`
	IsLocal     bool   `json:"isLocal" toon:"isLocal"`
	IsDefault   bool   `json:"isDefault,omitempty" toon:"isDefault,omitempty"`
	IsNamespace bool   `json:"isNamespace,omitempty" toon:"isNamespace,omitempty"`
	IsRequire   bool   `json:"isRequire,omitempty" toon:"isRequire,omitempty"`
}

// EdgeKind describes the syntax that produced a dependency edge.
type EdgeKind string

const (
	EdgeCall   EdgeKind = "call"
	EdgeMethod EdgeKind = "method"
	EdgeJSX    EdgeKind = "jsx"
	EdgeNew    EdgeKind = "new"
)

// DependencyEdge is a reference from a caller scope to a named callee.
// IsCrossFile holds exactly when CalleeFile differs from File because the
// callee resolved to a declaration in another file.
type DependencyEdge struct {
	Caller      string   `json:"caller" toon:"caller"`
	Callee      string   `json:"callee" toon:"callee"`
	File        string   `json:"file" toon:"file"`
	CalleeFile  string   `json:"calleeFile" toon:"calleeFile"`
	IsCrossFile bool     `json:"isCrossFile" toon:"isCrossFile"`
	Kind        EdgeKind `json:"kind" toon:"kind"`
	Line        uint32   `json:"line" toon:"line"`
}

// ClassEntity is a class declaration with its qualified members.
type ClassEntity struct {
	Name        string           `json:"name" toon:"name"`
	SuperClass  string           `json:"superClass,omitempty" toon:"superClass,omitempty"`
	Methods     []FunctionEntity `json:"methods" toon:"methods"`
	Properties  []VariableEntity `json:"properties" toon:"properties"`
	File        string           `json:"file" toon:"file"`
	Location    Location         `json:"location" toon:"location"`
	IsComponent bool             `json:"isComponent,omitempty" toon:"isComponent,omitempty"`
}

// ComponentKind tells function components from class components.
type ComponentKind string

const (
	ComponentFunction ComponentKind = "function"
	ComponentClass    ComponentKind = "class"
)

// ComponentEntity is a heuristically detected UI component.
type ComponentEntity struct {
	Name    string           `json:"name" toon:"name"`
	Kind    ComponentKind    `json:"kind" toon:"kind"`
	File    string           `json:"file" toon:"file"`
	Props   []string         `json:"props" toon:"props"`
	Hooks   []string         `json:"hooks" toon:"hooks"`
	State   []VariableEntity `json:"state" toon:"state"`
	Effects [][]string       `json:"effects" toon:"effects"`
}

// EntityID derives a stable identifier from where an entity is declared.
func EntityID(file, name string, line uint32) string {
	key := file + "\x00" + name + "\x00" + strconv.FormatUint(uint64(line), 10)
	return strconv.FormatUint(xxhash.Sum64String(key), 16)
}
