package models

// String methods for custom string types.
// These are required for toon serialization, which uses fmt.Stringer.

func (k FunctionKind) String() string { return string(k) }

func (k VariableKind) String() string { return string(k) }

func (k EdgeKind) String() string { return string(k) }

func (k ComponentKind) String() string { return string(k) }
