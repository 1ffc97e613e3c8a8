package models

// SourceFile is one named unit of source text handed to the engine.
type SourceFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}
