package mcpserver

import (
	"encoding/json"
)

const manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"

// Manifest is the registry description (server.json) of the codescope MCP server.
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
}

// Repository contains source repository information.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package describes how a client launches the server.
type Package struct {
	RegistryType     string     `json:"registryType"`
	Identifier       string     `json:"identifier"`
	PackageArguments []Argument `json:"packageArguments,omitempty"`
	Transport        Transport  `json:"transport"`
}

// Argument is a command-line argument passed at launch.
type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// Transport names the wire the server speaks.
type Transport struct {
	Type string `json:"type"`
}

// GenerateManifest renders the server manifest for version.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" {
		version = "0.0.0"
	}

	stdio := Transport{Type: "stdio"}
	launch := []Argument{{Type: "positional", Value: "mcp"}}

	return json.MarshalIndent(Manifest{
		Schema:      manifestSchema,
		Name:        "io.github.panbanda/codescope",
		Description: "JavaScript and TypeScript project analysis: entities, components, cross-file dependencies and complexity",
		Version:     version,
		Repository:  &Repository{URL: "https://github.com/panbanda/codescope", Source: "github"},
		Packages: []Package{
			{RegistryType: "oci", Identifier: "ghcr.io/panbanda/codescope:" + version, PackageArguments: launch, Transport: stdio},
		},
	}, "", "  ")
}
