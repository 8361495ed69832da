package tools

import (
	"encoding/json"
	"fmt"
)

// ToolPrefix namespaces every tool name exposed by this provider.
const ToolPrefix = "redis_cloud_"

// CapabilityDiagnostics tags read-only investigation tools. Every tool this
// provider exposes is diagnostic; nothing here mutates the control plane.
const CapabilityDiagnostics = "diagnostics"

// Parameter describes one accepted tool argument.
type Parameter struct {
	Name        string
	Type        string // JSON-schema type: "string", "integer", ...
	Description string
	Required    bool
}

// Definition describes a named tool: what it does, its capability tag, and
// the arguments it accepts.
type Definition struct {
	Name        string
	Description string
	Capability  string
	Parameters  []Parameter
}

// Schema renders the parameter list as a JSON-schema object.
func (d Definition) Schema() json.RawMessage {
	properties := map[string]any{}
	var required []string
	for _, p := range d.Parameters {
		properties[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		// Only maps of plain strings go in; marshal cannot fail.
		panic(fmt.Sprintf("marshal tool schema for %s: %v", d.Name, err))
	}
	return raw
}

// Definitions returns the fixed list of tools this provider exposes. The list
// depends only on static configuration, never on network state, and is built
// fresh on every call.
func (p *Provider) Definitions() []Definition {
	return []Definition{
		{
			Name:        ToolPrefix + "get_current_account",
			Description: "Get the Redis Cloud account the configured credentials belong to.",
			Capability:  CapabilityDiagnostics,
		},
		{
			Name:        ToolPrefix + "list_subscriptions",
			Description: "List all subscriptions (Pro and Essentials) in the account.",
			Capability:  CapabilityDiagnostics,
		},
		{
			Name:        ToolPrefix + "get_subscription",
			Description: "Get the subscription configured for this Redis instance. Checks both Pro and Essentials plans.",
			Capability:  CapabilityDiagnostics,
		},
		{
			Name:        ToolPrefix + "get_subscription_by_id",
			Description: "Get a subscription by its numeric ID. Checks both Pro and Essentials plans.",
			Capability:  CapabilityDiagnostics,
			Parameters: []Parameter{
				{Name: "subscription_id", Type: "integer", Description: "Subscription ID", Required: true},
			},
		},
		{
			Name:        ToolPrefix + "list_databases",
			Description: "List all databases in the configured subscription.",
			Capability:  CapabilityDiagnostics,
		},
		{
			Name:        ToolPrefix + "get_database",
			Description: "Get the database configured for this Redis instance, by ID or by name.",
			Capability:  CapabilityDiagnostics,
		},
		{
			Name:        ToolPrefix + "get_database_by_name",
			Description: "Find a database in the configured subscription by exact name.",
			Capability:  CapabilityDiagnostics,
			Parameters: []Parameter{
				{Name: "name", Type: "string", Description: "Database name (exact match)", Required: true},
			},
		},
		{
			Name:        ToolPrefix + "list_users",
			Description: "List the users of the Redis Cloud account.",
			Capability:  CapabilityDiagnostics,
		},
		{
			Name:        ToolPrefix + "list_tasks",
			Description: "List recent asynchronous tasks in the account (provisioning, backups, imports).",
			Capability:  CapabilityDiagnostics,
		},
		{
			Name:        ToolPrefix + "get_task",
			Description: "Get the status of an asynchronous task by its ID.",
			Capability:  CapabilityDiagnostics,
			Parameters: []Parameter{
				{Name: "task_id", Type: "string", Description: "Task ID", Required: true},
			},
		},
		{
			Name:        ToolPrefix + "list_cloud_accounts",
			Description: "List the cloud provider accounts linked to the Redis Cloud account.",
			Capability:  CapabilityDiagnostics,
		},
	}
}

// FunctionDefinition is a tool definition in the OpenAI function-calling
// format, for agent runtimes that speak that wire contract.
type FunctionDefinition struct {
	Type     string         `json:"type"`
	Function FunctionSchema `json:"function"`
}

// FunctionSchema describes a function's name, description, and parameters.
type FunctionSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// FunctionDefinitions renders Definitions in the OpenAI function format.
func (p *Provider) FunctionDefinitions() []FunctionDefinition {
	defs := p.Definitions()
	functions := make([]FunctionDefinition, 0, len(defs))
	for _, d := range defs {
		functions = append(functions, FunctionDefinition{
			Type: "function",
			Function: FunctionSchema{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Schema(),
			},
		})
	}
	return functions
}
