package agent

import (
	"github.com/reefbound/diveagent/src/aisdk"
)

// ToToolDef converts a Tool to its gateway definition.
func ToToolDef(tool Tool) *aisdk.ToolDef {
	return &aisdk.ToolDef{
		Name:        tool.GetName(),
		Description: tool.GetDescription(),
		InputSchema: tool.GetParameters(),
	}
}

// ToToolDefs converts a slice of Tools to gateway definitions.
func ToToolDefs(tools []Tool) []*aisdk.ToolDef {
	defs := make([]*aisdk.ToolDef, len(tools))
	for i, tool := range tools {
		defs[i] = ToToolDef(tool)
	}
	return defs
}
