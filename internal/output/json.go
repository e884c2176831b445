// # internal/output/json.go
package output

import (
	"encoding/json"

	"github.com/disruptiq/topological-grapher/internal/extract"
)

// JSON renders an extraction record in the exchange format consumed
// by the downstream merge pipeline: nodes, edges and the dynamic
// scope ids, with snake_case metadata fields.
func JSON(res *extract.Result, indent bool) ([]byte, error) {
	// Keep empty collections as [] rather than null.
	if res.Nodes == nil {
		res.Nodes = []extract.Node{}
	}
	if res.Edges == nil {
		res.Edges = []extract.Edge{}
	}
	if res.DynamicScopeIDs == nil {
		res.DynamicScopeIDs = []string{}
	}

	if indent {
		return json.MarshalIndent(res, "", "  ")
	}
	return json.Marshal(res)
}
