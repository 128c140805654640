// pkg/registry/schema.go
package registry

// Catalog describes the components a build ships, for tooling and docs.
type Catalog struct {
	Version    string      `json:"version"`
	Components []Component `json:"components"`
}

type Component struct {
	TaskType    string   `json:"taskType"`
	DisplayName string   `json:"displayName"`
	Category    string   `json:"category"` // "matching", "location", "report"
	Description string   `json:"description"`
	ErrorCodes  []string `json:"errorCodes,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}
