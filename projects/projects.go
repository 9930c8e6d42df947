// Package projects reads the production hierarchy (projects, sequences,
// shots) from the launcher backend.
package projects

// Project mirrors the backend's project resource.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
}

// Sequence is a grouping of shots inside a project.
type Sequence struct {
	ID        string                 `json:"id"`
	ProjectID string                 `json:"project_id"`
	Name      string                 `json:"name"`
	Code      string                 `json:"code"`
	Status    string                 `json:"status"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
}

// Shot is a single shot inside a sequence.
type Shot struct {
	ID         string                 `json:"id"`
	ProjectID  string                 `json:"project_id"`
	SequenceID string                 `json:"sequence_id"`
	Name       string                 `json:"name"`
	Code       string                 `json:"code"`
	Status     string                 `json:"status"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}
