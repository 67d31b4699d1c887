package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Path is the learning path snapshot a client reports alongside its changes.
type Path struct {
	Title    string       `json:"title,omitempty"`
	Progress float64      `json:"progress"`
	Modules  []PathModule `json:"modules,omitempty"`
}

// PathModule is an ordered module reference inside a path.
type PathModule struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	Completed bool   `json:"completed"`
}

// UnmarshalJSON accepts either a path object or a bare string, which older
// clients send as the path title.
func (p *Path) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var title string
		if err := json.Unmarshal(data, &title); err != nil {
			return err
		}
		*p = Path{Title: title}
		return nil
	}

	type rawPath Path
	var rp rawPath
	if err := json.Unmarshal(data, &rp); err != nil {
		return err
	}
	*p = Path(rp)
	return nil
}

// Validate checks the progress bounds.
func (p *Path) Validate() error {
	if p.Progress < 0 || p.Progress > 100 {
		return NewValidationError("path.progress", fmt.Sprintf("must be within 0..100, got %v", p.Progress))
	}
	for i, m := range p.Modules {
		if m.ID == "" {
			return NewValidationError(fmt.Sprintf("path.modules[%d].id", i), "must not be empty")
		}
	}
	return nil
}

// MarkModule flags the path module with the given id as completed.
func (p *Path) MarkModule(id string) {
	for i := range p.Modules {
		if p.Modules[i].ID == id {
			p.Modules[i].Completed = true
		}
	}
}

// Clone returns a deep copy of the path.
func (p Path) Clone() Path {
	out := p
	out.Modules = slices.Clone(p.Modules)
	return out
}
