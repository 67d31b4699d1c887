package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ChangeKind tags a Change variant on the wire.
type ChangeKind string

const (
	ChangeCompleteModule    ChangeKind = "complete_module"
	ChangeSubmitLab         ChangeKind = "submit_lab"
	ChangeCompleteInterview ChangeKind = "complete_interview"
	ChangeSetGoal           ChangeKind = "set_goal"

	// changeCompleteAlias is accepted on decode for older clients.
	changeCompleteAlias ChangeKind = "complete"
)

// Change is one reported unit of client-side progress.
type Change interface {
	Kind() ChangeKind
	Validate() error
}

// CompleteModule reports that the learner finished a module.
type CompleteModule struct {
	ModuleID string
}

func (CompleteModule) Kind() ChangeKind { return ChangeCompleteModule }

func (c CompleteModule) Validate() error {
	if c.ModuleID == "" {
		return NewValidationError("module", "must not be empty")
	}
	return nil
}

// SubmitLab carries code submitted in the coding sandbox.
type SubmitLab struct {
	LabID string
	Code  string
}

func (SubmitLab) Kind() ChangeKind { return ChangeSubmitLab }

func (c SubmitLab) Validate() error {
	if c.Code == "" {
		return NewValidationError("code", "must not be empty")
	}
	return nil
}

// CompleteInterview carries a mock interview score.
type CompleteInterview struct {
	Score float64
}

func (CompleteInterview) Kind() ChangeKind { return ChangeCompleteInterview }

func (c CompleteInterview) Validate() error {
	if c.Score < 0 {
		return NewValidationError("score", "must not be negative")
	}
	return nil
}

// SetGoal records the goal picked during the assessment flow.
type SetGoal struct {
	Goal string
}

func (SetGoal) Kind() ChangeKind { return ChangeSetGoal }

func (c SetGoal) Validate() error {
	if c.Goal == "" {
		return NewValidationError("goal", "must not be empty")
	}
	return nil
}

// UnknownChange preserves a change whose kind this build does not know.
type UnknownChange struct {
	Type string
	Raw  json.RawMessage
}

func (c UnknownChange) Kind() ChangeKind { return ChangeKind(c.Type) }

func (UnknownChange) Validate() error { return nil }

type changeWire struct {
	Type     ChangeKind `json:"type"`
	Module   string     `json:"module,omitempty"`
	ModuleID string     `json:"moduleId,omitempty"`
	Lab      string     `json:"lab,omitempty"`
	Code     string     `json:"code,omitempty"`
	Score    *float64   `json:"score,omitempty"`
	Goal     string     `json:"goal,omitempty"`
}

// DecodeChange decodes one wire object into its concrete variant.
func DecodeChange(data []byte) (Change, error) {
	var w changeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, NewValidationError("changes", fmt.Sprintf("malformed change: %v", err))
	}

	switch w.Type {
	case ChangeCompleteModule, changeCompleteAlias:
		id := w.Module
		if id == "" {
			id = w.ModuleID
		}
		return CompleteModule{ModuleID: id}, nil
	case ChangeSubmitLab:
		return SubmitLab{LabID: w.Lab, Code: w.Code}, nil
	case ChangeCompleteInterview:
		var score float64
		if w.Score != nil {
			score = *w.Score
		}
		return CompleteInterview{Score: score}, nil
	case ChangeSetGoal:
		return SetGoal{Goal: w.Goal}, nil
	default:
		return UnknownChange{Type: string(w.Type), Raw: append(json.RawMessage(nil), data...)}, nil
	}
}

// EncodeChange encodes a variant into its wire object.
func EncodeChange(c Change) ([]byte, error) {
	switch v := c.(type) {
	case CompleteModule:
		return json.Marshal(changeWire{Type: ChangeCompleteModule, Module: v.ModuleID})
	case SubmitLab:
		return json.Marshal(changeWire{Type: ChangeSubmitLab, Lab: v.LabID, Code: v.Code})
	case CompleteInterview:
		score := v.Score
		return json.Marshal(changeWire{Type: ChangeCompleteInterview, Score: &score})
	case SetGoal:
		return json.Marshal(changeWire{Type: ChangeSetGoal, Goal: v.Goal})
	case UnknownChange:
		if len(v.Raw) > 0 {
			return v.Raw, nil
		}
		return json.Marshal(changeWire{Type: ChangeKind(v.Type)})
	default:
		return nil, fmt.Errorf("unsupported change type %T", c)
	}
}

// Changes is an ordered batch of changes with a variant-aware JSON codec.
type Changes []Change

func (cs *Changes) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*cs = nil
		return nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return NewValidationError("changes", "must be an array")
	}

	out := make(Changes, 0, len(raws))
	for _, raw := range raws {
		c, err := DecodeChange(raw)
		if err != nil {
			return err
		}
		out = append(out, c)
	}
	*cs = out
	return nil
}

func (cs Changes) MarshalJSON() ([]byte, error) {
	raws := make([]json.RawMessage, 0, len(cs))
	for _, c := range cs {
		b, err := EncodeChange(c)
		if err != nil {
			return nil, err
		}
		raws = append(raws, b)
	}
	return json.Marshal(raws)
}

// Validate validates every change in batch order.
func (cs Changes) Validate() error {
	for i, c := range cs {
		if err := c.Validate(); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return NewValidationError(fmt.Sprintf("changes[%d].%s", i, ve.Field), ve.Message)
			}
			return err
		}
	}
	return nil
}
