package executor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/v0xg/deskpilot/internal/desktop"
	"github.com/v0xg/deskpilot/internal/resolver"
)

// Action types understood by Execute.
const (
	ActionType        = "type"
	ActionPress       = "press"
	ActionHotkey      = "hotkey"
	ActionKeyDown     = "key_down"
	ActionKeyUp       = "key_up"
	ActionMove        = "move"
	ActionClick       = "click"
	ActionDoubleClick = "double_click"
	ActionTripleClick = "triple_click"
	ActionRightClick  = "right_click"
	ActionScroll      = "scroll"
	ActionMouseDown   = "mouse_down"
	ActionMouseUp     = "mouse_up"
	ActionPosition    = "position"
	ActionWait        = "wait"
)

// Action represents a single step of a batch. Pointer actions take their
// target from the embedded selector; "type" writes Text.
type Action struct {
	Type string `json:"action" yaml:"action"`

	resolver.Selector `yaml:",inline"`

	// Keys for press, hotkey, key_down and key_up.
	Keys    []string `json:"keys,omitempty" yaml:"keys,omitempty"`
	Presses int      `json:"presses,omitempty" yaml:"presses,omitempty"`
	Button  string   `json:"button,omitempty" yaml:"button,omitempty"`
	Clicks  int      `json:"clicks,omitempty" yaml:"clicks,omitempty"`

	// Amount is the scroll distance in wheel clicks; positive scrolls up.
	Amount int `json:"amount,omitempty" yaml:"amount,omitempty"`

	// Interval in ms between typed characters, key repeats or clicks.
	Interval int `json:"interval,omitempty" yaml:"interval,omitempty"`

	// Duration in ms to wait after the action.
	Duration int `json:"wait,omitempty" yaml:"wait,omitempty"`
}

func (a Action) interval() time.Duration { return time.Duration(a.Interval) * time.Millisecond }
func (a Action) wait() time.Duration     { return time.Duration(a.Duration) * time.Millisecond }

// StepResult is the outcome of one action.
type StepResult struct {
	Index  int            `json:"index"`
	Action string         `json:"action"`
	Point  *desktop.Point `json:"point,omitempty"`

	// Kind is empty on success, otherwise one of desktop.Kind's names.
	Kind       string                     `json:"kind,omitempty"`
	Error      string                     `json:"error,omitempty"`
	Candidates []desktop.IndexedCandidate `json:"candidates,omitempty"`

	// Annotated is the verbose-mode screenshot for this step.
	Annotated image.Image `json:"-"`
}

// OK reports whether the step succeeded.
func (s StepResult) OK() bool { return s.Kind == "" }

// Result holds the outcome of a batch. Steps after a failed step are not run.
type Result struct {
	Steps []StepResult `json:"steps"`

	// Failed is the index of the failed step, or -1.
	Failed int `json:"failed"`
}

// batchFile is the document form of a batch: either a bare list of actions
// or a mapping with a "steps" list.
type batchFile struct {
	Steps []Action `json:"steps" yaml:"steps"`
}

// ParseActions decodes a JSON or YAML batch.
func ParseActions(data []byte) ([]Action, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty batch")
	}

	var actions []Action
	var err error
	switch trimmed[0] {
	case '[':
		err = decodeJSON(trimmed, &actions)
	case '{':
		var f batchFile
		err = decodeJSON(trimmed, &f)
		actions = f.Steps
	default:
		actions, err = decodeYAML(trimmed)
	}
	if err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, fmt.Errorf("batch has no actions")
	}
	for i, a := range actions {
		if a.Type == "" {
			return nil, fmt.Errorf("step %d: missing action", i+1)
		}
	}
	return actions, nil
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to parse JSON batch: %w", err)
	}
	return nil
}

func decodeYAML(data []byte) ([]Action, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse YAML batch: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("empty batch")
	}

	var actions []Action
	var err error
	if node.Content[0].Kind == yaml.SequenceNode {
		err = node.Content[0].Decode(&actions)
	} else {
		var f batchFile
		err = node.Content[0].Decode(&f)
		actions = f.Steps
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML batch: %w", err)
	}
	return actions, nil
}
