// Package document reads and writes task collections and intents as YAML or
// JSON documents.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/metalagman/timeline/internal/reducer"
	"github.com/metalagman/timeline/internal/task"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument is returned for documents that do not describe a
// collection or an intent.
var ErrInvalidDocument = errors.New("invalid document")

// Collection is the on-disk shape of a task collection.
type Collection struct {
	Tasks []task.Task `json:"tasks" yaml:"tasks"`
}

// Envelope is the on-disk shape of an intent: its kind and its payload.
type Envelope struct {
	Type    reducer.Kind   `json:"type"    yaml:"type"`
	Payload map[string]any `json:"payload" yaml:"payload"`
}

// DecodeTasks parses a collection. Both a mapping with a tasks key and a bare
// list of tasks are accepted. JSON input is read as YAML. Rows without a kind
// are plain tasks.
func DecodeTasks(data []byte) ([]task.Task, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	if len(root.Content) == 0 || root.Content[0].ShortTag() == "!!null" {
		return nil, nil
	}

	var tasks []task.Task
	switch root.Content[0].Kind {
	case yaml.SequenceNode:
		if err := decodeStrict(data, &tasks); err != nil {
			return nil, fmt.Errorf("parse tasks: %w", err)
		}
	case yaml.MappingNode:
		var c Collection
		if err := decodeStrict(data, &c); err != nil {
			return nil, fmt.Errorf("parse tasks: %w", err)
		}
		tasks = c.Tasks
	default:
		return nil, fmt.Errorf("%w: expected a list of tasks or a tasks mapping", ErrInvalidDocument)
	}

	for i := range tasks {
		t := &tasks[i]
		if t.ID == "" {
			return nil, fmt.Errorf("%w: task at position %d has no id", ErrInvalidDocument, i)
		}
		if t.Kind == "" {
			t.Kind = task.KindTask
		}
		if _, err := task.ParseKind(string(t.Kind)); err != nil {
			return nil, fmt.Errorf("%w: task %s: %w", ErrInvalidDocument, t.ID, err)
		}
		for _, d := range t.Dependencies {
			if !d.SourceTarget.Valid() || !d.OwnTarget.Valid() {
				return nil, fmt.Errorf("%w: task %s: dependency on %s has an unknown extremity",
					ErrInvalidDocument, t.ID, d.SourceID)
			}
		}
	}
	return tasks, nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// EncodeTasks writes tasks as a YAML collection.
func EncodeTasks(w io.Writer, tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Collection{Tasks: tasks}); err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	return enc.Close()
}

// DecodeIntent parses an intent envelope.
func DecodeIntent(data []byte) (reducer.Intent, error) {
	var env Envelope
	if err := decodeStrict(data, &env); err != nil {
		return nil, fmt.Errorf("parse intent: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: intent has no type", ErrInvalidDocument)
	}
	return env.Intent()
}

// Intent builds the typed intent the envelope describes. Unknown payload
// fields are errors.
func (e Envelope) Intent() (reducer.Intent, error) {
	ptr, err := reducer.NewIntent(e.Type)
	if err != nil {
		return nil, err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
		Result:      ptr,
		TagName:     "mapstructure",
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(e.Payload); err != nil {
		return nil, fmt.Errorf("%w: %s payload: %w", ErrInvalidDocument, e.Type, err)
	}
	// Hand out values so callers can compare and switch on them.
	return reflect.ValueOf(ptr).Elem().Interface().(reducer.Intent), nil
}

// Wrap returns the envelope form of an intent for encoding.
func Wrap(in reducer.Intent) WrappedIntent {
	return WrappedIntent{Type: in.Kind(), Payload: in}
}

// WrappedIntent is an intent ready to be marshalled to JSON with its type tag.
type WrappedIntent struct {
	Type    reducer.Kind   `json:"type"`
	Payload reducer.Intent `json:"payload"`
}
