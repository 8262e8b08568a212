package housing

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mchmarny/houseval/pkg/score"
	"gopkg.in/yaml.v3"
)

// InputFields lists the keys every serialized Input must carry.
var InputFields = append(append([]string{}, NumericFeatures...), OceanProximity)

// DecodeInput decodes a single YAML or JSON input object. Every key in
// InputFields is required; a missing key is a *score.MissingFeatureError
// rather than a silent zero. Unknown keys are ignored.
func DecodeInput(b []byte) (Input, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(b, &n); err != nil {
		return Input{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if n.Kind != yaml.DocumentNode || len(n.Content) == 0 {
		return Input{}, fmt.Errorf("%w: empty document", ErrInvalidInput)
	}
	return decodeInputNode(n.Content[0])
}

// DecodeInputs decodes a YAML or JSON sequence of input objects.
func DecodeInputs(b []byte) ([]Input, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidInput)
	}

	var n yaml.Node
	if err := yaml.Unmarshal(b, &n); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if n.Kind != yaml.DocumentNode || len(n.Content) == 0 || n.Content[0].Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: expected a list of inputs", ErrInvalidInput)
	}

	seq := n.Content[0].Content
	list := make([]Input, 0, len(seq))
	for i, item := range seq {
		in, err := decodeInputNode(item)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		list = append(list, in)
	}
	return list, nil
}

func decodeInputNode(n *yaml.Node) (Input, error) {
	if n.Kind != yaml.MappingNode {
		return Input{}, fmt.Errorf("%w: expected an object (line %d)", ErrInvalidInput, n.Line)
	}

	keys := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keys[n.Content[i].Value] = true
	}
	for _, f := range InputFields {
		if !keys[f] {
			return Input{}, &score.MissingFeatureError{Feature: f}
		}
	}

	var in Input
	if err := n.Decode(&in); err != nil {
		var te *yaml.TypeError
		if errors.As(err, &te) {
			return Input{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return Input{}, fmt.Errorf("decoding input: %w", err)
	}
	return in, nil
}
