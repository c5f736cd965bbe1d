package formatter

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"

	"github.com/web3-inreach/jentity/internal/config"
)

// Formatter renders Datastore messages for output
type Formatter struct {
	format string
}

// NewFormatter creates a new Formatter for one of the config.Format* values
func NewFormatter(format string) *Formatter {
	if format == "" {
		format = config.FormatJSON
	}
	return &Formatter{format: strings.ToLower(format)}
}

// protojson output is not byte-stable, so JSON and YAML are re-encoded from
// its compact form
var compactJSON = protojson.MarshalOptions{UseProtoNames: true}

// Format renders messages. A single message renders on its own; several
// render as a JSON array, a YAML sequence, or consecutive text blocks.
func (f *Formatter) Format(messages ...proto.Message) (string, error) {
	switch f.format {
	case config.FormatJSON:
		return f.formatJSON(messages)
	case config.FormatYAML:
		return f.formatYAML(messages)
	case config.FormatText:
		return f.formatText(messages)
	default:
		return "", fmt.Errorf("unsupported output format '%s'", f.format)
	}
}

func (f *Formatter) formatJSON(messages []proto.Message) (string, error) {
	raws, err := rawMessages(messages)
	if err != nil {
		return "", err
	}

	var out []byte
	if len(raws) == 1 {
		out, err = json.MarshalIndent(raws[0], "", "  ")
	} else {
		out, err = json.MarshalIndent(raws, "", "  ")
	}
	if err != nil {
		return "", fmt.Errorf("failed to indent JSON: %w", err)
	}
	return string(out) + "\n", nil
}

func (f *Formatter) formatYAML(messages []proto.Message) (string, error) {
	raws, err := rawMessages(messages)
	if err != nil {
		return "", err
	}

	docs := make([]interface{}, len(raws))
	for i, raw := range raws {
		if err := json.Unmarshal(raw, &docs[i]); err != nil {
			return "", fmt.Errorf("failed to decode JSON for YAML output: %w", err)
		}
	}

	var out []byte
	if len(docs) == 1 {
		out, err = yaml.Marshal(docs[0])
	} else {
		out, err = yaml.Marshal(docs)
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	return string(out), nil
}

func (f *Formatter) formatText(messages []proto.Message) (string, error) {
	opts := prototext.MarshalOptions{Multiline: true, Indent: "  "}

	var sb strings.Builder
	for i, msg := range messages {
		out, err := opts.Marshal(msg)
		if err != nil {
			return "", fmt.Errorf("failed to encode text: %w", err)
		}
		if len(messages) > 1 {
			fmt.Fprintf(&sb, "# %d\n", i)
		}
		sb.Write(out)
	}
	return sb.String(), nil
}

func rawMessages(messages []proto.Message) ([]json.RawMessage, error) {
	raws := make([]json.RawMessage, 0, len(messages))
	for _, msg := range messages {
		out, err := compactJSON.Marshal(msg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON: %w", err)
		}
		raws = append(raws, json.RawMessage(out))
	}
	return raws, nil
}
