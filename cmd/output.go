package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/learnpath/learnpath/internal/feature"
	"github.com/learnpath/learnpath/internal/pipeline"
)

// outcomeView is the JSON shape printed for a pipeline outcome.
type outcomeView struct {
	RequestID string         `json:"request_id"`
	Feature   string         `json:"feature"`
	Source    string         `json:"source"`
	Failure   string         `json:"failure,omitempty"`
	Strategy  string         `json:"strategy,omitempty"`
	Model     string         `json:"model,omitempty"`
	LatencyMs int64          `json:"latency_ms"`
	Error     string         `json:"error,omitempty"`
	Result    feature.Result `json:"result"`
}

func viewOf(out pipeline.Outcome) outcomeView {
	v := outcomeView{
		RequestID: out.RequestID,
		Feature:   string(out.Feature),
		Source:    string(out.Source),
		Failure:   string(out.Failure),
		Strategy:  string(out.Strategy),
		Model:     out.Model,
		LatencyMs: out.Latency.Milliseconds(),
		Result:    out.Result,
	}
	if out.Err != nil {
		v.Error = out.Err.Error()
	}
	return v
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// readPayload decodes a JSON object from the inline string, or from path
// ("-" for stdin). Both empty yields an empty payload.
func readPayload(stdin io.Reader, inline, path string) (map[string]any, error) {
	var raw []byte
	switch {
	case inline != "" && path != "":
		return nil, fmt.Errorf("use either --payload or --file, not both")
	case inline != "":
		raw = []byte(inline)
	case path == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		raw = b
	case path != "":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read payload file: %w", err)
		}
		raw = b
	default:
		return map[string]any{}, nil
	}

	payload := map[string]any{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("payload must be a JSON object: %w", err)
	}
	return payload, nil
}
