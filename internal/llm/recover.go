package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/mudassirkhan-17/policyqc/internal/common"
)

// DecodeResult is a tagged decode outcome. Err set means both the strict
// parse and the fence-strip recovery failed; Raw always carries the model's
// text so callers can persist it.
type DecodeResult struct {
	Report map[string]any
	Raw    []byte
	Err    error
}

var fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*\\})\\s*```")

// Decode turns model output into a report map. Two stages: strict parse
// first, then one fenced-code-block strip and reparse. Anything past that
// is a tagged error, never a panic across the collaborator boundary.
func Decode(content string) DecodeResult {
	raw := []byte(strings.TrimSpace(content))
	res := DecodeResult{Raw: raw}

	var report map[string]any
	if err := json.Unmarshal(raw, &report); err == nil {
		res.Report = report
		return res
	}

	if m := fencedJSONRe.FindStringSubmatch(content); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &report); err == nil {
			res.Report = report
			return res
		}
	}

	res.Err = common.NewAppError("LLM_DECODE_ERROR", "response is not valid JSON", common.ErrLLMResponse)
	return res
}
