package judge

import (
	"encoding/json"
	"fmt"

	"reelpick/internal/quality"
)

const promptTemplate = `You are a strict photo curator. Rate the attached image for inclusion in a highlights selection.

Respond with JSON only, using exactly this schema:
{
  "caption": "one short sentence describing the image",
  "tags": ["lowercase", "keywords"],
  "risks": {"blur": false, "dark": false, "overexposed": false, "out_of_focus": false},
  "score": 0.0
}

"score" is a float between 0.0 (unusable) and 1.0 (excellent). Penalize motion blur, missed focus, poor framing, and bad exposure. Reward sharp, well-lit, well-composed images.

Measured quality hints for this image:
%s`

// BuildPrompt renders the scoring prompt, embedding the measured quality
// metrics as hints for the model.
func BuildPrompt(metrics *quality.Metrics) string {
	hints := "{}"
	if metrics != nil {
		if encoded, err := json.Marshal(metrics); err == nil {
			hints = string(encoded)
		}
	}
	return fmt.Sprintf(promptTemplate, hints)
}
