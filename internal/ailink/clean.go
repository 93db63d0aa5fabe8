package ailink

import (
	"regexp"
	"strings"
)

// scaffoldingTokens are chat-template markers some hosted models leak into
// their output.
var scaffoldingTokens = []string{
	"<|assistant|>", "<|user|>", "<|system|>",
	"<|im_start|>assistant", "<|im_start|>", "<|im_end|>",
	"<|eot_id|>", "<|end_of_text|>", "<|end|>",
	"<|start_header_id|>assistant<|end_header_id|>",
	"</s>", "<s>", "[/INST]", "[INST]",
}

var rolePrefix = regexp.MustCompile(`^(?i:assistant|bot)\s*:\s*`)

// CleanCompletion strips role markers and end-of-turn sentinels and trims
// surrounding whitespace.
func CleanCompletion(text string) string {
	out := text
	for _, token := range scaffoldingTokens {
		out = strings.ReplaceAll(out, token, "")
	}
	out = strings.TrimSpace(out)
	out = rolePrefix.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}
