package ai

import (
	"sort"
	"strings"

	domainErrors "github.com/thomas-vilte/matetriage/internal/errors"
)

// Placeholder keys understood by RenderPrompt. In a template they appear as {{KEY}}.
const (
	KeyLog          = "LOG"
	KeyWorkflowName = "WORKFLOW_NAME"
	KeyJobName      = "JOB_NAME"
	KeyStepName     = "STEP_NAME"
)

// LogPlaceholder must appear in every prompt template.
const LogPlaceholder = "{{" + KeyLog + "}}"

// PromptContext maps placeholder keys to their substitution values.
type PromptContext map[string]string

// NewPromptContext builds the context for one invocation.
func NewPromptContext(log, workflowName, jobName, stepName string) PromptContext {
	return PromptContext{
		KeyLog:          log,
		KeyWorkflowName: workflowName,
		KeyJobName:      jobName,
		KeyStepName:     stepName,
	}
}

// ValidateTemplate fails with a configuration error unless tmpl contains {{LOG}}.
func ValidateTemplate(tmpl string) error {
	if !strings.Contains(tmpl, LogPlaceholder) {
		return domainErrors.ErrTemplateMissingLog
	}
	return nil
}

// RenderPrompt replaces every {{KEY}} occurrence for each key in pc. Unknown
// {{...}} tokens are left as they are. Replacement is a single pass, so a value
// that itself contains a placeholder (a log line printing "{{JOB_NAME}}", say) is
// not expanded again.
func RenderPrompt(tmpl string, pc PromptContext) string {
	keys := make([]string, 0, len(pc))
	for k := range pc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", pc[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
