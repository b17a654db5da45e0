package pipeline

import "strings"

// Injector guarantees the trigger token and the mandatory concept phrase
// appear in every caption.
type Injector struct {
	trigger string
	concept string
}

// NewInjector creates an injector. Either value may be empty to disable
// that injection.
func NewInjector(trigger, concept string) *Injector {
	return &Injector{
		trigger: strings.TrimSpace(trigger),
		concept: strings.TrimSpace(concept),
	}
}

// Inject prepends the trigger when it is absent as a case-sensitive
// substring, then appends the concept when it is absent case-insensitively.
// The concept check runs on the trigger-augmented text.
func (in *Injector) Inject(text string) string {
	if in.trigger != "" && !strings.Contains(text, in.trigger) {
		text = in.trigger + " " + text
	}
	if in.concept != "" && !strings.Contains(strings.ToLower(text), strings.ToLower(in.concept)) {
		text = strings.TrimSpace(text) + " " + in.concept
	}
	return text
}
