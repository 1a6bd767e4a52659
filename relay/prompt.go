package relay

import (
	"fmt"
	"strings"
)

// Template selects which fixed prompt wording is sent to the model. The
// choice is made once at startup; requests cannot pick their own.
type Template int

const (
	// TemplateExtended is the few-shot prompt with two worked examples and
	// an explicit instruction not to guess.
	TemplateExtended Template = iota
	// TemplateShort is the one-paragraph imperative prompt.
	TemplateShort
)

func (t Template) String() string {
	switch t {
	case TemplateShort:
		return "short"
	default:
		return "extended"
	}
}

// ParseTemplate maps a configuration value onto a Template. The empty string
// selects the default (extended).
func ParseTemplate(name string) (Template, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "extended", "few-shot":
		return TemplateExtended, nil
	case "short":
		return TemplateShort, nil
	default:
		return TemplateExtended, fmt.Errorf("unknown prompt template %q (want short or extended)", name)
	}
}

// NotEnoughInformation is the phrase the extended prompt asks the model to
// use for anything it does not know.
const NotEnoughInformation = "Not enough information provided"

const shortInstruction = "Explain the diagnosis, medicine uses, composition, and precautions in an easy to understand manner " +
	"to help the patient understand the diagnosis and prescribed medicines easily. " +
	"add a little joke at end to cheer patient"

const extendedPreamble = `You are a highly accurate medical explanation assistant.
Your job is to explain a diagnosis and the prescribed medicines clearly for a patient,
using only information you are certain about. If any detail is unknown or not provided,
state "` + NotEnoughInformation + `" instead of guessing.

Guidelines:
1. Use plain, non-technical language a non-medical person can understand.
2. Explain:
- What the diagnosis means.
- What each medicine does.
- The medicine's main ingredients or composition (if known).
- Key precautions or warnings.
3. Do NOT make up symptoms, effects, or drug names.
4. Keep it friendly and encouraging.
5. Add a short, light-hearted joke at the end to make the patient smile.

Examples:

Example 1:
Diagnosis: Hypertension
Medicines: Amlodipine
Explanation:
Hypertension means your blood pressure is higher than normal, which can put extra strain on your heart and blood vessels.
Amlodipine is a medicine that helps relax your blood vessels, making it easier for blood to flow and lowering your blood pressure.
Its active ingredient is amlodipine besylate.
Precautions: Take it at the same time each day, avoid grapefruit juice, and don’t skip doses.
Joke: "Think of your blood pressure like a balloon — we just don’t want it to float away!"

Example 2:
Diagnosis: Type 2 Diabetes
Medicines: Metformin
Explanation:
Type 2 diabetes means your body has trouble using insulin properly, which makes it harder to control your blood sugar.
Metformin helps lower blood sugar by reducing sugar production in the liver and improving insulin sensitivity.
Its active ingredient is metformin hydrochloride.
Precautions: Take it with food to avoid stomach upset, and keep monitoring your blood sugar.
Joke: "We just want your sugar levels sweet, but not dessert-sweet!"

Now, explain the following for the patient:
`

// BuildPrompt substitutes the request into the template. Fields are inserted
// verbatim; callers validate and trim before calling.
func BuildPrompt(t Template, req Request) string {
	var b strings.Builder
	switch t {
	case TemplateShort:
		fmt.Fprintf(&b, "Diagnosis: %s\n", req.Diagnosis)
		fmt.Fprintf(&b, "Medicines: %s\n", req.Medicines)
		b.WriteString(shortInstruction)
	default:
		b.WriteString(extendedPreamble)
		b.WriteString("\n")
		fmt.Fprintf(&b, "Diagnosis: %s\n", req.Diagnosis)
		fmt.Fprintf(&b, "Medicines: %s\n", req.Medicines)
		b.WriteString("Explanation:\n")
	}
	return b.String()
}

// messages wraps the prompt as the single user message of the payload.
func messages(prompt string) []Message {
	return []Message{{Role: RoleUser, Content: prompt}}
}
