package assist

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Context keys with a special meaning in BuildPrompt. Every other key is
// sent to the model as form information.
const (
	KeyProposition  = "proposition"
	KeyCurrentValue = "current_value"
)

const preamble = `You are an expert in project proposal management for non-profit organizations. Your task is to help fill out a project management form.
The response should be just the text for the field, without any preamble or explanation. The response must be in French.`

// BuildPrompt assembles the model prompt for field from the form values.
func BuildPrompt(field string, form map[string]any) string {
	proposition, _ := form[KeyProposition].(map[string]any)
	current := strings.TrimSpace(lookupString(form, KeyCurrentValue))

	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("\n\n")
	b.WriteString(instruction(field, form, proposition))

	if len(proposition) > 0 {
		b.WriteString("\n\nProposal Information:\n")
		b.WriteString(indentJSON(proposition))
	}
	rest := make(map[string]any, len(form))
	for k, v := range form {
		if k != KeyProposition && k != KeyCurrentValue {
			rest[k] = v
		}
	}
	if len(rest) > 0 {
		b.WriteString("\n\nForm Information:\n")
		b.WriteString(indentJSON(rest))
	}
	if current != "" {
		fmt.Fprintf(&b, "\n\nImprove or complete the current value: %q", current)
	}
	return b.String()
}

func instruction(field string, form, proposition map[string]any) string {
	name := orDefault(lookupString(proposition, "name"), "Nouvelle proposition")
	switch field {
	case "context_description":
		return fmt.Sprintf("Rédige une description du contexte et de la problématique pour la proposition de projet : %s.\nBailleur: %s.\nZone d'intervention: %s.\nAnnée: %s.",
			orDefault(lookupString(form, "name"), name),
			orDefault(lookupString(form, "funder"), "Non défini"),
			orDefault(lookupString(form, "intervention_zone"), "Non définie"),
			orDefault(lookupString(form, "year"), "Non définie"))
	case "identified_challenges":
		return fmt.Sprintf("Liste les principaux défis identifiés pour la proposition de projet %q en te basant sur le contexte suivant : %s. Réponds avec une liste à puces.",
			name, lookupString(proposition, "context_description"))
	case "justification":
		return fmt.Sprintf("Rédige une justification pour la proposition de projet %q en te basant sur le contexte et les défis identifiés.", name)
	case "long_term_statement":
		return fmt.Sprintf("Formule une vision à long terme (impact) pour la proposition de projet %q.", name)
	case "key_assumptions":
		return fmt.Sprintf("Énumère les hypothèses clés sur lesquelles repose la théorie du changement du projet, en te basant sur sa vision : %q.",
			lookupString(form, "long_term_statement"))
	case "title":
		result, _ := form["result"].(map[string]any)
		return fmt.Sprintf("Propose un intitulé clair et concis pour une activité qui contribuera au résultat suivant : %q.",
			lookupString(result, "statement"))
	default:
		return fmt.Sprintf("Based on the provided context, please generate a concise and relevant suggestion for the %q field.", field)
	}
}

func lookupString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func indentJSON(v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
