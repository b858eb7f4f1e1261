package intent

import (
	"strings"

	"gopkg.in/yaml.v3"

	"intentguard/internal/logging"
)

// legacyConstraint is the deprecated {name, value} array form of
// constraints (spec §9 Open Question (b)).
type legacyConstraint struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// rawIntent decodes either the canonical shape or either deprecated input
// format: constraints-as-sequence, and name in place of description.
type rawIntent struct {
	ID                 string    `yaml:"id"`
	Description        string    `yaml:"description"`
	Name               string    `yaml:"name"`
	Status             string    `yaml:"status"`
	OwnedScope         []string  `yaml:"owned_scope"`
	Constraints        yaml.Node `yaml:"constraints"`
	AcceptanceCriteria []string  `yaml:"acceptance_criteria"`
	SpecRef            string    `yaml:"spec_ref"`
}

// UnmarshalYAML normalizes both deprecated input shapes into the canonical
// "mapping + description" form (spec §9), and normalizes any missing or
// unrecognized status to PENDING (spec §3, §4.4), logging a one-line
// diagnostic for each normalization performed.
func (i *Intent) UnmarshalYAML(value *yaml.Node) error {
	var raw rawIntent
	if err := value.Decode(&raw); err != nil {
		return err
	}

	i.ID = raw.ID

	i.Description = raw.Description
	if i.Description == "" && raw.Name != "" {
		i.Description = raw.Name
		logging.IntentWarn("intent %s: using deprecated 'name' field as description", i.ID)
	}

	i.Constraints = decodeConstraints(raw.ID, raw.Constraints)
	i.OwnedScope = raw.OwnedScope
	i.AcceptanceCriteria = raw.AcceptanceCriteria
	i.SpecRef = raw.SpecRef

	status := Status(strings.ToUpper(strings.TrimSpace(raw.Status)))
	if !IsLegal(status) {
		if status == "" {
			logging.IntentWarn("intent %s: missing status normalized to PENDING", i.ID)
		} else {
			logging.IntentWarn("intent %s: unrecognized status %q normalized to PENDING", i.ID, raw.Status)
		}
		status = Pending
	}
	i.Status = status

	return nil
}

func decodeConstraints(id string, node yaml.Node) map[string]string {
	switch node.Kind {
	case yaml.MappingNode:
		m := make(map[string]string)
		if err := node.Decode(&m); err == nil {
			return m
		}
	case yaml.SequenceNode:
		var list []legacyConstraint
		if err := node.Decode(&list); err == nil {
			m := make(map[string]string, len(list))
			for _, c := range list {
				m[c.Name] = c.Value
			}
			logging.IntentWarn("intent %s: constraints given as deprecated array; normalized to map", id)
			return m
		}
	}
	return map[string]string{}
}

// MarshalYAML always emits the canonical mapping + description shape, so
// persisting a ledger loaded from a deprecated-shape file upgrades it in
// place.
func (i Intent) MarshalYAML() (interface{}, error) {
	type canonical struct {
		ID                 string            `yaml:"id"`
		Description        string            `yaml:"description"`
		Status             Status            `yaml:"status"`
		OwnedScope         []string          `yaml:"owned_scope"`
		Constraints        map[string]string `yaml:"constraints"`
		AcceptanceCriteria []string          `yaml:"acceptance_criteria"`
		SpecRef            string            `yaml:"spec_ref,omitempty"`
	}
	return canonical{
		ID:                 i.ID,
		Description:        i.Description,
		Status:             i.Status,
		OwnedScope:         i.OwnedScope,
		Constraints:        i.Constraints,
		AcceptanceCriteria: i.AcceptanceCriteria,
		SpecRef:            i.SpecRef,
	}, nil
}
