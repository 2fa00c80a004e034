package taxonomy

import "fmt"

// Validate checks the structural rules every template must satisfy before it
// is served: unique keys, complete display metadata, forced severities that
// actually exist, and the non_translation invariants.
func (t Template) Validate() error {
	if len(t.Severities) == 0 {
		return fmt.Errorf("template: at least one severity is required")
	}
	if len(t.Categories) == 0 {
		return fmt.Errorf("template: at least one category is required")
	}

	severityKeys := make(map[string]bool, len(t.Severities))
	for _, s := range t.Severities {
		if s.Key == "" {
			return fmt.Errorf("template: severity with empty key")
		}
		if severityKeys[s.Key] {
			return fmt.Errorf("template: duplicate severity key %q", s.Key)
		}
		severityKeys[s.Key] = true
		if s.Display == "" {
			return fmt.Errorf("template: severity %q missing display name", s.Key)
		}
		if s.Description == "" {
			return fmt.Errorf("template: severity %q missing description", s.Key)
		}
	}

	categoryKeys := make(map[string]bool, len(t.Categories))
	subtypeKeys := make(map[string]bool)
	for _, c := range t.Categories {
		if c.Key == "" {
			return fmt.Errorf("template: category with empty key")
		}
		if categoryKeys[c.Key] {
			return fmt.Errorf("template: duplicate category key %q", c.Key)
		}
		categoryKeys[c.Key] = true
		if c.Display == "" {
			return fmt.Errorf("template: category %q missing display name", c.Key)
		}
		if c.Description == "" {
			return fmt.Errorf("template: category %q missing description", c.Key)
		}

		for _, s := range c.Subtypes {
			if s.Key == "" {
				return fmt.Errorf("template: category %q has subtype with empty key", c.Key)
			}
			if subtypeKeys[s.Key] {
				return fmt.Errorf("template: duplicate subtype key %q", s.Key)
			}
			subtypeKeys[s.Key] = true
			if s.Display == "" {
				return fmt.Errorf("template: subtype %q missing display name", s.Key)
			}
			if s.Description == "" {
				return fmt.Errorf("template: subtype %q missing description", s.Key)
			}
			if s.ForcedSeverity != "" && !severityKeys[s.ForcedSeverity] {
				return fmt.Errorf("template: subtype %q forces unknown severity %q", s.Key, s.ForcedSeverity)
			}
			if s.OverrideAllErrors && s.ForcedSeverity == "" {
				return fmt.Errorf("template: subtype %q overrides all errors but forces no severity", s.Key)
			}
		}
	}

	// non_translation wipes out every other annotation on the segment, so it
	// must carry the override flag and pin the severity to major.
	if nt, ok := t.FindSubtype("non_translation"); ok {
		if !nt.OverrideAllErrors {
			return fmt.Errorf("template: non_translation must set override_all_errors")
		}
		if nt.ForcedSeverity != "major" {
			return fmt.Errorf("template: non_translation must force severity major, got %q", nt.ForcedSeverity)
		}
	}

	return nil
}
