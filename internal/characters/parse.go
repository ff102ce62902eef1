// Package characters maintains the item/character links behind the
// free-text "characters" field. A list like
//
//	Optimus Prime |primary, Bumblebee; Megatron
//
// is parsed into entries and reconciled against the stored links as one
// atomic replace.
package characters

import "strings"

// PrimaryModifier marks an entry as the item's primary character. The
// comparison is case-insensitive.
const PrimaryModifier = "primary"

// Entry is one parsed character reference.
type Entry struct {
	Name      string
	Modifiers []string
	Primary   bool
}

var listNormalizer = strings.NewReplacer(";", "\n", ",", "\n", "\r", "\n")

// ParseList splits a free-text character list into entries. Separators
// are commas, semicolons and line breaks. A pipe introduces modifiers:
// "primary" (any case) sets the Primary flag, anything else is kept
// verbatim in Modifiers. Tokens that reduce to an empty name are
// dropped. Parsing never fails.
func ParseList(raw string) []Entry {
	var entries []Entry
	for _, token := range strings.Split(listNormalizer.Replace(raw), "\n") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if !strings.Contains(token, "|") {
			entries = append(entries, Entry{Name: token})
			continue
		}

		parts := strings.Split(token, "|")
		entry := Entry{Name: strings.TrimSpace(parts[0])}
		for _, part := range parts[1:] {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if strings.EqualFold(part, PrimaryModifier) {
				entry.Primary = true
				continue
			}
			entry.Modifiers = append(entry.Modifiers, part)
		}
		if entry.Name == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// String renders the entry in canonical list form: the name, a
// " |primary" marker when set, then any other modifiers. Parsing the
// result yields the entry back.
func (e Entry) String() string {
	var b strings.Builder
	b.WriteString(e.Name)
	if e.Primary {
		b.WriteString(" |")
		b.WriteString(PrimaryModifier)
	}
	for _, mod := range e.Modifiers {
		b.WriteString(" |")
		b.WriteString(mod)
	}
	return b.String()
}

// joinModifiers packs non-primary modifiers into the role column so a
// rendered list parses back to the same modifiers.
func joinModifiers(mods []string) string {
	return strings.Join(mods, " |")
}
