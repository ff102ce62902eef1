package characters

import (
	"sort"
	"strings"

	"github.com/collectorsden/shelftrack/internal/database/models"
)

// SortLinks orders links for presentation: the primary link first, then
// by case-insensitive character name. Links without a loaded Character
// sort last.
func SortLinks(links []*models.ItemCharacter) {
	sort.SliceStable(links, func(i, j int) bool {
		if links[i].IsPrimary != links[j].IsPrimary {
			return links[i].IsPrimary
		}
		if links[i].Character == nil || links[j].Character == nil {
			return links[j].Character == nil && links[i].Character != nil
		}
		return strings.ToLower(links[i].Character.Name) < strings.ToLower(links[j].Character.Name)
	})
}

// PrimaryLink returns the primary link, falling back to the first one.
func PrimaryLink(links []*models.ItemCharacter) *models.ItemCharacter {
	for _, link := range links {
		if link.IsPrimary {
			return link
		}
	}
	if len(links) > 0 {
		return links[0]
	}
	return nil
}

// FormatLinks renders stored links back into list form, e.g.
// "Optimus Prime |primary, Bumblebee". Feeding the result through Sync
// reproduces the same link set, because the primary marker is explicit
// regardless of position. Links must have their Character loaded.
func FormatLinks(links []*models.ItemCharacter) string {
	segments := make([]string, 0, len(links))
	for _, link := range links {
		if link.Character == nil {
			continue
		}
		var b strings.Builder
		b.WriteString(link.Character.Name)
		if link.IsPrimary {
			b.WriteString(" |")
			b.WriteString(PrimaryModifier)
		}
		if link.Role != "" {
			b.WriteString(" |")
			b.WriteString(link.Role)
		}
		segments = append(segments, b.String())
	}
	return strings.Join(segments, ", ")
}
