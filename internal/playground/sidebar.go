package playground

import (
	"strings"

	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/sieve/internal/engine"
)

func entityZoneID(name string) string {
	return "entity-" + name
}

// renderEntities renders the entity selector line.
func renderEntities(entities []engine.EntityType, selected int) string {
	parts := make([]string, len(entities))
	for i, t := range entities {
		if i == selected {
			parts[i] = selectedStyle.Render("● " + t.Name())
		} else {
			parts[i] = normalStyle.Render("  " + t.Name())
		}
		parts[i] = zone.Mark(entityZoneID(t.Name()), parts[i])
	}
	return headerStyle.Render("Entity") + "  " + strings.Join(parts, " ")
}

// renderFields lists the fields of t and the operators each accepts.
func renderFields(t engine.EntityType) string {
	var sb strings.Builder
	for _, f := range t.Fields() {
		ops := make([]string, len(f.Operators))
		for i, op := range f.Operators {
			ops[i] = op.String()
		}
		sb.WriteString(normalStyle.Render(`"`+f.Name+`"`) + " " + mutedStyle.Render(strings.Join(ops, ", ")) + "\n")
	}
	return sb.String()
}
