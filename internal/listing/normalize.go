package listing

import (
	"strings"

	"booklister/internal"
)

// BuildRow turns one bibliographic payload into a complete row for the
// template's header schema. Later steps win: defaults are overlaid by
// payload fields, payload fields by caller overrides, and the forced-blank
// clearing runs last so no earlier step can smuggle a value into a
// policy-managed column.
func BuildRow(tpl Template, payload internal.Payload, overrides map[string]any) internal.Row {
	row := make(internal.Row, len(tpl.Headers))
	for _, header := range tpl.Headers {
		row[header] = ""
	}

	for column, value := range tpl.Defaults {
		if _, ok := row[column]; ok {
			row[column] = value
		}
	}

	for field, column := range tpl.FieldMap {
		if _, ok := row[column]; !ok {
			continue
		}
		if value, ok := payload[field]; ok {
			row[column] = CleanText(value)
		}
	}

	// The mirror is a copy, not an alias: truncation below must not touch
	// the Title column itself.
	if _, ok := row[tpl.MirrorColumn]; ok && tpl.MirrorColumn != "" {
		if title, ok := row[tpl.TitleColumn]; ok {
			row[tpl.MirrorColumn] = title
		}
	}

	if tpl.TruncateLimit > 0 {
		for _, column := range []string{tpl.MirrorColumn, "C:Author"} {
			if value, ok := row[column]; ok {
				row[column] = Truncate(CleanText(value), tpl.TruncateLimit)
			}
		}
	}

	if _, ok := row["Description"]; ok {
		row["Description"] = BuildDescription(payload)
	}

	for column, value := range overrides {
		if _, ok := row[column]; ok {
			row[column] = value
		}
	}

	for column := range tpl.ForcedBlank {
		if _, ok := row[column]; ok {
			row[column] = ""
		}
	}

	return row
}

// BuildDescription assembles the listing description from the free-text
// blurb plus labeled condition and collector sections, separated by blank
// lines. Sections whose source text is empty are omitted entirely.
func BuildDescription(payload internal.Payload) string {
	blurb := CleanText(payload.Get("blurb"))
	condition := CleanText(payload.Get("condition"))
	details := CleanText(payload.Get("details"))

	sections := make([]string, 0, 3)
	if blurb != "" {
		sections = append(sections, blurb)
	}
	if condition != "" {
		sections = append(sections, "Condition Notes:\n"+condition)
	}
	if details != "" {
		sections = append(sections, "Collector Details:\n"+details)
	}
	return strings.Join(sections, "\n\n")
}
