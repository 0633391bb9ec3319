package document

// Flatten produces a depth-first ordering of the field list where each group
// field is immediately followed by its children, recursively. Input order is
// respected (ties broken by Order); fields whose group reference does not
// resolve are treated as top-level. Pure and stable: the same input always
// yields the same output.
func Flatten(fields []Field) []Field {
	sorted := sortedByOrder(fields)

	byID := make(map[string]Field, len(sorted))
	children := make(map[string][]Field, len(sorted))
	for _, field := range sorted {
		byID[field.ID] = field
		if field.GroupID != "" {
			children[field.GroupID] = append(children[field.GroupID], field)
		}
	}

	var out []Field
	visited := make(map[string]bool, len(sorted))

	var walk func(field Field)
	walk = func(field Field) {
		if visited[field.ID] {
			return
		}
		visited[field.ID] = true
		out = append(out, field)
		if field.Type == FieldTypeGroup {
			for _, child := range children[field.ID] {
				walk(child)
			}
		}
	}

	for _, field := range sorted {
		if field.GroupID != "" {
			if parent, ok := byID[field.GroupID]; ok && parent.Type == FieldTypeGroup {
				continue
			}
		}
		walk(field)
	}

	// Orphans of a cycle or a non-group parent that slipped past normalize.
	for _, field := range sorted {
		walk(field)
	}
	return out
}

// SplitIntoPages partitions a flattened field list into pages at each
// page-break field. The break itself belongs to neither surrounding page.
// Without breaks the whole list is one page.
func SplitIntoPages(fields []Field) [][]Field {
	pages := [][]Field{nil}
	for _, field := range fields {
		if field.Type == FieldTypePageBreak {
			pages = append(pages, nil)
			continue
		}
		pages[len(pages)-1] = append(pages[len(pages)-1], field)
	}
	return pages
}
