package document_test

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formedit/internal/document"
)

func twoFieldForm() document.Form {
	return document.Form{
		ID: "form-1",
		Fields: []document.Field{
			{ID: "a", Type: document.FieldTypeShortText, Label: "A", Order: 0},
			{ID: "b", Type: document.FieldTypeShortText, Label: "B", Order: 1},
		},
	}
}

func groupedForm() document.Form {
	return document.Form{
		ID: "form-1",
		Fields: []document.Field{
			{ID: "g", Type: document.FieldTypeGroup, Label: "G", Order: 0},
			{ID: "h", Type: document.FieldTypeShortText, Label: "H", Order: 1, GroupID: "g"},
			{ID: "i", Type: document.FieldTypeShortText, Label: "I", Order: 2},
		},
	}
}

func assertDenseOrder(t *testing.T, form document.Form) {
	t.Helper()
	orders := make([]int, 0, len(form.Fields))
	for _, field := range form.Fields {
		orders = append(orders, field.Order)
	}
	sort.Ints(orders)
	for i, order := range orders {
		if order != i {
			t.Fatalf("order values not dense: %v", orders)
		}
	}
}

func TestAddFieldAfterAnchor(t *testing.T) {
	t.Parallel()

	form := twoFieldForm()
	next, inserted := document.AddField(form, document.Field{Type: document.FieldTypeNumber, Label: "C"}, "a")

	if inserted.ID == "" {
		t.Fatalf("expected a fresh id on the inserted field")
	}
	if inserted.Order != 1 {
		t.Fatalf("inserted order = %d, want 1", inserted.Order)
	}
	if got := next.FieldByID("b").Order; got != 2 {
		t.Fatalf("shifted order of b = %d, want 2", got)
	}
	assertDenseOrder(t, next)

	if len(form.Fields) != 2 {
		t.Fatalf("input form was mutated: %d fields", len(form.Fields))
	}
}

func TestAddFieldWithoutAnchorAppends(t *testing.T) {
	t.Parallel()

	form := twoFieldForm()
	next, inserted := document.AddField(form, document.Field{Type: document.FieldTypeDate}, "")
	if inserted.Order != 2 {
		t.Fatalf("inserted order = %d, want 2", inserted.Order)
	}
	assertDenseOrder(t, next)

	// A stale anchor behaves like no anchor.
	next, inserted = document.AddField(form, document.Field{Type: document.FieldTypeDate}, "missing")
	if inserted.Order != 2 {
		t.Fatalf("inserted order with stale anchor = %d, want 2", inserted.Order)
	}
	assertDenseOrder(t, next)
}

func TestAddFieldInheritsAnchorGroup(t *testing.T) {
	t.Parallel()

	form := groupedForm()
	next, inserted := document.AddField(form, document.Field{Type: document.FieldTypeShortText}, "h")
	if inserted.GroupID != "g" {
		t.Fatalf("inserted groupId = %q, want %q", inserted.GroupID, "g")
	}
	assertDenseOrder(t, next)
}

func TestAddThenDeleteRoundTrip(t *testing.T) {
	t.Parallel()

	form := twoFieldForm()
	next, inserted := document.AddField(form, document.Field{Type: document.FieldTypeShortText, Label: "C"}, "a")

	wantOrders := map[string]int{"a": 0, inserted.ID: 1, "b": 2}
	for id, want := range wantOrders {
		if got := next.FieldByID(id).Order; got != want {
			t.Fatalf("order of %q = %d, want %d", id, got, want)
		}
	}

	restored := document.DeleteField(next, inserted.ID)
	if got := restored.FieldByID("a").Order; got != 0 {
		t.Fatalf("order of a after delete = %d, want 0", got)
	}
	if got := restored.FieldByID("b").Order; got != 1 {
		t.Fatalf("order of b after delete = %d, want 1", got)
	}
	if len(restored.Fields) != 2 {
		t.Fatalf("field count after round trip = %d, want 2", len(restored.Fields))
	}
}

func TestUpdateFieldMergesPatch(t *testing.T) {
	t.Parallel()

	form := twoFieldForm()
	label := "Renamed"
	required := true
	next := document.UpdateField(form, "a", document.FieldPatch{
		Label:    &label,
		Required: &required,
		Options:  map[string]any{"placeholderColor": "grey"},
	})

	field := next.FieldByID("a")
	if field.Label != "Renamed" || !field.Required {
		t.Fatalf("patch not merged: %+v", field)
	}
	if got := field.Options["placeholderColor"]; got != "grey" {
		t.Fatalf("options not merged: %v", field.Options)
	}
	if field.Order != 0 || next.FieldByID("b").Order != 1 {
		t.Fatalf("update changed ordering")
	}
}

func TestUpdateFieldUnknownIDIsNoop(t *testing.T) {
	t.Parallel()

	form := twoFieldForm()
	label := "Renamed"
	next := document.UpdateField(form, "missing", document.FieldPatch{Label: &label})
	if diff := cmp.Diff(form, next); diff != "" {
		t.Fatalf("document changed on unknown id (-want +got):\n%s", diff)
	}
}

func TestUpdateFieldSanitizesParagraphContent(t *testing.T) {
	t.Parallel()

	form := document.Form{Fields: []document.Field{
		{ID: "p", Type: document.FieldTypeParagraph, Order: 0, Options: map[string]any{}},
	}}
	next := document.UpdateField(form, "p", document.FieldPatch{
		Options: map[string]any{"content": `<p>hello</p><script>alert(1)</script>`},
	})
	got, _ := next.FieldByID("p").Options["content"].(string)
	if got != "<p>hello</p>" {
		t.Fatalf("content = %q, want scripts stripped", got)
	}
}

func TestDeleteGroupRemovesDescendantClosure(t *testing.T) {
	t.Parallel()

	form := groupedForm()
	next := document.DeleteField(form, "g")

	if len(next.Fields) != 1 {
		t.Fatalf("field count = %d, want 1", len(next.Fields))
	}
	if next.Fields[0].ID != "i" || next.Fields[0].Order != 0 {
		t.Fatalf("surviving field = %+v, want i at order 0", next.Fields[0])
	}
}

func TestDeleteFieldTransitiveClosure(t *testing.T) {
	t.Parallel()

	form := document.Form{Fields: []document.Field{
		{ID: "outer", Type: document.FieldTypeGroup, Order: 0},
		{ID: "inner", Type: document.FieldTypeGroup, Order: 1, GroupID: "outer"},
		{ID: "leaf", Type: document.FieldTypeShortText, Order: 2, GroupID: "inner"},
		{ID: "free", Type: document.FieldTypeShortText, Order: 3},
	}}

	got := document.Descendants(form.Fields, "outer")
	sort.Strings(got)
	if diff := cmp.Diff([]string{"inner", "leaf"}, got); diff != "" {
		t.Fatalf("descendants (-want +got):\n%s", diff)
	}

	next := document.DeleteField(form, "outer")
	if len(next.Fields) != 1 || next.Fields[0].ID != "free" {
		t.Fatalf("expected only the free field to survive, got %+v", next.Fields)
	}
}

func TestDeleteFieldPrunesLegacyConditions(t *testing.T) {
	t.Parallel()

	form := twoFieldForm()
	form.Conditions = []document.FieldCondition{
		{ID: "c1", FieldID: "a", TargetID: "b"},
		{ID: "c2", FieldID: "b", TargetID: "a"},
	}
	next := document.DeleteField(form, "b")
	if len(next.Conditions) != 0 {
		t.Fatalf("conditions referencing a removed field survived: %+v", next.Conditions)
	}
}

func TestDeleteFieldResizesPageSettings(t *testing.T) {
	t.Parallel()

	form := document.Form{
		Fields: []document.Field{
			{ID: "a", Type: document.FieldTypeShortText, Order: 0},
			{ID: "brk", Type: document.FieldTypePageBreak, Order: 1},
			{ID: "b", Type: document.FieldTypeShortText, Order: 2},
		},
		Pages: []document.PageSettings{{Title: "One"}, {Title: "Two"}},
	}
	next := document.DeleteField(form, "brk")
	if len(next.Pages) != 1 {
		t.Fatalf("page settings = %d entries, want 1", len(next.Pages))
	}
	if next.Pages[0].Title != "One" {
		t.Fatalf("surviving page settings = %+v", next.Pages[0])
	}
}

func TestDuplicateFieldInsertsAfterSource(t *testing.T) {
	t.Parallel()

	form := twoFieldForm()
	form.Fields[0].Options = map[string]any{"width": "half"}

	next, clone := document.DuplicateField(form, "a")
	if clone.ID == "a" || clone.ID == "" {
		t.Fatalf("clone id = %q, want a fresh id", clone.ID)
	}
	if clone.Order != 1 {
		t.Fatalf("clone order = %d, want 1", clone.Order)
	}
	if clone.Label != "A" {
		t.Fatalf("clone label = %q, want %q", clone.Label, "A")
	}
	if got := clone.Options["width"]; got != "half" {
		t.Fatalf("clone options not copied: %v", clone.Options)
	}
	if got := next.FieldByID("b").Order; got != 2 {
		t.Fatalf("order of b = %d, want 2", got)
	}
	assertDenseOrder(t, next)
}

func TestReorderFieldsRenumbers(t *testing.T) {
	t.Parallel()

	form := document.Form{Fields: []document.Field{
		{ID: "a", Type: document.FieldTypeShortText, Order: 0},
		{ID: "b", Type: document.FieldTypeShortText, Order: 1},
		{ID: "c", Type: document.FieldTypeShortText, Order: 2},
	}}
	next := document.ReorderFields(form, 0, 2)

	want := map[string]int{"b": 0, "c": 1, "a": 2}
	for id, order := range want {
		if got := next.FieldByID(id).Order; got != order {
			t.Fatalf("order of %q = %d, want %d", id, got, order)
		}
	}
	assertDenseOrder(t, next)
}

func TestReorderFieldsRejectsCrossGroupMove(t *testing.T) {
	t.Parallel()

	form := groupedForm()
	// Moving the top-level field i into the group's range (displacing the
	// grouped child h) must not scatter the group.
	next := document.ReorderFields(form, 2, 1)
	if diff := cmp.Diff(form, next); diff != "" {
		t.Fatalf("cross-group reorder was not rejected (-want +got):\n%s", diff)
	}
}

func TestReorderFieldsOutOfRangeIsNoop(t *testing.T) {
	t.Parallel()

	form := twoFieldForm()
	for _, indices := range [][2]int{{-1, 0}, {0, 5}, {5, 0}, {1, 1}} {
		next := document.ReorderFields(form, indices[0], indices[1])
		if diff := cmp.Diff(form, next); diff != "" {
			t.Fatalf("reorder(%d, %d) changed the document:\n%s", indices[0], indices[1], diff)
		}
	}
}

func TestOrderDensityUnderOperationSequence(t *testing.T) {
	t.Parallel()

	form := document.Form{ID: "form-1"}
	var ids []string
	for i := 0; i < 6; i++ {
		var inserted document.Field
		anchor := ""
		if len(ids) > 1 {
			anchor = ids[1]
		}
		form, inserted = document.AddField(form, document.Field{Type: document.FieldTypeShortText}, anchor)
		ids = append(ids, inserted.ID)
		assertDenseOrder(t, form)
	}

	form = document.DeleteField(form, ids[2])
	assertDenseOrder(t, form)

	form, _ = document.DuplicateField(form, ids[0])
	assertDenseOrder(t, form)

	form = document.ReorderFields(form, 0, len(form.Fields)-1)
	assertDenseOrder(t, form)

	form = document.DeleteFields(form, []string{ids[0], ids[4]})
	assertDenseOrder(t, form)
}

func TestInsertFieldsBatchKeepsGivenGroups(t *testing.T) {
	t.Parallel()

	form := groupedForm()
	batch := []document.Field{
		{Type: document.FieldTypeShortText, Label: "P1"},
		{Type: document.FieldTypeShortText, Label: "P2"},
	}
	// Anchoring on the grouped child must not pull the batch into the group.
	next, inserted := document.InsertFields(form, batch, "h")
	if len(inserted) != 2 {
		t.Fatalf("inserted %d fields, want 2", len(inserted))
	}
	for _, field := range inserted {
		if field.GroupID != "" {
			t.Fatalf("batch insert inherited group: %+v", field)
		}
	}
	if inserted[0].Order != 2 || inserted[1].Order != 3 {
		t.Fatalf("batch orders = %d,%d, want 2,3", inserted[0].Order, inserted[1].Order)
	}
	assertDenseOrder(t, next)
}

func TestNormalizeClearsDanglingGroupReference(t *testing.T) {
	t.Parallel()

	form := document.Form{Fields: []document.Field{
		{ID: "a", Type: document.FieldTypeShortText, Order: 0, GroupID: "gone"},
		{ID: "b", Type: document.FieldTypeShortText, Order: 1},
	}}
	// Any structural mutation must filter dangling references.
	next := document.DeleteField(form, "b")
	if got := next.FieldByID("a").GroupID; got != "" {
		t.Fatalf("dangling groupId survived: %q", got)
	}
}

func TestNormalizeBreaksGroupCycle(t *testing.T) {
	t.Parallel()

	form := document.Form{Fields: []document.Field{
		{ID: "a", Type: document.FieldTypeGroup, Order: 0},
		{ID: "b", Type: document.FieldTypeGroup, Order: 1, GroupID: "a"},
	}}
	// Reparenting a under b would make each group the other's ancestor; the
	// mutation must come back with the cycle broken.
	into := "b"
	next := document.UpdateField(form, "a", document.FieldPatch{GroupID: &into})

	a, b := next.FieldByID("a"), next.FieldByID("b")
	if a.GroupID != "" && b.GroupID != "" {
		t.Fatalf("group cycle survived: a.GroupID=%q b.GroupID=%q", a.GroupID, b.GroupID)
	}
	if a.GroupID == "" && b.GroupID == "" {
		t.Fatalf("both references cleared, want only the cycle-closing one")
	}

	// A three-node chain closed back on its root breaks the same way and
	// leaves the remaining chain intact.
	form = document.Form{Fields: []document.Field{
		{ID: "g1", Type: document.FieldTypeGroup, Order: 0},
		{ID: "g2", Type: document.FieldTypeGroup, Order: 1, GroupID: "g1"},
		{ID: "g3", Type: document.FieldTypeGroup, Order: 2, GroupID: "g2"},
	}}
	into = "g3"
	next = document.UpdateField(form, "g1", document.FieldPatch{GroupID: &into})

	cleared := 0
	for _, id := range []string{"g1", "g2", "g3"} {
		if next.FieldByID(id).GroupID == "" {
			cleared++
		}
	}
	if cleared != 1 {
		t.Fatalf("cleared %d references, want exactly 1", cleared)
	}
}
