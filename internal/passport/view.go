package passport

import (
	"traceport/internal/datamodel"
	"traceport/internal/passportdata"
	"traceport/internal/template"
)

// FieldNode is one rendered data field inside the tree view.
type FieldNode struct {
	Type  datamodel.FieldType `json:"type"`
	Name  string              `json:"name"`
	Value any                 `json:"value"`
}

// Node is one rendered section. A repeater root carries Rows, one entry per
// repeated row; group sections and row entries carry Fields plus nested
// Sections.
type Node struct {
	Name     string      `json:"name,omitempty"`
	Rows     []Node      `json:"rows,omitempty"`
	Fields   []FieldNode `json:"fields,omitempty"`
	Sections []Node      `json:"sections,omitempty"`
}

// TreeView is the nested rendering of a passport: root sections in template
// order, each descending through its sub-section edges.
type TreeView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Nodes       []Node `json:"nodes"`
}

// BuildTreeView renders the passport as a section tree. For a model-only view
// (nil item), root sections pinned to item granularity are dropped entirely;
// with an item present all roots show.
func BuildTreeView(t *template.Template, model *passportdata.Model, item *passportdata.Item) (TreeView, error) {
	var nodes []Node
	for _, section := range t.Sections() {
		if section.ParentID() != "" {
			continue
		}
		if item == nil && section.Granularity() == datamodel.GranularityItem {
			continue
		}
		var node Node
		var err error
		switch section.Type() {
		case datamodel.SectionTypeRepeatable:
			node, err = buildRepeaterNode(t, section, model, item)
		default:
			node, err = buildSectionNode(t, section, model, item, nil)
		}
		if err != nil {
			return TreeView{}, err
		}
		nodes = append(nodes, node)
	}
	return TreeView{Name: model.Name(), Description: model.Description(), Nodes: nodes}, nil
}

func buildRepeaterNode(t *template.Template, section template.Section, model *passportdata.Model, item *passportdata.Item) (Node, error) {
	pool := sectionValuePool(section, model, item)
	minRow, maxRow := 0, 0
	for i, v := range pool {
		if i == 0 || v.Row < minRow {
			minRow = v.Row
		}
		if v.Row > maxRow {
			maxRow = v.Row
		}
	}

	// The range is inclusive here: a repeater with no data still renders one
	// empty row so the section shows up as fillable.
	var rows []Node
	for rowIndex := minRow; rowIndex <= maxRow; rowIndex++ {
		row := rowIndex
		node, err := buildSectionNode(t, section, model, item, &row)
		if err != nil {
			return Node{}, err
		}
		rows = append(rows, node)
	}
	return Node{Name: section.Name(), Rows: rows}, nil
}

func buildSectionNode(t *template.Template, section template.Section, model *passportdata.Model, item *passportdata.Item, row *int) (Node, error) {
	values := sectionValuePool(section, model, item)
	if row != nil {
		values = valuesAtRow(values, *row)
	}

	var fields []FieldNode
	for _, field := range section.DataFields() {
		if item == nil && field.Granularity() == datamodel.GranularityItem {
			continue
		}
		var payload any
		if v, ok := findValue(values, field.ID()); ok {
			payload = v.Value
		}
		fields = append(fields, FieldNode{Type: field.Type(), Name: field.Name(), Value: payload})
	}

	var children []Node
	for _, subID := range section.SubSections() {
		sub, err := t.FindSectionByIDOrFail(subID)
		if err != nil {
			return Node{}, err
		}
		child, err := buildSectionNode(t, sub, model, item, row)
		if err != nil {
			return Node{}, err
		}
		children = append(children, child)
	}

	name := ""
	if section.Type() == datamodel.SectionTypeGroup {
		name = section.Name()
	}
	return Node{Name: name, Fields: fields, Sections: children}, nil
}
