// Package datamodel holds the shared vocabulary of the schema tree: the closed
// discriminator sets for sections and data fields, the granularity levels, and
// the DataValue fact that carriers store against a template.
package datamodel

// Granularity says whether a field or section tracks data once per product
// model or once per physical item. The zero value means "not applicable /
// inherited", which is a legal state for group sections only.
type Granularity string

const (
	GranularityUnset Granularity = ""
	GranularityModel Granularity = "model"
	GranularityItem  Granularity = "item"
)

// SectionType discriminates the closed set of section kinds.
type SectionType string

const (
	SectionTypeGroup      SectionType = "Group"
	SectionTypeRepeatable SectionType = "Repeatable"
)

// FieldType discriminates the closed set of data field kinds.
type FieldType string

const (
	FieldTypeText         FieldType = "TextField"
	FieldTypeNumeric      FieldType = "NumericField"
	FieldTypeFile         FieldType = "FileField"
	FieldTypePassportLink FieldType = "ProductPassportLink"
)

// Sector classifies a template by industry.
type Sector string

const (
	SectorBattery      Sector = "battery"
	SectorElectronics  Sector = "electronics"
	SectorTextile      Sector = "textile"
	SectorConstruction Sector = "construction"
	SectorOther        Sector = "other"
)
