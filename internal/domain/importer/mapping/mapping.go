// Package mapping resolves human-readable sheet headers to canonical domain
// fields. Exports from the paired composer use Chinese labels; files from
// other tools use English or ad-hoc names, so every field carries an ordered
// synonym list. Explicit user mappings always win over synonyms.
package mapping

import (
	"strings"
)

// Field is the canonical, sheet-independent name a column maps to.
type Field string

// Transaction ledger fields.
const (
	FieldDate        Field = "date"
	FieldTime        Field = "time"
	FieldType        Field = "type"
	FieldCategory    Field = "category"
	FieldIncome      Field = "income"
	FieldExpense     Field = "expense"
	FieldAccount     Field = "account"
	FieldNote        Field = "note"
	FieldTags        Field = "tags"
	FieldBalance     Field = "balance"
	FieldTotalAssets Field = "total_assets"
)

// Account / category sheet fields.
const (
	FieldName      Field = "name"
	FieldCurrency  Field = "currency"
	FieldIsDefault Field = "is_default"
	FieldIcon      Field = "icon"
	FieldColor     Field = "color"
	FieldSort      Field = "sort"
	FieldParent    Field = "parent"
)

// Task / habit sheet fields.
const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldPriority    Field = "priority"
	FieldDueDate     Field = "due_date"
	FieldStatus      Field = "status"
	FieldPeriod      Field = "period"
	FieldTarget      Field = "target"
)

// defaultSynonyms lists header labels per field in strict priority order:
// the composer's localized label first, then the English label, then
// domain-specific variants seen in the wild.
var defaultSynonyms = map[Field][]string{
	FieldDate:        {"日期", "date", "交易日期", "transaction date"},
	FieldTime:        {"时间", "time", "交易时间"},
	FieldType:        {"类型", "type", "交易类型"},
	FieldCategory:    {"分类", "category", "类别"},
	FieldIncome:      {"收入", "income", "收入金额", "credit"},
	FieldExpense:     {"支出", "expense", "支出金额", "debit"},
	FieldAccount:     {"账户", "account", "账户名称", "account name"},
	FieldNote:        {"备注", "note", "notes", "memo", "说明"},
	FieldTags:        {"标签", "tags", "tag"},
	FieldBalance:     {"余额", "balance", "账户余额", "account balance"},
	FieldTotalAssets: {"总资产", "total assets", "资产总额", "net assets"},

	FieldName:      {"名称", "name", "账户名", "分类名"},
	FieldCurrency:  {"币种", "currency", "货币"},
	FieldIsDefault: {"默认", "default", "is default", "默认账户"},
	FieldIcon:      {"图标", "icon"},
	FieldColor:     {"颜色", "color", "colour"},
	FieldSort:      {"排序", "sort", "sort order", "顺序"},
	FieldParent:    {"父分类", "parent", "parent category", "上级分类"},

	FieldTitle:       {"标题", "title", "任务", "task"},
	FieldDescription: {"描述", "description", "详情"},
	FieldPriority:    {"优先级", "priority"},
	FieldDueDate:     {"截止日期", "due date", "due", "到期日"},
	FieldStatus:      {"状态", "status"},
	FieldPeriod:      {"周期", "period", "frequency", "频率"},
	FieldTarget:      {"目标", "target", "目标次数", "target count"},
}

// Synonyms returns the default header synonyms for a field, highest priority
// first. The returned slice must not be mutated.
func Synonyms(field Field) []string {
	return defaultSynonyms[field]
}

// Transform rewrites a raw display string before domain-level parsing, e.g.
// stripping currency symbols from amount columns.
type Transform func(string) string

// Mapping binds a source header to a canonical field, optionally with a
// value transform. Transforms are looked up by target field, not by column,
// so the same transform applies no matter which physical column supplies the
// field.
type Mapping struct {
	SourceHeader string
	Field        Field
	Transform    Transform
}

// ResolveColumn finds the column index supplying the canonical field.
//
// Resolution order: an explicit mapping targeting the field wins outright —
// if its source header is absent the field resolves to -1 without ever
// consulting synonyms. Otherwise each default synonym is tried in priority
// order against the headers. -1 means the field is absent from this sheet,
// which callers treat as "optional field missing", not as an error.
func ResolveColumn(field Field, headers []string, mappings []Mapping) int {
	for _, m := range mappings {
		if m.Field != field {
			continue
		}
		return headerIndex(headers, m.SourceHeader)
	}
	for _, syn := range defaultSynonyms[field] {
		if idx := headerIndex(headers, syn); idx >= 0 {
			return idx
		}
	}
	return -1
}

// TransformFor returns the transform registered for a target field, or nil.
func TransformFor(field Field, mappings []Mapping) Transform {
	for _, m := range mappings {
		if m.Field == field && m.Transform != nil {
			return m.Transform
		}
	}
	return nil
}

// Apply runs the field's transform over a raw value, if one is registered.
func Apply(field Field, mappings []Mapping, raw string) string {
	if t := TransformFor(field, mappings); t != nil {
		return t(raw)
	}
	return raw
}

func headerIndex(headers []string, label string) int {
	want := normalizeHeader(label)
	if want == "" {
		return -1
	}
	for i, h := range headers {
		if normalizeHeader(h) == want {
			return i
		}
	}
	return -1
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// StripCurrency removes common currency symbols and grouping spaces from an
// amount string. Registered as the default transform for amount-bearing
// fields when the caller supplies none.
func StripCurrency(s string) string {
	replacer := strings.NewReplacer(
		"¥", "", "￥", "", "$", "", "€", "", "£", "",
		"CNY", "", "USD", "", "EUR", "",
		",", "", " ", "", " ", "",
	)
	return strings.TrimSpace(replacer.Replace(s))
}
