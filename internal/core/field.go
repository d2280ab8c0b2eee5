package core

// Field identifies one of the editable attributes of a record.
type Field int

const (
	FieldName Field = iota
	FieldMethod
	FieldURL
	FieldBody
)

// FieldCount is the number of editable fields.
const FieldCount = 4

var fieldTitles = [FieldCount]string{"Name", "Request Type", "Url", "Body"}

// Fields lists the editable fields in display order.
func Fields() []Field {
	return []Field{FieldName, FieldMethod, FieldURL, FieldBody}
}

// Title returns the label shown above the field.
func (f Field) Title() string {
	if f < 0 || int(f) >= FieldCount {
		return ""
	}
	return fieldTitles[f]
}

// Next returns the following field, wrapping around.
func (f Field) Next() Field {
	return Field((int(f) + 1) % FieldCount)
}

// Prev returns the preceding field, wrapping around.
func (f Field) Prev() Field {
	return Field((int(f) - 1 + FieldCount) % FieldCount)
}
