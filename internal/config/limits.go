package config

const (
	// MinDocumentNameLength is the minimum length for document names.
	// Single-character names are almost always accidental taps.
	MinDocumentNameLength = 2

	// MaxDocumentNameLength is the maximum length for document names.
	// Longer input is truncated rather than rejected so a pasted
	// sentence still makes a usable name.
	MaxDocumentNameLength = 100

	// MinTemplateNameLength is the minimum length for template names.
	MinTemplateNameLength = 2

	// MaxTemplateNameLength is the maximum length for template names.
	// Kept shorter than document names because template names appear
	// on inline keyboard buttons.
	MaxTemplateNameLength = 50

	// DocumentsPageSize is the number of documents per list page.
	DocumentsPageSize = 10

	// TemplatesPageSize is the number of templates per list page.
	TemplatesPageSize = 8

	// TemplatePickerPageSize is the number of templates per page in the
	// upload-flow template picker, smaller because the picker shares the
	// keyboard with skip and cancel rows.
	TemplatePickerPageSize = 5

	// ListLabelWidth is the widest a document button label may be in
	// list keyboards before it is shortened with an ellipsis.
	ListLabelWidth = 40

	// PickerLabelWidth is the label width in picker keyboards, narrower
	// because a selection mark may be prepended.
	PickerLabelWidth = 35
)
