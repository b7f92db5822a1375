package ui

// tableController is implemented by list screens that support column
// navigation, sorting and value filters.
type tableController interface {
	NextColumn()
	PrevColumn()
	SortActiveColumn(desc bool)
	FilterBySelectedValue() bool
	ClearFilter() bool
	TableMeta() string
	Prefs() TablePrefs
}

var _ tableController = (*WorkoutsModel)(nil)
