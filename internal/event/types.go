package event

import "strconv"

// Type identifies the kind of change an Event announces.
// Types are a closed enumeration; domain packages map their attributes onto
// these values through static tables instead of formatting names at runtime.
type Type uint16

const (
	TypeNone Type = iota

	// Collection level.
	ItemsAdded       // Items were added to a collection (values: the items)
	ItemsRemoved     // Items were removed from a collection (values: the items)
	Sorted           // A sorted view changed its order (no values)
	BucketChanged    // An aggregated bucket gained or lost records (values: the records)
	HistoryChanged   // The undo/redo stacks changed (no values)
	ClipboardChanged // The clipboard contents changed (values: new items)
	SettingChanged   // A setting changed (source: the key, values: new value)

	// Task.
	TaskChildAdded
	TaskChildRemoved
	TaskSubject
	TaskDescription
	TaskStartDate
	TaskDueDate
	TaskCompletionDate
	TaskPriority
	TaskBudget
	TaskHourlyFee
	TaskFixedFee
	TaskCategories
	TaskEfforts
	TaskTracking
	TaskDeleted

	// Effort.
	EffortTask
	EffortStart
	EffortStop
	EffortDescription
	EffortDeleted

	// Note.
	NoteChildAdded
	NoteChildRemoved
	NoteSubject
	NoteDescription
	NoteDeleted

	// Category.
	CategoryChildAdded
	CategoryChildRemoved
	CategorySubject
	CategoryDescription
	CategoryFiltered
	CategoryCategorizables
	CategoryDeleted

	typeCount
)

var typeNames = [typeCount]string{
	TypeNone:               "none",
	ItemsAdded:             "collection.add",
	ItemsRemoved:           "collection.remove",
	Sorted:                 "collection.sorted",
	BucketChanged:          "bucket.changed",
	HistoryChanged:         "history.changed",
	ClipboardChanged:       "clipboard.changed",
	SettingChanged:         "settings.changed",
	TaskChildAdded:         "task.child.add",
	TaskChildRemoved:       "task.child.remove",
	TaskSubject:            "task.subject",
	TaskDescription:        "task.description",
	TaskStartDate:          "task.startDate",
	TaskDueDate:            "task.dueDate",
	TaskCompletionDate:     "task.completionDate",
	TaskPriority:           "task.priority",
	TaskBudget:             "task.budget",
	TaskHourlyFee:          "task.hourlyFee",
	TaskFixedFee:           "task.fixedFee",
	TaskCategories:         "task.categories",
	TaskEfforts:            "task.efforts",
	TaskTracking:           "task.tracking",
	TaskDeleted:            "task.deleted",
	EffortTask:             "effort.task",
	EffortStart:            "effort.start",
	EffortStop:             "effort.stop",
	EffortDescription:      "effort.description",
	EffortDeleted:          "effort.deleted",
	NoteChildAdded:         "note.child.add",
	NoteChildRemoved:       "note.child.remove",
	NoteSubject:            "note.subject",
	NoteDescription:        "note.description",
	NoteDeleted:            "note.deleted",
	CategoryChildAdded:     "category.child.add",
	CategoryChildRemoved:   "category.child.remove",
	CategorySubject:        "category.subject",
	CategoryDescription:    "category.description",
	CategoryFiltered:       "category.filtered",
	CategoryCategorizables: "category.categorizables",
	CategoryDeleted:        "category.deleted",
}

// String returns the dotted name of the type.
func (t Type) String() string {
	if t < typeCount {
		return typeNames[t]
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// IsValid returns true if t is a known type other than TypeNone.
func (t Type) IsValid() bool {
	return t > TypeNone && t < typeCount
}
