package domain

import "github.com/runoshun/tasktree/internal/event"

// Kind identifies the entity type.
type Kind uint8

const (
	KindTask Kind = iota + 1
	KindEffort
	KindNote
	KindCategory
	KindBucket // Derived effort aggregate, never persisted
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindTask:
		return "task"
	case KindEffort:
		return "effort"
	case KindNote:
		return "note"
	case KindCategory:
		return "category"
	case KindBucket:
		return "bucket"
	default:
		return "unknown"
	}
}

// Attribute identifies an observable entity attribute.
type Attribute uint8

const (
	AttrSubject Attribute = iota + 1
	AttrDescription
	AttrStartDate
	AttrDueDate
	AttrCompletionDate
	AttrPriority
	AttrBudget
	AttrHourlyFee
	AttrFixedFee
	AttrCategories
	AttrEfforts
	AttrTracking
	AttrTask
	AttrStart
	AttrStop
	AttrFiltered
	AttrCategorizables
	AttrDeleted
)

var attributeNames = map[Attribute]string{
	AttrSubject:        "subject",
	AttrDescription:    "description",
	AttrStartDate:      "startdate",
	AttrDueDate:        "duedate",
	AttrCompletionDate: "completiondate",
	AttrPriority:       "priority",
	AttrBudget:         "budget",
	AttrHourlyFee:      "hourlyfee",
	AttrFixedFee:       "fixedfee",
	AttrCategories:     "categories",
	AttrEfforts:        "efforts",
	AttrTracking:       "tracking",
	AttrTask:           "task",
	AttrStart:          "start",
	AttrStop:           "stop",
	AttrFiltered:       "filtered",
	AttrCategorizables: "categorizables",
	AttrDeleted:        "deleted",
}

// String returns the attribute name as used in settings values.
func (a Attribute) String() string {
	if name, ok := attributeNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAttribute resolves an attribute name.
func ParseAttribute(name string) (Attribute, bool) {
	for attr, n := range attributeNames {
		if n == name {
			return attr, true
		}
	}
	return 0, false
}

// attributeEvents maps (kind, attribute) to the event type announcing a
// change of that attribute.
var attributeEvents = map[Kind]map[Attribute]event.Type{
	KindTask: {
		AttrSubject:        event.TaskSubject,
		AttrDescription:    event.TaskDescription,
		AttrStartDate:      event.TaskStartDate,
		AttrDueDate:        event.TaskDueDate,
		AttrCompletionDate: event.TaskCompletionDate,
		AttrPriority:       event.TaskPriority,
		AttrBudget:         event.TaskBudget,
		AttrHourlyFee:      event.TaskHourlyFee,
		AttrFixedFee:       event.TaskFixedFee,
		AttrCategories:     event.TaskCategories,
		AttrEfforts:        event.TaskEfforts,
		AttrTracking:       event.TaskTracking,
		AttrDeleted:        event.TaskDeleted,
	},
	KindEffort: {
		AttrDescription: event.EffortDescription,
		AttrTask:        event.EffortTask,
		AttrStart:       event.EffortStart,
		AttrStop:        event.EffortStop,
		AttrDeleted:     event.EffortDeleted,
	},
	KindNote: {
		AttrSubject:     event.NoteSubject,
		AttrDescription: event.NoteDescription,
		AttrDeleted:     event.NoteDeleted,
	},
	KindCategory: {
		AttrSubject:        event.CategorySubject,
		AttrDescription:    event.CategoryDescription,
		AttrFiltered:       event.CategoryFiltered,
		AttrCategorizables: event.CategoryCategorizables,
		AttrDeleted:        event.CategoryDeleted,
	},
}

// childEvents maps a composite kind to its (child added, child removed)
// event types.
var childEvents = map[Kind][2]event.Type{
	KindTask:     {event.TaskChildAdded, event.TaskChildRemoved},
	KindNote:     {event.NoteChildAdded, event.NoteChildRemoved},
	KindCategory: {event.CategoryChildAdded, event.CategoryChildRemoved},
}

// EventType returns the event type announcing a change of attr on entities
// of kind k, or event.TypeNone when the attribute is not observable.
func EventType(k Kind, attr Attribute) event.Type {
	return attributeEvents[k][attr]
}

// ChildAddedEvent returns the child-added event type of a composite kind.
func ChildAddedEvent(k Kind) event.Type {
	return childEvents[k][0]
}

// ChildRemovedEvent returns the child-removed event type of a composite kind.
func ChildRemovedEvent(k Kind) event.Type {
	return childEvents[k][1]
}

// EventTypes returns every attribute and child event type of kind k.
func EventTypes(k Kind) []event.Type {
	var types []event.Type
	for attr := AttrSubject; attr <= AttrDeleted; attr++ {
		if typ := EventType(k, attr); typ != event.TypeNone {
			types = append(types, typ)
		}
	}
	if pair, ok := childEvents[k]; ok {
		types = append(types, pair[0], pair[1])
	}
	return types
}
