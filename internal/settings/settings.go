// Package settings holds user preferences as (section, option) string
// values. Changing a value announces event.SettingChanged with the Key as
// source, so observers can subscribe to a single key.
package settings

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/runoshun/tasktree/internal/event"
)

// ErrUnknownKey is returned for keys that are not in the defaults table.
var ErrUnknownKey = errors.New("unknown setting")

// Key identifies a setting.
type Key struct {
	Section string
	Option  string
}

// String returns "section.option".
func (k Key) String() string {
	return k.Section + "." + k.Option
}

// Known keys.
var (
	KeySortBy              = Key{"view", "sortby"}
	KeySortAscending       = Key{"view", "sortascending"}
	KeySortCaseSensitive   = Key{"view", "sortcasesensitive"}
	KeySortByStatusFirst   = Key{"view", "sortbystatusfirst"}
	KeyHideCompleted       = Key{"view", "hidecompletedtasks"}
	KeyHideInactive        = Key{"view", "hideinactivetasks"}
	KeyHideComposite       = Key{"view", "hidecompositetasks"}
	KeyTasksDue            = Key{"view", "tasksdue"}
	KeyCategoryMatchAll    = Key{"view", "categoryfiltermatchall"}
	KeyEffortPeriod        = Key{"view", "effortperiod"}
	KeyMarkParentCompleted = Key{"behavior", "markparentcompletedwhenallchildrencompleted"}
	KeyDueSoonDays         = Key{"behavior", "duesoondays"}
	KeyLogLevel            = Key{"log", "level"}
)

var defaults = map[Key]string{
	KeySortBy:              "subject",
	KeySortAscending:       "true",
	KeySortCaseSensitive:   "false",
	KeySortByStatusFirst:   "true",
	KeyHideCompleted:       "false",
	KeyHideInactive:        "false",
	KeyHideComposite:       "false",
	KeyTasksDue:            "unlimited",
	KeyCategoryMatchAll:    "false",
	KeyEffortPeriod:        "week",
	KeyMarkParentCompleted: "true",
	KeyDueSoonDays:         "1",
	KeyLogLevel:            "info",
}

// Keys returns every known key ordered by name.
func Keys() []Key {
	keys := make([]Key, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b Key) int {
		return strings.Compare(a.String(), b.String())
	})
	return keys
}

// Default returns the default value of key.
func Default(key Key) (string, bool) {
	v, ok := defaults[key]
	return v, ok
}

// ParseKey resolves "section.option" to a known key.
func ParseKey(name string) (Key, error) {
	section, option, ok := strings.Cut(strings.ToLower(name), ".")
	key := Key{Section: section, Option: option}
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	if _, known := defaults[key]; !known {
		return Key{}, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return key, nil
}

// Settings is the observable settings store.
type Settings struct {
	bus    *event.Bus
	values map[Key]string
}

// New creates a store holding the defaults.
func New(bus *event.Bus) *Settings {
	return &Settings{
		bus:    bus,
		values: make(map[Key]string),
	}
}

// Get returns the value of key, falling back to its default.
func (s *Settings) Get(key Key) string {
	if v, ok := s.values[key]; ok {
		return v
	}
	return defaults[key]
}

// Bool returns the value of key as a bool. Unparsable values read as the
// default.
func (s *Settings) Bool(key Key) bool {
	if v, err := strconv.ParseBool(s.Get(key)); err == nil {
		return v
	}
	v, _ := strconv.ParseBool(defaults[key])
	return v
}

// Int returns the value of key as an int. Unparsable values read as the
// default.
func (s *Settings) Int(key Key) int {
	if v, err := strconv.Atoi(s.Get(key)); err == nil {
		return v
	}
	v, _ := strconv.Atoi(defaults[key])
	return v
}

// Set changes key and reports whether the value changed.
func (s *Settings) Set(key Key, value string) (bool, error) {
	if _, ok := defaults[key]; !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if s.Get(key) == value {
		return false, nil
	}
	s.values[key] = value
	return true, event.New(key, event.SettingChanged, value).Send(s.bus)
}

// SetBool is Set for bool values.
func (s *Settings) SetBool(key Key, value bool) (bool, error) {
	return s.Set(key, strconv.FormatBool(value))
}

// Overrides returns the values that differ from the defaults.
func (s *Settings) Overrides() map[Key]string {
	out := make(map[Key]string)
	for k, v := range s.values {
		if v != defaults[k] {
			out[k] = v
		}
	}
	return out
}

// Observe registers obs for changes of the given keys.
func (s *Settings) Observe(obs event.Observer, keys ...Key) {
	for _, key := range keys {
		s.bus.Register(obs, event.SettingChanged, key)
	}
}

// Unobserve removes obs from every key it observes.
func (s *Settings) Unobserve(obs event.Observer) {
	s.bus.Remove(obs, event.SettingChanged)
}
