package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/runoshun/tasktree/internal/collection"
	"github.com/runoshun/tasktree/internal/event"
)

// Searchable is a composite item with text attributes.
type Searchable interface {
	collection.CompositeItem
	Subject() string
	Description() string
}

// SearchOptions configures a SearchFilter.
type SearchOptions struct {
	Text               string
	Regex              bool
	CaseSensitive      bool
	IncludeSubItems    bool // Match through ancestors and descendants
	IncludeDescription bool
}

// SearchFilter keeps the items whose text matches a search string. With
// IncludeSubItems an item also matches when one of its ancestors or
// descendants matches, so the path to every hit stays visible.
type SearchFilter[T Searchable] struct {
	*TreeFilter[T]
	opts    SearchOptions
	pattern *regexp2.Regexp
}

// searchTimeout bounds a single match; backtracking patterns can explode.
const searchTimeout = 100 * time.Millisecond

// NewSearchFilter creates a search filter over source.
func NewSearchFilter[T Searchable](source collection.Source[T], opts SearchOptions) (*SearchFilter[T], error) {
	sf := &SearchFilter[T]{}
	if err := sf.compile(opts); err != nil {
		return nil, err
	}
	sf.TreeFilter = NewTreeFilter[T](source, sf.matches)
	sf.owner = sf
	sf.ResetOn(
		event.TaskSubject, event.TaskDescription, event.TaskChildAdded, event.TaskChildRemoved,
		event.NoteSubject, event.NoteDescription, event.NoteChildAdded, event.NoteChildRemoved,
		event.CategorySubject, event.CategoryDescription, event.CategoryChildAdded, event.CategoryChildRemoved,
	)
	return sf, nil
}

// Options returns the current search options.
func (sf *SearchFilter[T]) Options() SearchOptions {
	return sf.opts
}

// SetOptions changes the search and resets the filter.
func (sf *SearchFilter[T]) SetOptions(opts SearchOptions) error {
	if err := sf.compile(opts); err != nil {
		return err
	}
	return sf.Reset()
}

func (sf *SearchFilter[T]) compile(opts SearchOptions) error {
	expr := opts.Text
	if !opts.Regex {
		expr = regexp2.Escape(expr)
	}
	flags := regexp2.RegexOptions(regexp2.None)
	if !opts.CaseSensitive {
		flags |= regexp2.IgnoreCase
	}
	pattern, err := regexp2.Compile(expr, flags)
	if err != nil {
		return fmt.Errorf("compile search %q: %w", opts.Text, err)
	}
	pattern.MatchTimeout = searchTimeout
	sf.opts = opts
	sf.pattern = pattern
	return nil
}

func (sf *SearchFilter[T]) matches(item T) bool {
	if strings.TrimSpace(sf.opts.Text) == "" {
		return true
	}
	if sf.matchesOwn(item) {
		return true
	}
	if !sf.opts.IncludeSubItems {
		return false
	}
	for _, ancestor := range item.Ancestors() {
		if a, ok := ancestor.(T); ok && sf.matchesOwn(a) {
			return true
		}
	}
	for _, child := range item.Children(true) {
		if c, ok := child.(T); ok && !c.IsDeleted() && sf.matchesOwn(c) {
			return true
		}
	}
	return false
}

func (sf *SearchFilter[T]) matchesOwn(item T) bool {
	if sf.matchText(item.Subject()) {
		return true
	}
	return sf.opts.IncludeDescription && sf.matchText(item.Description())
}

// matchText treats a timed out match as a miss.
func (sf *SearchFilter[T]) matchText(text string) bool {
	ok, err := sf.pattern.MatchString(text)
	return err == nil && ok
}
