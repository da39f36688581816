package coursedoc

import (
	"strings"
)

// SectionFilter is a predicate used to select sections.
type SectionFilter func(s Section) bool

// IsText matches text sections.
func IsText(s Section) bool {
	return s.Kind == Text
}

// IsImage matches image sections.
func IsImage(s Section) bool {
	return s.Kind == Image
}

// HasCourseCode matches sections with a non-empty course code.
func HasCourseCode(s Section) bool {
	return s.CourseCode() != ""
}

// IsSelected matches sections that are selected for bulk actions.
func IsSelected(s Section) bool {
	return s.Selected
}

// IsCover matches image sections that qualify as a cover page.
func IsCover(s Section) bool {
	return IsImage(s) && HasCourseCode(s)
}

// MatchTitle matches sections whose title contains the given string
// (case-insensitive).
func MatchTitle(match string) SectionFilter {
	match = strings.ToLower(match)
	return func(s Section) bool {
		return strings.Contains(strings.ToLower(s.Title), match)
	}
}

// Filter returns the sections that match all of the given filters,
// preserving their order.
func Filter(sections []Section, filters ...SectionFilter) []Section {
	result := make([]Section, 0, len(sections))
	for _, s := range sections {
		if matchAll(s, filters) {
			result = append(result, s)
		}
	}
	return result
}

func matchAll(s Section, filters []SectionFilter) bool {
	for _, f := range filters {
		if !f(s) {
			return false
		}
	}
	return true
}

// Cover returns the index of the cover section or -1 if there is none.
//
// The cover is the first image section with a course code.
func Cover(sections []Section) int {
	for i, s := range sections {
		if IsCover(s) {
			return i
		}
	}
	return -1
}

// Parts is an ordered section list split into the three layout groups.
type Parts struct {
	// Cover is nil if no section qualifies as a cover.
	Cover *Section
	// Body holds all text sections in list order.
	Body []Section
	// Trailing holds all image sections except the cover in list order.
	Trailing []Section
}

// Partition splits the sections into cover, body text and trailing images.
func Partition(sections []Section) Parts {
	var p Parts
	cover := Cover(sections)
	if cover >= 0 {
		c := sections[cover]
		p.Cover = &c
	}

	p.Body = make([]Section, 0, len(sections))
	p.Trailing = make([]Section, 0)
	for i, s := range sections {
		switch {
		case i == cover:
			continue
		case IsText(s):
			p.Body = append(p.Body, s)
		case IsImage(s):
			p.Trailing = append(p.Trailing, s)
		}
	}

	return p
}

// ApplyTitleColor sets the title color for all text sections
// and returns the updated copy of the list.
func ApplyTitleColor(sections []Section, c Color) []Section {
	result := make([]Section, len(sections))
	for i, s := range sections {
		if IsText(s) {
			var m Metadata
			if s.Metadata != nil {
				m = *s.Metadata
			}
			color := c
			m.TitleColor = &color
			s.Metadata = &m
		}
		result[i] = s
	}
	return result
}

// Validate checks all sections and returns the first error.
func Validate(sections []Section) error {
	seen := make(map[string]bool, len(sections))
	for i, s := range sections {
		err := s.Validate()
		if err != nil {
			return Wrap(err, "section %d", i)
		}
		if s.ID != "" {
			if seen[s.ID] {
				return NewValidationError("duplicate section id %q", s.ID)
			}
			seen[s.ID] = true
		}
	}
	return nil
}
