package coursedoc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind distinguishes text from image sections.
type Kind int

const (
	Text Kind = iota
	Image
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Image:
		return "image"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalJSON writes the kind as "text" or "image".
func (k Kind) MarshalJSON() ([]byte, error) {
	switch k {
	case Text, Image:
		return json.Marshal(k.String())
	default:
		return nil, NewValidationError("invalid section kind %d", int(k))
	}
}

// UnmarshalJSON reads the kind from "text" or "image".
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	err := json.Unmarshal(data, &s)
	if err != nil {
		return err
	}

	switch strings.ToLower(s) {
	case "text":
		*k = Text
	case "image":
		*k = Image
	default:
		return NewValidationError("invalid section type %q", s)
	}
	return nil
}

// Metadata holds the optional presentation hints for a section.
type Metadata struct {
	// CourseCode marks an image section as the cover and is shown
	// as the eyebrow caption.
	CourseCode string `json:"courseCode,omitempty"`
	// Subtitle is shown below the title on the cover.
	Subtitle string `json:"subtitle,omitempty"`
	// TitleColor overrides the heading color of a text section.
	TitleColor *Color `json:"titleColor,omitempty"`
}

// A Section is one block of document content, either text or an image.
type Section struct {
	ID    string `json:"id"`
	Kind  Kind   `json:"type"`
	Title string `json:"title"`
	// Content is the body text of a text section.
	// Image sections may carry a data URL here instead of Image.
	Content string `json:"content,omitempty"`
	// Image is the encoded raster image of an image section.
	Image    []byte    `json:"image,omitempty"`
	Selected bool      `json:"selected"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// NewText creates a text section with a new ID.
func NewText(title, content string) Section {
	return Section{
		ID:      uuid.New().String(),
		Kind:    Text,
		Title:   title,
		Content: content,
	}
}

// NewImage creates an image section with a new ID.
func NewImage(title string, data []byte) Section {
	return Section{
		ID:    uuid.New().String(),
		Kind:  Image,
		Title: title,
		Image: data,
	}
}

// NewCover creates an image section that is used as the cover page.
func NewCover(title string, data []byte, courseCode, subtitle string) Section {
	s := NewImage(title, data)
	s.Metadata = &Metadata{
		CourseCode: courseCode,
		Subtitle:   subtitle,
	}
	return s
}

// CourseCode returns the course code or an empty string.
func (s Section) CourseCode() string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata.CourseCode
}

// Subtitle returns the subtitle or an empty string.
func (s Section) Subtitle() string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata.Subtitle
}

// TitleColor returns the custom title color, if one is set.
func (s Section) TitleColor() (Color, bool) {
	if s.Metadata == nil || s.Metadata.TitleColor == nil {
		return Color{}, false
	}
	return *s.Metadata.TitleColor, true
}

// ImageData returns the encoded image payload.
//
// If the section has no binary payload but its content is a data URL,
// the data URL is decoded.
func (s Section) ImageData() ([]byte, error) {
	if s.Kind != Image {
		return nil, NewValidationError("section %q is not an image", s.ID)
	}
	if len(s.Image) != 0 {
		return s.Image, nil
	}
	if IsDataURL(s.Content) {
		data, _, err := DecodeDataURL(s.Content)
		return data, err
	}
	return nil, fmt.Errorf("image section %q has no image data", s.ID)
}

// Validate checks the section for structural errors.
func (s Section) Validate() error {
	// a missing image payload is not checked here; the image is skipped
	// when it is loaded
	switch s.Kind {
	case Text, Image:
	default:
		return NewValidationError("section %q has invalid kind %d", s.ID, int(s.Kind))
	}

	return nil
}
