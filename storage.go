package coursedoc

// A Project is a titled, ordered list of sections ready to be exported.
type Project struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Validate checks the project and all its sections.
func (p *Project) Validate() error {
	if len(p.Sections) == 0 {
		return NewEmptyInput()
	}
	return Validate(p.Sections)
}

// Storage loads and saves projects.
type Storage interface {
	// List returns the IDs of all stored projects.
	List() ([]string, error)
	// ReadProject reads the project with the given ID.
	ReadProject(id string) (*Project, error)
	// WriteProject saves a project under the given ID.
	WriteProject(id string, p *Project) error
}
