package main

import (
	"fmt"
	"strings"

	"github.com/akeil/coursedoc"
	"github.com/akeil/coursedoc/internal/logging"
)

func doLs(s settings, match string) error {
	repo := s.storage()
	ids, err := repo.List()
	if err != nil {
		return err
	}

	match = strings.ToLower(match)
	found := 0
	for _, id := range ids {
		p, err := repo.ReadProject(id)
		if err != nil {
			logging.Warning("Failed to read project %q: %v", id, err)
			fmt.Printf("%v %v (unreadable)\n", crossmark, id)
			continue
		}
		if match != "" && !strings.Contains(strings.ToLower(p.Title), match) {
			continue
		}
		if found == 0 {
			fmt.Println("Projects")
			fmt.Println("--------")
		}
		found++
		showProject(id, p)
	}

	if found == 0 {
		fmt.Println("Found no matching projects.")
	}
	return nil
}

func showProject(id string, p *coursedoc.Project) {
	texts := len(coursedoc.Filter(p.Sections, coursedoc.IsText))
	images := len(coursedoc.Filter(p.Sections, coursedoc.IsImage))
	selected := len(coursedoc.Filter(p.Sections, coursedoc.IsSelected))

	cover := " "
	if coursedoc.Cover(p.Sections) >= 0 {
		cover = "c"
	}

	fmt.Printf("%v %-24v | %v | %d text, %d images", cover, id, p.Title, texts, images)
	if selected > 0 {
		fmt.Printf(", %d selected", selected)
	}
	fmt.Println()
}
