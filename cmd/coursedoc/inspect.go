package main

import (
	"fmt"
	"os"

	"github.com/akeil/coursedoc/pkg/render"
)

func doInspect(paths []string) error {
	var failed int
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		info, err := render.Inspect(data)
		if err != nil {
			fmt.Printf("%v %v: %v\n", crossmark, path, err)
			failed++
			continue
		}
		fmt.Printf("%v %v: %d pages, %d bytes\n", checkmark, path, info.Pages, info.Size)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files are not valid PDF documents", failed, len(paths))
	}
	return nil
}
