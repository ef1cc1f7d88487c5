package service

import (
	"fmt"
	"regexp"

	"trawler/internal/core/discovery"
)

var pipeToShell = regexp.MustCompile(`(?i)\b(curl|wget)\b[^|]*\|\s*(sudo\s+)?(ba|z)?sh\b`)

// securityNotes flags picks a reader should look at twice before running
func securityNotes(picks []discovery.CuratedDiscovery) []string {
	notes := []string{}
	for _, d := range picks {
		for _, step := range d.Install.Steps {
			if pipeToShell.MatchString(step) {
				notes = append(notes, fmt.Sprintf("%s: install pipes a remote script into a shell, read it first", d.Title))
				break
			}
		}
		if d.Category == discovery.CategorySecurity {
			notes = append(notes, fmt.Sprintf("%s: security tooling, review the permissions it asks for", d.Title))
		}
	}
	return notes
}
