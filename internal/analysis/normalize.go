package analysis

import (
	"strings"

	"github.com/biolens/BioLensAPI/internal/domain/reportModel"
)

// parseInsight splits a model answer into the sections the instruction asks
// for. A model that ignored the section format still produces a usable
// insight: everything lands in FreeText and Raw keeps the verbatim answer.
func parseInsight(raw string) reportModel.Insight {
	insight := reportModel.Insight{Raw: raw}

	sections := map[string]*string{
		"summary":         &insight.Summary,
		"key findings":    &insight.KeyFindings,
		"potential risks": &insight.PotentialRisks,
		"recommendations": &insight.Recommendations,
	}

	var current *string
	var free []string
	sawSection := false

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if heading, ok := strings.CutPrefix(trimmed, "## "); ok {
			key := strings.ToLower(strings.TrimSpace(heading))
			if target, known := sections[key]; known {
				current = target
				sawSection = true
				continue
			}
			// unrecognized heading, keep the line so nothing the model wrote is lost
			current = nil
			free = append(free, line)
			continue
		}

		if current != nil {
			if *current == "" {
				*current = trimmed
			} else {
				*current = *current + "\n" + trimmed
			}
			continue
		}
		free = append(free, line)
	}

	for _, target := range sections {
		*target = strings.TrimSpace(*target)
	}

	if !sawSection {
		insight.FreeText = strings.TrimSpace(raw)
	} else {
		insight.FreeText = strings.TrimSpace(strings.Join(free, "\n"))
	}
	return insight
}
