package analysis

import "testing"

func TestParseInsight_Sectioned(t *testing.T) {
	raw := `## Summary
Values look fine overall.
## Key Findings
Hemoglobin slightly low.
## Potential Risks
Possible mild anemia.
## Recommendations
Discuss iron intake with your doctor.`

	insight := parseInsight(raw)

	if insight.Summary != "Values look fine overall." {
		t.Errorf("Summary got %q", insight.Summary)
	}
	if insight.KeyFindings != "Hemoglobin slightly low." {
		t.Errorf("KeyFindings got %q", insight.KeyFindings)
	}
	if insight.PotentialRisks != "Possible mild anemia." {
		t.Errorf("PotentialRisks got %q", insight.PotentialRisks)
	}
	if insight.Recommendations != "Discuss iron intake with your doctor." {
		t.Errorf("Recommendations got %q", insight.Recommendations)
	}
	if insight.Raw != raw {
		t.Error("Raw does not keep the verbatim answer")
	}
}

func TestParseInsight_MultilineSections(t *testing.T) {
	raw := `## Summary
Line one.
Line two.
## Recommendations
See a doctor.`

	insight := parseInsight(raw)
	if insight.Summary != "Line one.\nLine two." {
		t.Errorf("Summary got %q", insight.Summary)
	}
}

func TestParseInsight_UnsectionedFallsBackToFreeText(t *testing.T) {
	raw := "The model ignored the format and just wrote a paragraph."

	insight := parseInsight(raw)
	if insight.FreeText != raw {
		t.Errorf("FreeText got %q", insight.FreeText)
	}
	if insight.Summary != "" {
		t.Errorf("Summary should be empty, got %q", insight.Summary)
	}
}

func TestParseInsight_UnknownHeadingKeptAsFreeText(t *testing.T) {
	raw := `## Summary
Fine.
## Disclaimer
Not medical advice.`

	insight := parseInsight(raw)
	if insight.Summary != "Fine." {
		t.Errorf("Summary got %q", insight.Summary)
	}
	if insight.FreeText != "## Disclaimer\nNot medical advice." {
		t.Errorf("unknown section lost, FreeText: %q", insight.FreeText)
	}
}
