package services

import "strings"

// AMBestGrade is the display view of an insurer's financial-strength rating.
type AMBestGrade struct {
	Rating string  `json:"rating"`
	Stars  float64 `json:"stars"`
	Color  string  `json:"color"`
	Label  string  `json:"label"`
}

const noRatingLabel = "No Rating"

var amBestStars = map[string]float64{
	"A++": 5,
	"A+":  4.5,
	"A":   4.5,
	"A-":  4,
	"B++": 4,
	"B+":  4,
	"B":   3.5,
	"B-":  3.5,
	"C++": 3,
	"C+":  3,
	"C":   2,
	"C-":  2,
	"D":   1,
	"E":   0.5,
	"F":   0.5,
}

var amBestLabels = map[string]string{
	"A++": "Superior",
	"A+":  "Superior",
	"A":   "Excellent",
	"A-":  "Excellent",
	"B++": "Good",
	"B+":  "Good",
	"B":   "Fair",
	"B-":  "Fair",
	"C++": "Marginal",
	"C+":  "Marginal",
	"C":   "Weak",
	"C-":  "Weak",
	"D":   "Poor",
	"E":   "Under Regulatory Supervision",
	"F":   "In Liquidation",
}

func normalizeGrade(rating string) string {
	return strings.ToUpper(strings.TrimSpace(rating))
}

// AMBestToStars maps a letter grade to the 0-5 star scale. Unknown, empty and
// "N/A" ratings map to 0.
func AMBestToStars(rating string) float64 {
	return amBestStars[normalizeGrade(rating)]
}

// AMBestColor returns the semantic color bucket for a grade.
func AMBestColor(rating string) string {
	stars := AMBestToStars(rating)
	switch {
	case stars >= 4.5:
		return "green"
	case stars >= 4:
		return "blue"
	case stars >= 3:
		return "yellow"
	case stars > 0:
		return "red"
	default:
		return "gray"
	}
}

// AMBestLabel returns the human-readable meaning of a grade.
func AMBestLabel(rating string) string {
	if label, ok := amBestLabels[normalizeGrade(rating)]; ok {
		return label
	}
	return noRatingLabel
}

// ClassifyAMBest bundles stars, color and label for one rating.
func ClassifyAMBest(rating string) AMBestGrade {
	grade := normalizeGrade(rating)
	if _, ok := amBestStars[grade]; !ok {
		grade = ""
	}
	return AMBestGrade{
		Rating: grade,
		Stars:  AMBestToStars(rating),
		Color:  AMBestColor(rating),
		Label:  AMBestLabel(rating),
	}
}
