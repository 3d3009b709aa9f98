package render

// Grade labels indexed by severity level.
var gradeLabels = [...]string{
	"No DR",
	"Mild",
	"Moderate",
	"Severe",
	"Proliferative DR",
}

// severityColors is the fixed five-step scale, lowest severity first.
var severityColors = [...]string{
	"text-green-400",
	"text-yellow-400",
	"text-orange-400",
	"text-red-400",
	"text-red-600",
}

// NeutralColor is used for any level outside the table.
const NeutralColor = "text-gray-400"

// UnknownGrade labels levels outside the table.
const UnknownGrade = "Unknown"

// MaxSeverity is the highest mapped severity level.
const MaxSeverity = len(severityColors) - 1

// SeverityColor maps a severity level to its color class.
func SeverityColor(level int) string {
	if level < 0 || level > MaxSeverity {
		return NeutralColor
	}
	return severityColors[level]
}

// GradeLabel names the retinopathy grade for a severity level.
func GradeLabel(level int) string {
	if level < 0 || level >= len(gradeLabels) {
		return UnknownGrade
	}
	return gradeLabels[level]
}

// GradeLabels returns all grade names in severity order.
func GradeLabels() []string {
	out := make([]string, len(gradeLabels))
	copy(out, gradeLabels[:])
	return out
}
