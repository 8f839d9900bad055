package compliance

import (
	"regexp"

	"github.com/deadly-nightshade/medguard/internal/model"
)

// Controlled substances flagged when mentioned without DEA/prescription
// context. Schedules follow the DEA listing.
type controlledSubstance struct {
	Name     string
	Schedule string
}

var controlledSubstances = []controlledSubstance{
	{"fentanyl", "II"},
	{"oxycodone", "II"},
	{"hydrocodone", "II"},
	{"morphine", "II"},
	{"methadone", "II"},
	{"adderall", "II"},
	{"amphetamine", "II"},
	{"ketamine", "III"},
	{"alprazolam", "IV"},
	{"xanax", "IV"},
	{"diazepam", "IV"},
	{"valium", "IV"},
	{"lorazepam", "IV"},
	{"tramadol", "IV"},
	{"codeine", "V"},
}

var prescriptionContextRe = regexp.MustCompile(`(?i)\b(?:dea|prescription|prescribed|prescriber|controlled\s+substance|schedule\s+(?:ii|iii|iv|v|2|3|4|5))\b`)

// High-risk medications with FDA-mandated disclosures. Requirement is
// either a boxed warning or a REMS program.
type fdaListedMedication struct {
	Name        string
	Requirement string
	Severity    model.Severity
}

var fdaListedMedications = []fdaListedMedication{
	{"warfarin", "black_box_warning", model.SeverityHigh},
	{"methotrexate", "black_box_warning", model.SeverityHigh},
	{"clozapine", "black_box_warning", model.SeverityHigh},
	{"amiodarone", "black_box_warning", model.SeverityMedium},
	{"lithium", "black_box_warning", model.SeverityMedium},
	{"fentanyl", "black_box_warning", model.SeverityHigh},
	{"fluoroquinolone", "black_box_warning", model.SeverityLow},
	{"isotretinoin", "rems", model.SeverityHigh},
	{"thalidomide", "rems", model.SeverityHigh},
	{"esketamine", "rems", model.SeverityMedium},
}

var (
	blackBoxDisclosureRe = regexp.MustCompile(`(?i)\b(?:black\s*box|boxed)\s+warning\b`)
	remsDisclosureRe     = regexp.MustCompile(`(?i)\brems\b|risk\s+evaluation\s+and\s+mitigation`)
)

// Mandatory warnings: medications whose discussion must carry a specific
// safety message. The Mentions regex detects the topic, the Satisfied regex
// detects the warning.
type mandatoryWarningRule struct {
	Medication string
	Warning    string
	Satisfied  *regexp.Regexp
}

var mandatoryWarningRules = []mandatoryWarningRule{
	{"warfarin", "Discussions of warfarin must mention bleeding risk", regexp.MustCompile(`(?i)\bbleed`)},
	{"methotrexate", "Discussions of methotrexate must mention liver toxicity risk", regexp.MustCompile(`(?i)\bliver\b|hepatotox`)},
	{"isotretinoin", "Discussions of isotretinoin must mention pregnancy and birth-defect risk", regexp.MustCompile(`(?i)\bpregnan|birth\s+defect`)},
	{"fentanyl", "Discussions of fentanyl must mention respiratory depression risk", regexp.MustCompile(`(?i)respiratory\s+depression|\bbreathing\b`)},
	{"clozapine", "Discussions of clozapine must mention blood-count monitoring", regexp.MustCompile(`(?i)\bblood\b|neutropenia|agranulocytosis`)},
}

// High-risk medications that require a caution or monitoring keyword within
// a short window of the mention.
var highRiskMedications = []string{
	"warfarin",
	"insulin",
	"methotrexate",
	"digoxin",
	"lithium",
	"heparin",
	"amiodarone",
	"fentanyl",
	"chemotherapy",
	"opioid",
}

var cautionRe = regexp.MustCompile(`(?i)\b(?:monitor|caution|warning|consult|doctor)`)

// cautionWindow is the number of characters on each side of a medication
// mention searched for a caution keyword.
const cautionWindow = 100

var (
	dosingRe  = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*(?:mg|mcg|g|ml|units?)\b`)
	consultRe = regexp.MustCompile(`(?i)\b(?:consult|doctor|physician|provider|pharmacist|healthcare\s+professional)\b`)
)
