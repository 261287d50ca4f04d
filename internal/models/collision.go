package models

// SWITRS field names. These follow the published collision, party and victim schemas
// and are used verbatim as column names.
const (
	FieldCaseID     = "CASEID"
	FieldPointX     = "POINT_X"
	FieldPointY     = "POINT_Y"
	FieldDate       = "DATE_"
	FieldTime       = "TIME_"
	FieldYear       = "YEAR_"
	FieldSeverity   = "CRASHSEV"
	FieldBicycle    = "BICCOL"
	FieldPedestrian = "PEDCOL"

	FieldVictimAge = "VAGE"
	FieldVictimSex = "VSEX"

	FieldMovement    = "MOVEMENT"
	FieldVehicleType = "VEHTYPE"
	FieldPartyRace   = "PRACE"
)

// Derived columns appended by the enrichment pipeline.
const (
	ColAvgVictimAge   = "AvgVAGE"
	ColAgeMinor       = "VAGE_Minor"
	ColAgeWorking     = "VAGE_Working"
	ColAgeSenior      = "VAGE_Senior"
	ColMobilityLimAge = "MobilLimAge"
	ColPrimeModeClass = "PrimeModeClass"
)

// IndicatorPrefix starts every pivoted indicator column name: F_<value>_<column>.
const IndicatorPrefix = "F_"

// Age bucket bounds in years: minor below MinorAgeLimit, senior from SeniorAgeLimit.
const (
	MinorAgeLimit  = 16
	SeniorAgeLimit = 65
)

// FlagYes is the value of a set SWITRS involvement flag.
const FlagYes = "Y"

// ModeClass is the most vulnerable mode involved in a collision.
type ModeClass string

const (
	ModeBicycle      ModeClass = "Bicycle"
	ModePedestrian   ModeClass = "Pedestrian"
	ModeMotorVehicle ModeClass = "Motor Vehicle"
)

// ModeClasses lists every mode in report order.
var ModeClasses = []ModeClass{ModeMotorVehicle, ModeBicycle, ModePedestrian}

// ClassifyMode returns the prime mode for a collision's bicycle and pedestrian flags.
// Bicycle takes precedence over pedestrian; anything else is a motor vehicle collision.
func ClassifyMode(bicycleFlag, pedestrianFlag string) ModeClass {
	switch {
	case bicycleFlag == FlagYes:
		return ModeBicycle
	case pedestrianFlag == FlagYes:
		return ModePedestrian
	default:
		return ModeMotorVehicle
	}
}

// Severity is the SWITRS collision severity code.
type Severity int

const (
	SeverityFatal         Severity = 1
	SeveritySevereInjury  Severity = 2
	SeverityVisibleInjury Severity = 3
	SeverityComplaintPain Severity = 4
)

// Severities lists the codes from least to most severe, the order the report plots them.
var Severities = []Severity{SeverityComplaintPain, SeverityVisibleInjury, SeveritySevereInjury, SeverityFatal}

// Label returns the display name of the severity.
func (s Severity) Label() string {
	switch s {
	case SeverityFatal:
		return "Fatality"
	case SeveritySevereInjury:
		return "Severe Injury"
	case SeverityVisibleInjury:
		return "Visible Injury"
	case SeverityComplaintPain:
		return "Complaint of Pain"
	}
	return "Unknown"
}

// RaceColumns are the party race indicators the report requires.
var RaceColumns = []string{"F_A_PRACE", "F_H_PRACE", "F_W_PRACE", "F_O_PRACE", "F_B_PRACE"}
