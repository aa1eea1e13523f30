package clinical

import "fmt"

// StatusKind classifies a blood-pressure status.
type StatusKind string

const (
	// KindDanger is hypotension: fluid removal should stop.
	KindDanger StatusKind = "danger"
	// KindWarning is blood pressure above the age-adjusted limits.
	KindWarning StatusKind = "warning"
)

// Blood-pressure limits.
const (
	HypotensionSystolic  = 90
	HypotensionDiastolic = 60

	ElderlyAge = 65

	SystolicLimit        = 140
	SystolicLimitElderly = 150
	DiastolicLimit       = 90
)

// HypotensionAdvice is shown with every danger status.
const HypotensionAdvice = "Stop fluid removal immediately and consult the medical staff on duty."

// BPStatus is an active blood-pressure finding.
type BPStatus struct {
	Kind    StatusKind
	Message string
	Advice  string
	// Limits used for the hypertension check; zero for danger statuses.
	SystolicLimit  int
	DiastolicLimit int
}

// IsDanger reports whether the status is hypotension.
func (s *BPStatus) IsDanger() bool {
	return s != nil && s.Kind == KindDanger
}

// Limits returns the systolic and diastolic limits for age.
// Age 0 means unknown and uses the non-elderly limits.
func Limits(age int) (systolic, diastolic int) {
	if age >= ElderlyAge {
		return SystolicLimitElderly, DiastolicLimit
	}
	return SystolicLimit, DiastolicLimit
}

// EvaluateBloodPressure checks a reading against hypotension and
// age-adjusted hypertension limits. It returns nil when either value is
// missing or the reading is within range. Hypotension is checked first and
// always wins.
func EvaluateBloodPressure(systolic, diastolic *int, age int) *BPStatus {
	if systolic == nil || diastolic == nil {
		return nil
	}
	sys, dia := *systolic, *diastolic

	if sys < HypotensionSystolic || dia < HypotensionDiastolic {
		return &BPStatus{
			Kind: KindDanger,
			Message: fmt.Sprintf("Low blood pressure (%d/%d mmHg, below %d/%d)",
				sys, dia, HypotensionSystolic, HypotensionDiastolic),
			Advice: HypotensionAdvice,
		}
	}

	sysLimit, diaLimit := Limits(age)
	if sys > sysLimit || dia > diaLimit {
		msg := fmt.Sprintf("High blood pressure (%d/%d mmHg, limit %d/%d", sys, dia, sysLimit, diaLimit)
		if age > 0 {
			msg += fmt.Sprintf(" for age %d", age)
		}
		msg += ")"
		return &BPStatus{
			Kind:           KindWarning,
			Message:        msg,
			SystolicLimit:  sysLimit,
			DiastolicLimit: diaLimit,
		}
	}

	return nil
}

// AgeHint returns the hint shown next to blood-pressure results when the
// patient's age is unknown, or "" when it is known.
func AgeHint(age int) string {
	if age > 0 {
		return ""
	}
	return "Set your age in the profile for a more precise blood-pressure evaluation."
}
