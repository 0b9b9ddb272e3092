package job

import "fmt"

// Property is a settings record (power, speed, focus, ...) attached to a
// stroke. The optimizer never looks inside; it only compares records.
type Property interface {
	Equal(other Property) bool
}

// PropertiesEqual compares two records, treating nil as equal only to nil.
func PropertiesEqual(a, b Property) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// PowerSpeedFocusFrequency is the settings record used by most vector
// drivers. Power and speed are percentages, focus is an offset in mm and
// frequency is the pulse frequency in Hz.
type PowerSpeedFocusFrequency struct {
	Power     float64
	Speed     float64
	Focus     float64
	Frequency int
}

func (p PowerSpeedFocusFrequency) Equal(other Property) bool {
	switch o := other.(type) {
	case PowerSpeedFocusFrequency:
		return p == o
	case *PowerSpeedFocusFrequency:
		return o != nil && p == *o
	}
	return false
}

func (p PowerSpeedFocusFrequency) String() string {
	return fmt.Sprintf("power=%g speed=%g focus=%g freq=%d", p.Power, p.Speed, p.Focus, p.Frequency)
}
