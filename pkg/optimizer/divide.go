package optimizer

import (
	"lasercut/pkg/geometry"
	"lasercut/pkg/job"
)

// Divide splits an instruction stream into elements. A MOVE or SETPROPERTY
// ends the current element; the next DRAW starts a new one at the current
// head position (the last MOVE target, or the end of the previous stroke when
// only the settings changed) with the last selected settings. initial is the settings record in
// effect before the stream starts, and may be nil.
//
// A DRAW with no preceding MOVE yields a *MalformedStreamError and no
// elements.
func Divide(instructions []job.Instruction, initial job.Property) ([]*Element, error) {
	var (
		result       []*Element
		current      *Element
		position     geometry.Point
		haveMove     bool
		lastProperty = initial
		breakPending = true
	)

	for i, in := range instructions {
		switch in.Kind {
		case job.Move:
			position = in.Point()
			haveMove = true
			breakPending = true
		case job.SetProperty:
			lastProperty = in.Property
			breakPending = true
		case job.Draw:
			if !haveMove {
				return nil, &MalformedStreamError{Index: i, Reason: "DRAW before any MOVE"}
			}
			if breakPending {
				if current != nil {
					result = append(result, current)
				}
				current = &Element{Property: lastProperty, Start: position}
				breakPending = false
			}
			current.Moves = append(current.Moves, in.Point())
			position = in.Point()
		default:
			return nil, &MalformedStreamError{Index: i, Reason: "unknown instruction kind " + in.Kind.String()}
		}
	}
	if current != nil {
		result = append(result, current)
	}
	return result, nil
}
