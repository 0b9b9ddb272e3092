// Package gcode reads and writes vector jobs in a small G-code dialect:
//
//	G21 / G90            millimetres, absolute (accepted, always emitted)
//	M3 S<power> F<speed> Z<focus> P<frequency>
//	                     select settings (SETPROPERTY)
//	G0 X<x> Y<y>         travel (MOVE)
//	G1 X<x> Y<y>         cut (DRAW)
//	M5                   laser off: the strokes up to the next M3 carry
//	                     no settings (SETPROPERTY with none)
//
// G0 and G1 are modal, and a missing axis keeps its last value. Comments in
// parentheses or after ';' are ignored, except the "(lasercut dpi=N)" header.
package gcode

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"lasercut/pkg/job"

	"github.com/pkg/errors"
)

const dpiComment = "lasercut dpi="

// Write encodes part. Coordinates are rounded to precision decimals.
func Write(w io.Writer, part *job.Part, precision int) error {
	bw := bufio.NewWriter(w)
	format := func(v float64) string {
		s := strconv.FormatFloat(v, 'f', precision, 64)
		if strings.Contains(s, ".") {
			s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
		}
		if s == "-0" {
			s = "0"
		}
		return s
	}

	// Output gcode header
	fmt.Fprintf(bw, "(%s%s)\n", dpiComment, format(part.DPI))
	fmt.Fprintln(bw, "G21 (metric)")
	fmt.Fprintln(bw, "G90 (absolute mode)")

	for i, in := range part.Instructions {
		switch in.Kind {
		case job.SetProperty:
			if in.Property == nil {
				fmt.Fprintln(bw, "M5")
				continue
			}
			p, err := settings(in.Property)
			if err != nil {
				return errors.Wrapf(err, "instruction %d", i)
			}
			fmt.Fprintf(bw, "M3 S%s F%s Z%s P%d\n", format(p.Power), format(p.Speed), format(p.Focus), p.Frequency)
		case job.Move:
			fmt.Fprintf(bw, "G0 X%s Y%s\n", format(in.X), format(in.Y))
		case job.Draw:
			fmt.Fprintf(bw, "G1 X%s Y%s\n", format(in.X), format(in.Y))
		default:
			return errors.Errorf("instruction %d: unknown kind %v", i, in.Kind)
		}
	}

	// Output gcode footer
	fmt.Fprintln(bw, "M5 (laser off)")
	return bw.Flush()
}

func settings(p job.Property) (job.PowerSpeedFocusFrequency, error) {
	switch v := p.(type) {
	case job.PowerSpeedFocusFrequency:
		return v, nil
	case *job.PowerSpeedFocusFrequency:
		if v != nil {
			return *v, nil
		}
	}
	return job.PowerSpeedFocusFrequency{}, errors.Errorf("cannot encode settings %v", p)
}
