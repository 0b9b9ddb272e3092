package gcode

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"lasercut/pkg/job"

	"github.com/pkg/errors"
)

// word is a single address/value pair such as X12.5.
type word struct {
	address rune
	value   float64
}

// ParseError locates a syntax error.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return "gcode: line " + strconv.Itoa(e.Line) + ": " + e.Msg
}

// Parse reads a job in the dialect described in the package documentation.
func Parse(r io.Reader) (*job.Part, error) {
	var (
		instructions []job.Instruction
		dpi          float64
		motion       = -1
		x, y         float64
		property     job.PowerSpeedFocusFrequency
		selected     job.Property
		laserOff     bool
	)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		words, comments, err := tokenize(scanner.Text())
		if err != nil {
			return nil, &ParseError{Line: line, Msg: err.Error()}
		}
		for _, c := range comments {
			if v, ok := strings.CutPrefix(strings.TrimSpace(c), dpiComment); ok {
				value, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, &ParseError{Line: line, Msg: "bad dpi " + strconv.Quote(v)}
				}
				dpi = value
			}
		}
		if len(words) == 0 {
			continue
		}

		var (
			axes       bool
			setsLaser  bool
			laserWords []word
		)
		for _, w := range words {
			switch w.address {
			case 'G':
				switch w.value {
				case 0, 1:
					motion = int(w.value)
				case 21, 90:
				default:
					return nil, &ParseError{Line: line, Msg: "unsupported G" + strconv.FormatFloat(w.value, 'g', -1, 64)}
				}
			case 'M':
				switch w.value {
				case 3:
					setsLaser = true
				case 5:
					laserOff = true
				default:
					return nil, &ParseError{Line: line, Msg: "unsupported M" + strconv.FormatFloat(w.value, 'g', -1, 64)}
				}
			case 'X':
				x, axes = w.value, true
			case 'Y':
				y, axes = w.value, true
			case 'S', 'F', 'Z', 'P':
				laserWords = append(laserWords, w)
			case 'N':
				// Line numbers carry no meaning here.
			default:
				return nil, &ParseError{Line: line, Msg: "unsupported word " + string(w.address)}
			}
		}

		if len(laserWords) > 0 && !setsLaser {
			return nil, &ParseError{Line: line, Msg: "settings words outside M3"}
		}
		if setsLaser {
			laserOff = false
			for _, w := range laserWords {
				switch w.address {
				case 'S':
					property.Power = w.value
				case 'F':
					property.Speed = w.value
				case 'Z':
					property.Focus = w.value
				case 'P':
					property.Frequency = int(w.value)
				}
			}
			selected = property
			instructions = append(instructions, job.Set(selected))
		}
		if axes {
			// M5 drops the settings, but only strokes that follow it
			// need to know.
			if laserOff && selected != nil {
				selected = nil
				instructions = append(instructions, job.Set(nil))
			}
			laserOff = false
			switch motion {
			case 0:
				instructions = append(instructions, job.MoveTo(x, y))
			case 1:
				instructions = append(instructions, job.LineTo(x, y))
			default:
				return nil, &ParseError{Line: line, Msg: "coordinates without G0 or G1"}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "gcode: read")
	}
	return job.FromInstructions(instructions, dpi), nil
}

// tokenize splits a line into words and comments.
func tokenize(line string) ([]word, []string, error) {
	var (
		words    []word
		comments []string
	)
	runes := []rune(line)
	for i := 0; i < len(runes); {
		c := runes[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '%':
			i++
		case c == ';':
			comments = append(comments, string(runes[i+1:]))
			return words, comments, nil
		case c == '(':
			end := i + 1
			for end < len(runes) && runes[end] != ')' {
				end++
			}
			if end == len(runes) {
				return nil, nil, errors.New("non-terminated comment")
			}
			comments = append(comments, string(runes[i+1:end]))
			i = end + 1
		case unicode.IsLetter(c):
			address := unicode.ToUpper(c)
			end := i + 1
			for end < len(runes) && strings.ContainsRune("0123456789.-+", runes[end]) {
				end++
			}
			value, err := strconv.ParseFloat(string(runes[i+1:end]), 64)
			if err != nil {
				return nil, nil, errors.Errorf("bad number after %c", address)
			}
			words = append(words, word{address: address, value: value})
			i = end
		default:
			return nil, nil, errors.Errorf("unexpected %q", c)
		}
	}
	return words, comments, nil
}
