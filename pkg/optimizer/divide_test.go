package optimizer_test

import (
	"testing"

	"lasercut/pkg/job"
	"lasercut/pkg/optimizer"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDivide(t *testing.T) {
	tests := []struct {
		Name    string
		Initial job.Property
		Input   []job.Instruction
		Output  []*optimizer.Element
	}{
		{
			Name:   "empty",
			Input:  nil,
			Output: nil,
		},
		{
			Name: "moves only",
			Input: []job.Instruction{
				job.Set(cutSettings),
				job.MoveTo(1, 1),
				job.MoveTo(2, 2),
			},
			Output: nil,
		},
		{
			Name: "one stroke",
			Input: []job.Instruction{
				job.Set(cutSettings),
				job.MoveTo(0, 0),
				job.LineTo(10, 0),
				job.LineTo(10, 10),
			},
			Output: []*optimizer.Element{
				stroke(cutSettings, pt(0, 0), pt(10, 0), pt(10, 10)),
			},
		},
		{
			Name: "move breaks",
			Input: []job.Instruction{
				job.Set(cutSettings),
				job.MoveTo(0, 0),
				job.LineTo(10, 0),
				job.MoveTo(20, 0),
				job.LineTo(30, 0),
			},
			Output: []*optimizer.Element{
				stroke(cutSettings, pt(0, 0), pt(10, 0)),
				stroke(cutSettings, pt(20, 0), pt(30, 0)),
			},
		},
		{
			Name: "settings change mid stroke",
			Input: []job.Instruction{
				job.Set(cutSettings),
				job.MoveTo(0, 0),
				job.LineTo(10, 0),
				job.Set(markSettings),
				job.LineTo(10, 10),
			},
			Output: []*optimizer.Element{
				stroke(cutSettings, pt(0, 0), pt(10, 0)),
				stroke(markSettings, pt(10, 0), pt(10, 10)),
			},
		},
		{
			Name:    "initial settings",
			Initial: markSettings,
			Input: []job.Instruction{
				job.MoveTo(0, 0),
				job.LineTo(1, 0),
			},
			Output: []*optimizer.Element{
				stroke(markSettings, pt(0, 0), pt(1, 0)),
			},
		},
		{
			Name: "last move wins",
			Input: []job.Instruction{
				job.Set(cutSettings),
				job.MoveTo(0, 0),
				job.MoveTo(5, 5),
				job.LineTo(6, 5),
			},
			Output: []*optimizer.Element{
				stroke(cutSettings, pt(5, 5), pt(6, 5)),
			},
		},
	}
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			got, err := optimizer.Divide(test.Input, test.Initial)
			require.NoError(t, err)
			if diff := cmp.Diff(test.Output, got); diff != "" {
				t.Errorf("Divide() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDivideDrawBeforeMove(t *testing.T) {
	got, err := optimizer.Divide([]job.Instruction{
		job.Set(cutSettings),
		job.LineTo(10, 0),
		job.MoveTo(0, 0),
		job.LineTo(5, 0),
	}, nil)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, optimizer.ErrMalformedInstructionStream))

	var malformed *optimizer.MalformedStreamError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 1, malformed.Index)
}
