package relevance

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterKeepsMedicalLines(t *testing.T) {
	in := strings.Join([]string{
		"hello doctor",
		"fever 102F cannot sleep",
		"thanks in advance",
		"Rx: paracetamol 500 mg",
	}, "\n")

	out := Filter(in)

	assert.Equal(t, "fever 102F cannot sleep\nRx: paracetamol 500 mg", out)
}

func TestFilterPreservesOrder(t *testing.T) {
	in := "cough at night\nunrelated line\nbp 140/90\nfever again"
	out := Filter(in)
	assert.Equal(t, []string{"cough at night", "bp 140/90", "fever again"}, strings.Split(out, "\n"))
}

func TestFilterFallbackFirstTenLines(t *testing.T) {
	var lines []string
	for i := 1; i <= 14; i++ {
		lines = append(lines, fmt.Sprintf("nothing clinical here %d", i))
	}

	out := Filter(strings.Join(lines, "\n"))

	got := strings.Split(out, "\n")
	assert.Len(t, got, 10)
	assert.Equal(t, "nothing clinical here 1", got[0])
	assert.Equal(t, "nothing clinical here 10", got[9])
}

func TestFilterNeverEmptyForNonEmptyInput(t *testing.T) {
	inputs := []string{
		"just a greeting",
		"  \n\nsingle trimmed line\n  ",
		"fever",
	}
	for _, in := range inputs {
		assert.NotEmpty(t, Filter(in), "input %q", in)
	}
}

func TestFilterTrimsAndDropsBlankLines(t *testing.T) {
	out := Filter("\n   \n  fever and chills  \n\n")
	assert.Equal(t, "fever and chills", out)
}

func TestFilterCaseInsensitive(t *testing.T) {
	out := Filter("FEVER SINCE TUESDAY\nsomething else")
	assert.Equal(t, "FEVER SINCE TUESDAY", out)
}
