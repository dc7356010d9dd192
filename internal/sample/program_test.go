package sample

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wantOutput = `Initial value of x: 5
Updated value of x: 15
The area of the rectangle is 1500 square pixels.
x is an odd number greater than 10
Processed numbers: [2 4 6 8 10]
p1: { x: 5, y: 10.4 }
p2: { x: Hello, y: c }
7 + 1 = 8
This is a helper function for main.
Helper function finished.
`

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Run(&buf))

	if diff := cmp.Diff(wantOutput, buf.String()); diff != "" {
		t.Errorf("Run output mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, Run(&a))
	require.NoError(t, Run(&b))
	assert.Equal(t, a.String(), b.String())
}

type failingWriter struct {
	after int
	n     int
}

var errWrite = errors.New("write failed")

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.n >= f.after {
		return 0, errWrite
	}
	f.n++
	return len(p), nil
}

func TestRun_PropagatesWriteError(t *testing.T) {
	for _, after := range []int{0, 3, 8, 9} {
		w := &failingWriter{after: after}
		err := Run(w)
		assert.ErrorIs(t, err, errWrite, "failing after %d writes", after)
		assert.Equal(t, after, w.n, "no writes after the first failure")
	}
}

func TestCalculateNewValue(t *testing.T) {
	tests := []struct {
		val, add, want int32
	}{
		{5, 10, 15},
		{0, 0, 0},
		{-3, 3, 0},
		{-7, -8, -15},
		{math.MaxInt32 - 1, 1, math.MaxInt32},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateNewValue(tt.val, tt.add), "%d + %d", tt.val, tt.add)
	}
}

func TestCalculateNewValue_Wraps(t *testing.T) {
	assert.Equal(t, int32(math.MinInt32), CalculateNewValue(math.MaxInt32, 1))
	assert.Equal(t, int32(math.MaxInt32), CalculateNewValue(math.MinInt32, -1))
}

func TestCheckedCalculateNewValue(t *testing.T) {
	got, err := CheckedCalculateNewValue(5, 10)
	require.NoError(t, err)
	assert.Equal(t, int32(15), got)

	_, err = CheckedCalculateNewValue(math.MaxInt32, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = CheckedCalculateNewValue(math.MinInt32, -1)
	assert.ErrorIs(t, err, ErrOverflow)

	got, err = CheckedCalculateNewValue(math.MinInt32, math.MaxInt32)
	require.NoError(t, err)
	assert.Equal(t, int32(-1), got)
}

func TestRectangleArea(t *testing.T) {
	assert.Equal(t, uint64(1500), Rectangle{Width: 30, Height: 50}.Area())
	assert.Equal(t, uint64(0), Rectangle{Width: 0, Height: 50}.Area())
	assert.Equal(t, uint64(0), Rectangle{}.Area())

	// Products beyond uint32 do not overflow.
	big := Rectangle{Width: math.MaxUint32, Height: math.MaxUint32}
	assert.Equal(t, uint64(math.MaxUint32)*uint64(math.MaxUint32), big.Area())
}

func TestClassify(t *testing.T) {
	assert.Equal(t, Zero, Classify(0))
	for v := int32(1); v <= 10; v++ {
		assert.Equal(t, Between1And10, Classify(v), "v=%d", v)
	}
	for v := int32(11); v <= 200; v++ {
		want := OddAbove10
		if v%2 == 0 {
			want = EvenAbove10
		}
		assert.Equal(t, want, Classify(v), "v=%d", v)
	}
	assert.Equal(t, OddAbove10, Classify(15))
	assert.Equal(t, EvenAbove10, Classify(math.MaxInt32-1))
	assert.Equal(t, OddAbove10, Classify(math.MaxInt32))
}

func TestClassify_Negative(t *testing.T) {
	assert.Equal(t, EvenAbove10, Classify(-4))
	assert.Equal(t, OddAbove10, Classify(-3))
	assert.Equal(t, EvenAbove10, Classify(math.MinInt32))
}

func TestClassLabels(t *testing.T) {
	assert.Equal(t, "zero", string(Zero))
	assert.Equal(t, "between 1 and 10", string(Between1And10))
	assert.Equal(t, "even greater than 10", string(EvenAbove10))
	assert.Equal(t, "odd greater than 10", string(OddAbove10))
}

func TestProcessNumbers(t *testing.T) {
	tests := []struct {
		name string
		in   []int32
		want []int32
	}{
		{"sample", []int32{1, 2, 3, 4, 5}, []int32{2, 4, 6, 8, 10}},
		{"empty", []int32{}, []int32{}},
		{"negative", []int32{-1, 0, 7}, []int32{-2, 0, 14}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nums := append([]int32(nil), tt.in...)
			if nums == nil {
				nums = []int32{}
			}
			ProcessNumbers(nums)
			if diff := cmp.Diff(tt.want, nums); diff != "" {
				t.Errorf("ProcessNumbers mismatch (-want +got):\n%s", diff)
			}
			assert.Len(t, nums, len(tt.in))
		})
	}
}

func TestProcessNumbers_InPlace(t *testing.T) {
	backing := []int32{1, 2, 3}
	view := backing[:2]
	ProcessNumbers(view)
	assert.Equal(t, []int32{2, 4, 3}, backing)

	ProcessNumbers(nil)
}

func TestPoint(t *testing.T) {
	p1 := Point[int32, float64]{X: 5, Y: 10.4}
	p2 := Point[string, rune]{X: "Hello", Y: 'c'}
	assert.Equal(t, int32(5), p1.X)
	assert.Equal(t, 10.4, p1.Y)
	assert.Equal(t, "Hello", p2.X)
	assert.Equal(t, 'c', p2.Y)
}

func TestAddOne(t *testing.T) {
	assert.Equal(t, int32(8), AddOne(7))
	assert.Equal(t, int32(0), AddOne(-1))
}

func TestHelperFunctionForMain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HelperFunctionForMain(&buf))
	assert.Equal(t, "This is a helper function for main.\nHelper function finished.\n", buf.String())
}

func TestEndToEnd_XBecomes15(t *testing.T) {
	x := int32(5)
	x = CalculateNewValue(x, 10)
	assert.Equal(t, int32(15), x)
	assert.Equal(t, OddAbove10, Classify(x))
}

func TestSource(t *testing.T) {
	require.NotEmpty(t, Source)
	assert.True(t, strings.HasPrefix(Source, "package sample\n"))
	assert.Contains(t, Source, "func CalculateNewValue(val, add int32) int32 {")
	assert.Contains(t, Source, "\t * This is a multi-line comment block.")
	assert.Contains(t, Source, "\t// Line A\n\t// Line B\n\t// Line C\n\t// Line D\n\t// Line E\n")
	assert.True(t, strings.HasSuffix(Source, "// Final line of the file\n"))
}
