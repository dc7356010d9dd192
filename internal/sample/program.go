package sample

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrOverflow is returned by CheckedCalculateNewValue when the sum does not fit in an int32.
var ErrOverflow = errors.New("int32 overflow")

// Run prints the sample program's output to w and returns the first write error.
func Run(w io.Writer) error {
	p := &printer{w: w}

	x := int32(5)
	p.printf("Initial value of x: %d\n", x)

	x = CalculateNewValue(x, 10)
	p.printf("Updated value of x: %d\n", x)

	// Using a struct
	rect1 := Rectangle{
		Width:  30,
		Height: 50,
	}

	p.printf(
		"The area of the rectangle is %d square pixels.\n",
		rect1.Area(),
	)

	// Pattern matching
	switch Classify(x) {
	case Zero:
		p.println("x is zero")
	case Between1And10:
		p.println("x is between 1 and 10")
	case EvenAbove10:
		p.println("x is an even number greater than 10")
	default:
		p.println("x is an odd number greater than 10")
	}

	// Loop and slice
	numbers := []int32{1, 2, 3, 4, 5}
	ProcessNumbers(numbers)
	p.printf("Processed numbers: %v\n", numbers)

	// Generic struct instantiations
	p1 := Point[int32, float64]{X: 5, Y: 10.4}
	p2 := Point[string, rune]{X: "Hello", Y: 'c'}

	p.printf("p1: { x: %d, y: %v }\n", p1.X, p1.Y)
	p.printf("p2: { x: %s, y: %c }\n", p2.X, p2.Y)

	p.printf("7 + 1 = %d\n", AddOne(7))

	/*
	 * This is a multi-line comment block.
	 * It gives block replacement a larger segment to target.
	 * We can target this block specifically.
	 * Line 3 of comment block.
	 * Line 4 of comment block.
	 */

	if p.err != nil {
		return p.err
	}
	return HelperFunctionForMain(w)
}

// CalculateNewValue returns val + add. Overflow wraps like any int32 addition.
func CalculateNewValue(val, add int32) int32 {
	// This is a comment inside CalculateNewValue
	return val + add // Return statement
}

// CheckedCalculateNewValue is CalculateNewValue with ErrOverflow instead of wrapping.
func CheckedCalculateNewValue(val, add int32) (int32, error) {
	sum := int64(val) + int64(add)
	if sum > math.MaxInt32 || sum < math.MinInt32 {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, val, add)
	}
	return int32(sum), nil
}

// Rectangle is a labeled record with a derived area.
type Rectangle struct {
	Width  uint32
	Height uint32
}

// Area returns Width * Height. The product of two uint32 values always fits in a uint64.
func (r Rectangle) Area() uint64 {
	// Calculate area
	return uint64(r.Width) * uint64(r.Height) // Comment for area
}

// Class is the outcome of Classify.
type Class string

const (
	Zero          Class = "zero"
	Between1And10 Class = "between 1 and 10"
	EvenAbove10   Class = "even greater than 10"
	OddAbove10    Class = "odd greater than 10"
)

// Classify picks the first matching branch: zero, 1..=10, even, otherwise odd.
func Classify(v int32) Class {
	switch {
	case v == 0:
		return Zero
	case v >= 1 && v <= 10:
		return Between1And10
	case v%2 == 0:
		return EvenAbove10
	default:
		return OddAbove10
	}
}

// ProcessNumbers doubles every element of nums in place.
func ProcessNumbers(nums []int32) {
	// This is a line to be targeted for replacement
	for i := range nums {
		nums[i] *= 2 // Double each number
	}
	// End of ProcessNumbers
}

// Point is a generic labeled pair.
type Point[T, U any] struct {
	X T
	Y U
}

// AddOne is a simple closure.
var AddOne = func(num int32) int32 { return num + 1 }

// HelperFunctionForMain prints two fixed lines.
func HelperFunctionForMain(w io.Writer) error {
	p := &printer{w: w}
	p.println("This is a helper function for main.")
	// Let's add some more lines here for testing line ranges
	// Line A
	// Line B
	// Line C
	// Line D
	// Line E
	p.println("Helper function finished.")
	return p.err
}

// printer remembers the first write error and skips later writes.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) println(s string) {
	p.printf("%s\n", s)
}

// Final line of the file
