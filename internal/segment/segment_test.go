package segment

import (
	"strings"
	"testing"

	"fixturekit/internal/sample"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineOf returns the 1-based line number of the first line with the prefix.
func lineOf(t *testing.T, content, prefix string) int {
	t.Helper()
	for i, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, prefix) {
			return i + 1
		}
	}
	t.Fatalf("no line starts with %q", prefix)
	return 0
}

// =============================================================================
// FIXTURE EDITS
// =============================================================================

func TestApply_FindReplaceSingle(t *testing.T) {
	req := NewRequest(ModeFindReplace, "variableX := int32(5)")
	req.Find = `x := int32\(5\)`
	req.All = false

	res, err := Apply(sample.Source, req)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Matches)

	want := strings.Replace(sample.Source, "x := int32(5)", "variableX := int32(5)", 1)
	if diff := cmp.Diff(want, res.Content); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_FindReplaceAll(t *testing.T) {
	req := NewRequest(ModeFindReplace, "VALUE")
	req.Find = "x"

	res, err := Apply(sample.Source, req)
	require.NoError(t, err)
	assert.Greater(t, res.Matches, 5)
	assert.Equal(t, strings.Count(sample.Source, "x"), res.Matches)
	assert.Equal(t, strings.ReplaceAll(sample.Source, "x", "VALUE"), res.Content)
	assert.NotContains(t, res.Content, "x")
}

func TestApply_FindReplaceFirstOnly(t *testing.T) {
	req := NewRequest(ModeFindReplace, "B")
	req.Find = "a"
	req.All = false

	res, err := Apply("a a a", req)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Matches)
	assert.Equal(t, "B a a", res.Content)
}

func TestApply_FindReplaceIsLiteral(t *testing.T) {
	req := NewRequest(ModeFindReplace, "$1-${name}")
	req.Find = `(\w+)@`

	res, err := Apply("user@host", req)
	require.NoError(t, err)
	assert.Equal(t, "$1-${name}host", res.Content)
}

func TestApply_BlockWithMarkers(t *testing.T) {
	req := NewRequest(ModeBlock, "// BLOCK REPLACED SUCCESSFULLY")
	req.Start = `/\*\n\t \* This is a multi-line comment block\.`
	req.End = `\t \* Line 4 of comment block\.\n\t \*/`
	req.IncludeMarkers = true

	res, err := Apply(sample.Source, req)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Matches)

	startMarker := "/*\n\t * This is a multi-line comment block."
	endMarker := "\t * Line 4 of comment block.\n\t */"
	from := strings.Index(sample.Source, startMarker)
	to := strings.Index(sample.Source, endMarker) + len(endMarker)
	require.True(t, from > 0 && to > from)

	want := sample.Source[:from] + "// BLOCK REPLACED SUCCESSFULLY" + sample.Source[to:]
	if diff := cmp.Diff(want, res.Content); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}
	assert.NotContains(t, res.Content, "Line 3 of comment block.")
}

func TestApply_BlockWithoutMarkers(t *testing.T) {
	doc := "# Title\n\nSTART_MARKER\nold line 1\nold line 2\nEND_MARKER\n\ntail\n"
	req := NewRequest(ModeBlock, "\n**NEW CONTENT**\n")
	req.Start = "START_MARKER"
	req.End = "END_MARKER"

	res, err := Apply(doc, req)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Matches)
	assert.Equal(t, "# Title\n\nSTART_MARKER\n**NEW CONTENT**\nEND_MARKER\n\ntail\n", res.Content)
}

func TestApply_BlockEndSearchedAfterStart(t *testing.T) {
	req := NewRequest(ModeBlock, "X")
	req.Start = "BEGIN"
	req.End = "END"

	res, err := Apply("END BEGIN middle END tail", req)
	require.NoError(t, err)
	assert.Equal(t, "END BEGINXEND tail", res.Content)
}

func TestApply_BlockMissingEnd(t *testing.T) {
	req := NewRequest(ModeBlock, "X")
	req.Start = "BEGIN"
	req.End = "NEVER"

	res, err := Apply("BEGIN body", req)
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.Equal(t, "BEGIN body", res.Content)
}

func TestApply_LineRangeReplaceFunction(t *testing.T) {
	start := lineOf(t, sample.Source, "func CalculateNewValue(")
	replacement := "// FUNCTION_REPLACED_BY_LINE_RANGE_EDIT\n" +
		"func newSimplifiedCalculation(val int32) int32 {\n" +
		"\treturn val * 2 // A much simpler calculation\n" +
		"}\n" +
		"// END_OF_FUNCTION_REPLACEMENT"

	req := NewRequest(ModeLineRange, replacement)
	req.StartLine = start
	req.EndLine = start + 3

	res, err := Apply(sample.Source, req)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Matches)

	lines := strings.Split(sample.Source, "\n")
	assert.Equal(t, "}", lines[start+2], "CalculateNewValue spans four lines")

	want := strings.Join(lines[:start-1], "\n") + "\n" + replacement + "\n" + strings.Join(lines[start+3:], "\n")
	if diff := cmp.Diff(want, res.Content); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}
	assert.NotContains(t, res.Content, "func CalculateNewValue(")
	assert.Contains(t, res.Content, "func CheckedCalculateNewValue(")
}

func TestApply_LineRange(t *testing.T) {
	content := "l1\nl2\nl3\nl4\nl5"

	tests := []struct {
		name        string
		start, end  int
		inclusive   bool
		replace     string
		want        string
		wantMatches int
		wantErr     error
	}{
		{"inclusive middle", 2, 3, true, "X", "l1\nX\nl4\nl5", 2, nil},
		{"exclusive keeps end line", 2, 4, false, "X", "l1\nX\nl4\nl5", 2, nil},
		{"single line", 5, 5, true, "X\nY", "l1\nl2\nl3\nl4\nX\nY", 1, nil},
		{"whole file", 1, 5, true, "", "", 5, nil},
		{"negative start clamps", -3, 1, true, "X", "X\nl2\nl3\nl4\nl5", 1, nil},
		{"end past EOF", 4, 9, true, "X", content, 0, ErrNoMatch},
		{"start after end", 4, 2, true, "X", content, 0, ErrNoMatch},
		{"exclusive empty range", 3, 3, false, "X", content, 0, ErrNoMatch},
		{"zero start clamps", 0, 3, true, "X", "X\nl4\nl5", 3, nil},
		{"unset end", 2, 0, true, "X", "", 0, ErrMissingParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequest(ModeLineRange, tt.replace)
			req.StartLine = tt.start
			req.EndLine = tt.end
			req.Inclusive = tt.inclusive

			res, err := Apply(content, req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.wantErr == ErrNoMatch {
					assert.Equal(t, content, res.Content)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Content)
			assert.Equal(t, tt.wantMatches, res.Matches)
		})
	}
}

// =============================================================================
// VALIDATION AND NORMALIZATION
// =============================================================================

func TestApply_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"find missing", Request{Mode: ModeFindReplace}, ErrMissingParam},
		{"start missing", Request{Mode: ModeBlock, End: "x"}, ErrMissingParam},
		{"end missing", Request{Mode: ModeBlock, Start: "x"}, ErrMissingParam},
		{"end line missing", Request{Mode: ModeLineRange, StartLine: 1}, ErrMissingParam},
		{"bad find regex", Request{Mode: ModeFindReplace, Find: "("}, ErrInvalidPattern},
		{"bad end regex", Request{Mode: ModeBlock, Start: "a", End: "[z-a]"}, ErrInvalidPattern},
		{"unknown mode", Request{Mode: "rewrite"}, ErrUnknownMode},
		{"no match", Request{Mode: ModeFindReplace, Find: "zzz", All: true}, ErrNoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply("abc", tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestApply_ErrorMentionsMode(t *testing.T) {
	_, err := Apply("abc", Request{Mode: ModeBlock})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "block")
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("nope")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a\nb\nc\n", Normalize("a\r\nb\rc\r\n"))
	assert.Equal(t, "plain\n", Normalize("plain\n"))
}

func TestApply_NormalizesLineEndings(t *testing.T) {
	req := NewRequest(ModeLineRange, "X")
	req.StartLine = 2
	req.EndLine = 2

	res, err := Apply("a\r\nb\r\nc", req)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc", res.Original)
	assert.Equal(t, "a\nX\nc", res.Content)
	assert.True(t, res.Changed())
}

func TestResult_ChangedFalseForIdentity(t *testing.T) {
	req := NewRequest(ModeFindReplace, "a")
	req.Find = "a"

	res, err := Apply("aaa", req)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Matches)
	assert.False(t, res.Changed())
}
