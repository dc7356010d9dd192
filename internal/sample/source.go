package sample

import _ "embed"

// SourceName is the file name of the embedded fixture.
const SourceName = "program.go"

// Source is the text of program.go. The segment editing tools use it as their fixture.
//
//go:embed program.go
var Source string
