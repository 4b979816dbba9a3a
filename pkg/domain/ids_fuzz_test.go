package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParsePaperID checks that parsing never panics and that accepted ids
// round-trip through String.
func FuzzParsePaperID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("../../2025/01/file.pdf")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParsePaperID(input)
		if err == nil {
			roundTrip, err2 := ParsePaperID(id.String())
			if err2 != nil {
				t.Errorf("valid id failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("round-trip changed id value")
			}
			if id.IsNil() {
				t.Error("nil id accepted")
			}
		}
		if !utf8.ValidString(input) && err == nil {
			t.Error("non-UTF8 input was accepted")
		}
	})
}

func FuzzParseAllIDs(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("")
	f.Add("invalid")

	f.Fuzz(func(t *testing.T, input string) {
		_, errUser := ParseUserID(input)
		_, errPaper := ParsePaperID(input)
		_, errFile := ParseFileID(input)
		_, errAssignment := ParseAssignmentID(input)
		_, errTemplate := ParseTemplateID(input)

		accepted := errUser == nil
		for _, err := range []error{errPaper, errFile, errAssignment, errTemplate} {
			if (err == nil) != accepted {
				t.Error("inconsistent parsing across id types")
			}
		}
	})
}
