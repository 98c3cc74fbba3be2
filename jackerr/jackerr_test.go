package jackerr

import (
	"errors"
	"strings"
	"testing"
)

func TestUnexpectedTokenMessageIncludesLineWhenKnown(t *testing.T) {
	tests := []struct {
		name string
		err  *UnexpectedToken
		want string
	}{
		{
			"with line",
			&UnexpectedToken{Expected: "';'", Actual: "}", Line: 12},
			"line 12: expected ';', got \"}\"",
		},
		{
			"without line",
			&UnexpectedToken{Expected: "type", Actual: "123"},
			`expected type, got "123"`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Errorf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestWrappedErrorsUnwrap(t *testing.T) {
	inner := errors.New("permission denied")

	unreadable := &UnreadableInput{Path: "Main.jack", Err: inner}
	if !errors.Is(unreadable, inner) {
		t.Error("UnreadableInput should unwrap to the underlying error")
	}
	if !strings.Contains(unreadable.Error(), "Main.jack") {
		t.Errorf("Error() = %q, missing path", unreadable.Error())
	}

	unwritable := &UnwritableOutput{Path: "Main.vm", Err: inner}
	if !errors.Is(unwritable, inner) {
		t.Error("UnwritableOutput should unwrap to the underlying error")
	}
	if !strings.Contains(unwritable.Error(), "Main.vm") {
		t.Errorf("Error() = %q, missing path", unwritable.Error())
	}
}

func TestWrongTokenKindMessage(t *testing.T) {
	err := &WrongTokenKind{Requested: "identifier", Actual: "keyword", Raw: "class"}
	want := `requested identifier accessor on a keyword token "class"`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestStrayInputMessage(t *testing.T) {
	err := &StrayInput{Raw: "class", Line: 9}
	want := `line 9: unexpected trailing input "class"`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
