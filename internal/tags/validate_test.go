package tags

import (
	"errors"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "empty", in: "", wantErr: true},
		{name: "two chars", in: "Go", wantErr: true},
		{name: "exactly three", in: "Vue"},
		{name: "accented counts runes", in: "Çaé"},
		{name: "two runes, four bytes", in: "Çé", wantErr: true},
		{name: "spaces count", in: "a b"},
		{name: "angle brackets kept", in: "Vector<T>"},
		{name: "text between brackets counts", in: "a<b and c>d"},
		{name: "ampersand", in: "Tom & Jerry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.in)
			if !tt.wantErr {
				if err != nil {
					t.Errorf("ValidateName(%q) = %v, want nil", tt.in, err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateName(%q) = %v, want *ValidationError", tt.in, err)
			}
			if verr.Field != "name" || verr.Message != "Minimum 3 characters." {
				t.Errorf("ValidationError = %+v", verr)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("errors.Is(%v, ErrInvalid) = false", err)
			}
		})
	}
}
