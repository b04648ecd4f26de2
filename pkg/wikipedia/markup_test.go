package wikipedia

import "testing"

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple tags", in: "<b>hi</b> there", want: "hi there"},
		{name: "no markup", in: "plain text", want: "plain text"},
		{name: "attributes", in: `<p class="x">a <i>b</i></p>`, want: "a b"},
		{name: "greater-than before tag kept", in: "5 > 3 <br>ok", want: "5 > 3 ok"},
		{name: "unterminated tag drops the rest", in: "safe <broken", want: "safe "},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := StripMarkup(tt.in)
			if once != tt.want {
				t.Fatalf("StripMarkup(%q) = %q; want %q", tt.in, once, tt.want)
			}
			if twice := StripMarkup(once); twice != once {
				t.Errorf("not idempotent: %q -> %q", once, twice)
			}
		})
	}
}
