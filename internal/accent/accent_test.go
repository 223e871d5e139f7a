package accent

import "testing"

func TestFoldStripsVietnameseDiacritics(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Tiếng Việt", "Tieng Viet"},
		{"đường phố", "duong pho"},
		{"không dấu", "khong dau"},
		{"plain ascii", "plain ascii"},
	}
	for _, c := range cases {
		if got := Fold(c.in); got != c.want {
			t.Errorf("Fold(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
