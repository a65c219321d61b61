package delivery

import "testing"

func TestWebURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://gaudio.com", true},
		{"http://a.io/path?q=1#frag", true},
		{"ftp://files.example.org", true},
		{"gaudio.com", true},
		{"http://127.0.0.1:8080", true},
		{"https://xn--80ak6aa92e.xn--p1ai", true},
		{"", false},
		{"foo:bar", false},
		{"http://localhost", false},
		{"https://gaudio", false},
		{"https://gaudio.c", false},
		{"https://gaudio.123", false},
		{"https://-bad.com", false},
		{"https://a..com", false},
		{"javascript://alert.io", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		err := validate.Var(tt.url, "weburl")
		if got := err == nil; got != tt.want {
			t.Errorf("weburl(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
