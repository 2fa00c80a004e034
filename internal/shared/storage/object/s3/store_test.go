package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/ratings.csv", want: "user/ratings.csv"},
		{name: "simple prefix", prefix: "root", key: "user/ratings.csv", want: "root/user/ratings.csv"},
		{name: "prefix trailing slash", prefix: "root/", key: "user/ratings.csv", want: "root/user/ratings.csv"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/user/ratings.csv", want: "root/user/ratings.csv"},
		{name: "nested prefix", prefix: "root/sub", key: "user/ratings.csv", want: "root/sub/user/ratings.csv"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestNormalizePrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  ", ""},
		{"/uploads/", "uploads"},
		{"uploads/ratings", "uploads/ratings"},
	}
	for _, tt := range tests {
		if got := normalizePrefix(tt.in); got != tt.want {
			t.Fatalf("normalizePrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
