package trustwatch

import "testing"

func TestMatches_Wildcard(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		pattern   string
		want      bool
	}{
		{
			name:      "multi wildcard matches across segments",
			candidate: "mirror.bad-news.com",
			pattern:   "*.bad-*.com",
			want:      true,
		},
		{
			name:      "multi wildcard rejects unrelated host",
			candidate: "good-news.com",
			pattern:   "*.bad-*.com",
			want:      false,
		},
		{
			name:      "wildcard matches full url",
			candidate: "https://shop.scam-site.example/checkout",
			pattern:   "*.scam-*.example",
			want:      true,
		},
		{
			name:      "wildcard is case insensitive",
			candidate: "Mirror.BAD-News.com",
			pattern:   "*.bad-*.com",
			want:      true,
		},
		{
			name:      "wildcard matches zero characters",
			candidate: "bad.com",
			pattern:   "bad*.com",
			want:      true,
		},
		{
			name:      "literal dot is not a metacharacter",
			candidate: "badxcom",
			pattern:   "bad*.com",
			want:      false,
		},
		{
			name:      "unanchored wildcard matches inside url",
			candidate: "https://www.tracker.example/path",
			pattern:   "tracker*example",
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.candidate, tt.pattern); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.candidate, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestMatches_Substring(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		pattern   string
		want      bool
	}{
		{
			name:      "pattern matches subdomain hostname",
			candidate: "news.bbc.com",
			pattern:   "bbc.com",
			want:      true,
		},
		{
			name:      "pattern matches hostname of full url",
			candidate: "https://news.bbc.com/story",
			pattern:   "bbc.com",
			want:      true,
		},
		{
			name:      "pattern matches path of full url",
			candidate: "https://host.example/scam-page",
			pattern:   "/scam",
			want:      true,
		},
		{
			name:      "substring is case insensitive",
			candidate: "News.BBC.com",
			pattern:   "bbc.com",
			want:      true,
		},
		{
			name:      "unrelated host does not match",
			candidate: "cnn.com",
			pattern:   "bbc.com",
			want:      false,
		},
		{
			name:      "empty pattern never matches",
			candidate: "example.com",
			pattern:   "",
			want:      false,
		},
		{
			name:      "unparseable candidate degrades to raw string",
			candidate: "http://[::1:bad",
			pattern:   "::1",
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.candidate, tt.pattern); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.candidate, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestMatches_WildcardCacheReuse(t *testing.T) {
	// same pattern twice must produce consistent results through the cache
	for i := 0; i < 2; i++ {
		if !Matches("mirror.bad-news.com", "*.bad-*.com") {
			t.Fatalf("Matches() = false on call %d, want true", i+1)
		}
	}
}
