package instagram

import (
	"strings"
	"testing"
)

func TestUserInfoPath(t *testing.T) {
	path := UserInfoPath("testuser")
	expected := "/users/web_profile_info/?username=testuser"
	if path != expected {
		t.Errorf("Expected %s, got %s", expected, path)
	}
}

func TestUserFeedPath(t *testing.T) {
	path := UserFeedPath(12345, "", 33)
	if !strings.HasPrefix(path, "/feed/user/12345/?") {
		t.Errorf("Unexpected feed path: %s", path)
	}
	if !strings.Contains(path, "count=33") {
		t.Errorf("Expected count param in %s", path)
	}
	if strings.Contains(path, "max_id") {
		t.Errorf("First page should not carry a cursor: %s", path)
	}

	paged := UserFeedPath(12345, "cursor123", 0)
	if !strings.Contains(paged, "max_id=cursor123") {
		t.Errorf("Expected cursor param in %s", paged)
	}
	if !strings.Contains(paged, "count=33") {
		t.Errorf("Expected default count in %s", paged)
	}
}

func TestChallengePath(t *testing.T) {
	tests := []struct {
		name     string
		apiPath  string
		expected string
	}{
		{"empty", "", ""},
		{"absolute", "/challenge/12345/abc/", "/challenge/12345/abc/"},
		{"relative", "challenge/12345/abc/", "/challenge/12345/abc/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChallengePath(tt.apiPath); got != tt.expected {
				t.Errorf("ChallengePath(%q) = %q, want %q", tt.apiPath, got, tt.expected)
			}
		})
	}
}

func TestGetPostURL(t *testing.T) {
	url := GetPostURL("ABC123")
	expected := "https://www.instagram.com/p/ABC123/"
	if url != expected {
		t.Errorf("Expected %s, got %s", expected, url)
	}

	if GetPostURL("") != "" {
		t.Error("Expected empty URL for empty shortcode")
	}
}

func TestSanitizeUsername(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"@testuser", "testuser"},
		{"testuser/", "testuser"},
		{"testuser ", "testuser"},
		{"@testuser/ ", "testuser"},
		{"testuser", "testuser"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeUsername(tt.input); got != tt.expected {
			t.Errorf("SanitizeUsername(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
