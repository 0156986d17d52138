package sqlstore

import "testing"

func TestRebind(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"SELECT 1", "SELECT 1"},
		{"SELECT * FROM users WHERE id = ?", "SELECT * FROM users WHERE id = $1"},
		{"INSERT INTO t (a, b, c) VALUES (?, ?, ?)", "INSERT INTO t (a, b, c) VALUES ($1, $2, $3)"},
	}
	for _, tt := range tests {
		if got := rebind(tt.in); got != tt.want {
			t.Errorf("rebind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	if got := placeholders(0); got != "" {
		t.Errorf("placeholders(0) = %q", got)
	}
	if got := placeholders(3); got != "?, ?, ?" {
		t.Errorf("placeholders(3) = %q", got)
	}
}

func TestQueryUsesDialect(t *testing.T) {
	numbered := New(nil, Dialect{NumberedPlaceholders: true})
	if got := numbered.q("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Errorf("numbered q = %q", got)
	}
	plain := New(nil, Dialect{})
	if got := plain.q("a = ?"); got != "a = ?" {
		t.Errorf("plain q = %q", got)
	}
}
