package raw

import "testing"

func TestPrefixedGetters(t *testing.T) {
	t.Setenv("LOG_LEVEL", " warn ")
	t.Setenv("LOG_CALLER", "YES")
	t.Setenv("LOG_SAMPLE_EVERY", "3")
	t.Setenv("LOG_BAD_INT", "-2")

	c := New().Prefix("LOG_")
	if got := c.Get("LEVEL", "info"); got != "warn" {
		t.Fatalf("Get = %q", got)
	}
	if got := c.Get("MISSING", "info"); got != "info" {
		t.Fatalf("Get default = %q", got)
	}
	if !c.GetBool("CALLER", false) || c.GetBool("MISSING", false) {
		t.Fatalf("GetBool mismatch")
	}
	if got := c.GetInt("SAMPLE_EVERY", 0); got != 3 {
		t.Fatalf("GetInt = %d", got)
	}
	if got := c.GetInt("BAD_INT", 9); got != 9 {
		t.Fatalf("GetInt negative should default, got %d", got)
	}
}
