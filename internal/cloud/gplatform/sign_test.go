package gplatform

import (
	"strings"
	"testing"
)

func splitSignature(t *testing.T, signed string) (query, signature string) {
	t.Helper()
	query, signature, found := strings.Cut(signed, "&signature=")
	if !found {
		t.Fatalf("signed query %q has no trailing signature parameter", signed)
	}
	return query, signature
}

func TestSign_Deterministic(t *testing.T) {
	params := map[string]string{
		"apiKey":   "key",
		"command":  "listVolumes",
		"response": "json",
	}

	first := Sign(params, "secret")
	second := Sign(params, "secret")

	if first != second {
		t.Errorf("Sign() is not deterministic: %q vs %q", first, second)
	}
}

func TestSign_ParameterChangeChangesSignature(t *testing.T) {
	base := map[string]string{"command": "listVolumes", "response": "json"}
	changed := map[string]string{"command": "listSnapshots", "response": "json"}

	_, sigBase := splitSignature(t, Sign(base, "secret"))
	_, sigChanged := splitSignature(t, Sign(changed, "secret"))

	if sigBase == sigChanged {
		t.Errorf("changing a parameter value did not change the signature")
	}
}

func TestSign_SecretChangeChangesSignature(t *testing.T) {
	params := map[string]string{"command": "listVolumes"}

	_, sigA := splitSignature(t, Sign(params, "secret-a"))
	_, sigB := splitSignature(t, Sign(params, "secret-b"))

	if sigA == sigB {
		t.Errorf("changing the secret key did not change the signature")
	}
}

func TestSign_LowerCasesBeforeHashing(t *testing.T) {
	// The provider lower-cases the whole query before recomputing the
	// signature, so mixed-case values must sign identically to their
	// lower-case form.
	_, sigUpper := splitSignature(t, Sign(map[string]string{"Id": "ABC"}, "secret"))
	_, sigLower := splitSignature(t, Sign(map[string]string{"Id": "abc"}, "secret"))

	if sigUpper != sigLower {
		t.Errorf("signature is case-sensitive: %q vs %q", sigUpper, sigLower)
	}
}

func TestSign_QueryOrdering(t *testing.T) {
	tests := []struct {
		name      string
		params    map[string]string
		wantQuery string
	}{
		{
			name:      "sorted lexicographically",
			params:    map[string]string{"c": "3", "a": "1", "b": "2"},
			wantQuery: "a=1&b=2&c=3",
		},
		{
			name: "sorted by joined pair, not by key",
			// "a1=1" < "a=2" because '1' sorts before '=', even though
			// the key "a" sorts before "a1".
			params:    map[string]string{"a": "2", "a1": "1"},
			wantQuery: "a1=1&a=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, signature := splitSignature(t, Sign(tt.params, "secret"))
			if query != tt.wantQuery {
				t.Errorf("query = %q, want %q", query, tt.wantQuery)
			}
			if signature == "" {
				t.Errorf("signature is empty")
			}
		})
	}
}
