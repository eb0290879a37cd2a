package crypto

import "testing"

func TestNewResetToken_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		token, err := NewResetToken()
		if err != nil {
			t.Fatalf("NewResetToken: %v", err)
		}
		if token == "" {
			t.Fatal("expected non-empty token")
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token generated: %s", token)
		}
		seen[token] = struct{}{}
	}
}

func TestNewResetToken_Length(t *testing.T) {
	token, err := NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	// 32 bytes base64url without padding is 43 characters.
	if len(token) != 43 {
		t.Errorf("token length = %d, want 43", len(token))
	}
}
