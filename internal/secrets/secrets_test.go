package secrets

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestSetGetDelete(t *testing.T) {
	keyring.MockInit()

	if err := Set(AccountSerpAPI, "abc123"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := Get(AccountSerpAPI)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "abc123" {
		t.Errorf("Get = %q, want abc123", got)
	}

	if err := Delete(AccountSerpAPI); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := Get(AccountSerpAPI); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestRejectsEmpty(t *testing.T) {
	keyring.MockInit()

	if err := Set("", "x"); err == nil {
		t.Error("Set with empty account should fail")
	}
	if err := Set(AccountOpenAI, "  "); err == nil {
		t.Error("Set with blank secret should fail")
	}
	if _, err := Get(" "); err == nil {
		t.Error("Get with blank account should fail")
	}
}

func TestDeleteMissing(t *testing.T) {
	keyring.MockInit()

	if err := Delete(AccountGemini); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete missing = %v, want ErrNotFound", err)
	}
}
