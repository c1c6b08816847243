package postgres

import (
	"errors"
	"testing"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

func TestSecretEncryptor_RoundTrip(t *testing.T) {
	key := []byte("01234567890123456789012345678901")

	encryptor, err := NewSecretEncryptor(key)
	if err != nil {
		t.Fatalf("NewSecretEncryptor: %v", err)
	}

	original := domain.ProviderCredentials{
		TenantID:     "tenant-1",
		ClientID:     "client-1",
		ClientSecret: "hush",
		RefreshToken: "1//refresh",
		Mailbox:      "docs@haulbridge.example",
	}

	blob, err := encryptor.Encrypt(original)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if len(blob) < 1+nonceSize {
		t.Fatalf("blob too short: %d bytes", len(blob))
	}
	if blob[0] != secretVersion {
		t.Errorf("version byte: got %d, want %d", blob[0], secretVersion)
	}

	var decrypted domain.ProviderCredentials
	if err := encryptor.Decrypt(blob, &decrypted); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if decrypted != original {
		t.Errorf("round trip mismatch: %+v", decrypted)
	}
}

func TestSecretEncryptor_WrongKey(t *testing.T) {
	enc1, _ := NewSecretEncryptor([]byte("01234567890123456789012345678901"))
	enc2, _ := NewSecretEncryptor([]byte("10987654321098765432109876543210"))

	blob, err := enc1.Encrypt(domain.ProviderCredentials{ClientSecret: "hush"})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	var out domain.ProviderCredentials
	if err := enc2.Decrypt(blob, &out); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestSecretEncryptor_BadKeySize(t *testing.T) {
	if _, err := NewSecretEncryptor([]byte("short")); !errors.Is(err, ErrInvalidKeySize) {
		t.Fatalf("expected ErrInvalidKeySize, got %v", err)
	}
}

func TestSecretEncryptor_TruncatedBlob(t *testing.T) {
	enc, _ := NewSecretEncryptor([]byte("01234567890123456789012345678901"))

	var out domain.ProviderCredentials
	if err := enc.Decrypt([]byte{0x01, 0x02}, &out); !errors.Is(err, ErrInvalidBlobSize) {
		t.Fatalf("expected ErrInvalidBlobSize, got %v", err)
	}
}
