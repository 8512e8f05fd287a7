package keyring

import (
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGet(t *testing.T) {
	gokeyring.MockInit()

	testConnStr := "postgres://testuser@localhost:5432/testdb?sslmode=disable"
	if err := Set(SecretConnectionString, testConnStr); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	retrieved, err := Get(SecretConnectionString)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if retrieved != testConnStr {
		t.Errorf("Get() = %q, want %q", retrieved, testConnStr)
	}

	if got := Lookup(SecretGeneratorKey); got != "" {
		t.Errorf("Lookup(generator key) = %q, want empty", got)
	}
}

func TestSetEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(SecretGeneratorKey, ""); err == nil {
		t.Error("Set(\"\") should return an error")
	}
}

func TestGetNotFound(t *testing.T) {
	gokeyring.MockInit()

	_ = Delete(SecretGeneratorKey)
	if _, err := Get(SecretGeneratorKey); err != ErrNotFound {
		t.Errorf("Get() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDelete(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(SecretGeneratorKey, "sk-test"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := Delete(SecretGeneratorKey); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := Get(SecretGeneratorKey); err != ErrNotFound {
		t.Errorf("After Delete(), Get() error = %v, want %v", err, ErrNotFound)
	}
	if err := Delete(SecretGeneratorKey); err != ErrNotFound {
		t.Errorf("Delete() of missing secret error = %v, want %v", err, ErrNotFound)
	}
}

func TestParseSecret(t *testing.T) {
	tests := []struct {
		in      string
		want    Secret
		wantErr bool
	}{
		{in: "connection-string", want: SecretConnectionString},
		{in: "generator-key", want: SecretGeneratorKey},
		{in: "password", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSecret(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSecret() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSecret() = %q, want %q", got, tt.want)
			}
		})
	}
}
