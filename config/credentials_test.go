package config

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"golang.org/x/crypto/ssh"
)

func TestAESGCMRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	plain := []byte(`{"anthropic":"sk-test"}`)

	enc, err := encryptAESGCM(plain, key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(enc, []byte("sk-test")) {
		t.Error("ciphertext contains plaintext")
	}

	dec, err := decryptAESGCM(enc, key)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(dec, plain) {
		t.Errorf("round trip = %q, want %q", dec, plain)
	}

	wrongKey := bytes.Repeat([]byte{0x43}, 32)
	if _, err := decryptAESGCM(enc, wrongKey); err == nil {
		t.Error("decryption succeeded with wrong key")
	}
	if _, err := decryptAESGCM([]byte("short"), key); err == nil {
		t.Error("decryption succeeded on truncated ciphertext")
	}
}

func TestDeriveAESKeyFromSSHIsStable(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatal(err)
	}

	// Ed25519 signatures are deterministic, so the same key always derives
	// the same AES key across runs.
	first, err := DeriveAESKeyFromSSH(signer)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	second, err := DeriveAESKeyFromSSH(signer)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if len(first) != 32 {
		t.Errorf("key length = %d, want 32", len(first))
	}
	if !bytes.Equal(first, second) {
		t.Error("derived keys differ across calls")
	}
}

func TestCredentialStorePlaintextRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store := NewCredentialStore(EncryptionNone, "")
	if err := store.Load(dir); err != nil {
		t.Fatalf("load into empty dir: %v", err)
	}

	store.Set("anthropic", "sk-stored")
	if err := store.Save(dir); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded := NewCredentialStore(EncryptionNone, "")
	if err := reloaded.Load(dir); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Get("anthropic"); got != "sk-stored" {
		t.Errorf("Get = %q, want sk-stored", got)
	}
}

func TestCredentialEnvPrecedence(t *testing.T) {
	store := NewCredentialStore(EncryptionNone, "")
	store.Set("anthropic", "sk-stored")

	t.Setenv("IASK_ANTHROPIC_API_KEY", "sk-env")
	if got := store.Get("anthropic"); got != "sk-env" {
		t.Errorf("Get = %q, env var should win", got)
	}
}
