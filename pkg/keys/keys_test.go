package keys

import "testing"

func TestSignAndVerify(t *testing.T) {
	priv, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate private key: %v", err)
	}

	var digest [32]byte
	copy(digest[:], []byte("powsim digest under test"))

	sig, err := priv.Sign(digest[:])
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	pub := priv.PublicKey()
	if !pub.Verify(digest[:], sig) {
		t.Error("expected signature to verify")
	}

	var other [32]byte
	copy(other[:], []byte("a different digest entirely"))
	if pub.Verify(other[:], sig) {
		t.Error("expected signature over a different digest to fail verification")
	}
}

func TestAddressIsStableForTheSameKey(t *testing.T) {
	priv, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate private key: %v", err)
	}

	pub := priv.PublicKey()
	if pub.Address() != pub.Address() {
		t.Error("expected the same public key to always render the same address")
	}
}
