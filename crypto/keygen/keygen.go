package keygen

import (
	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/sign/schnorr"
	"go.dedis.ch/kyber/v4/suites"
)

type (
	// PrivateKey is a 32-byte private key
	PrivateKey []byte
	// PublicKey is a 32-byte public key
	PublicKey []byte

	Pair struct {
		Priv PrivateKey
		Pub  PublicKey
	}
)

var (
	Suite = suites.MustFind("Ed25519") // Use the edwards25519-curve
)

// NewPair generates a fresh key pair.
func NewPair() (*Pair, error) {
	privK := Suite.Scalar().Pick(Suite.RandomStream())
	privB, err := privK.MarshalBinary()
	if err != nil {
		return nil, err
	}
	pubB, err := Suite.Point().Mul(privK, nil).MarshalBinary()
	if err != nil {
		return nil, err
	}
	return &Pair{Priv: privB, Pub: pubB}, nil
}

func (privB PrivateKey) toScalar() (kyber.Scalar, error) {
	privK := Suite.Scalar()
	if err := privK.UnmarshalBinary(privB); err != nil {
		return nil, err
	}
	return privK, nil
}

func (pubB PublicKey) toPoint() (kyber.Point, error) {
	pubK := Suite.Point()
	if err := pubK.UnmarshalBinary(pubB); err != nil {
		return nil, err
	}
	return pubK, nil
}

// Sign produces a schnorr signature over msg.
func Sign(privKey PrivateKey, msg []byte) ([]byte, error) {
	privScalar, err := privKey.toScalar()
	if err != nil {
		return nil, err
	}
	return schnorr.Sign(Suite, privScalar, msg)
}

// Verify checks a schnorr signature over msg.
func Verify(pubKey PublicKey, msg, sig []byte) error {
	pubPoint, err := pubKey.toPoint()
	if err != nil {
		return err
	}
	return schnorr.Verify(Suite, pubPoint, msg, sig)
}
