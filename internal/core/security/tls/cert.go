package tls

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"time"

	"github.com/dep2p/go-pingnode/internal/core/identity"
	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
	"github.com/dep2p/go-pingnode/pkg/types"
)

// certValidity 证书有效期
const certValidity = 365 * 24 * time.Hour

// newCertificate 用身份私钥签发自签名证书
func newCertificate(id pkgif.Identity) (*tls.Certificate, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: id.PeerID().String()},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(certValidity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, id.PublicKey(), id.PrivateKey())
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}

	return &tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  id.PrivateKey(),
		Leaf:        leaf,
	}, nil
}

// peerFromCertificates 校验对端证书并派生 PeerID
//
// 只接受一张自签名 Ed25519 证书。expected 非空时必须一致。
func peerFromCertificates(rawCerts [][]byte, expected types.PeerID) (types.PeerID, error) {
	switch len(rawCerts) {
	case 0:
		return "", ErrNoCertificate
	case 1:
	default:
		return "", ErrTooManyCertificates
	}

	cert, err := x509.ParseCertificate(rawCerts[0])
	if err != nil {
		return "", fmt.Errorf("parse peer certificate: %w", err)
	}

	now := time.Now()
	if now.Before(cert.NotBefore) || now.After(cert.NotAfter) {
		return "", ErrCertExpired
	}

	pub, ok := cert.PublicKey.(ed25519.PublicKey)
	if !ok {
		return "", ErrUnsupportedCertKey
	}
	if err := cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature); err != nil {
		return "", fmt.Errorf("certificate self-signature: %w", err)
	}

	return identity.VerifyPeer(identity.MarshalPublicKey(pub), expected)
}
