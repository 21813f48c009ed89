package tls

import "errors"

var (
	// ErrNoCertificate 对端未出示证书
	ErrNoCertificate = errors.New("peer presented no certificate")

	// ErrTooManyCertificates 对端出示了证书链
	ErrTooManyCertificates = errors.New("expected exactly one certificate")

	// ErrUnsupportedCertKey 证书公钥不是 Ed25519
	ErrUnsupportedCertKey = errors.New("certificate key is not ed25519")

	// ErrCertExpired 证书不在有效期内
	ErrCertExpired = errors.New("certificate not valid at current time")
)
