package resolver

import (
	"crypto/x509"

	"go.mozilla.org/pkcs7"
)

// VerifyModuleSignature is an optional gate in front of load_symbol: a
// downloaded driver image can carry a PKCS#7/Authenticode signature
// block, and a resolver that trusts the symbol server network (rather
// than only ever loading locally-built PDBs) should check it before
// trusting the module's reported base/size. Most local development
// flows never call this; it exists for the "download if available"
// symbol-loading path.
func VerifyModuleSignature(signatureBlock []byte) (*x509.Certificate, error) {
	p7, err := pkcs7.Parse(signatureBlock)
	if err != nil {
		return nil, err
	}
	if err := p7.Verify(); err != nil {
		return nil, err
	}
	return p7.GetOnlySigner(), nil
}
