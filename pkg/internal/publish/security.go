package publish

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// Security holds the broker connection settings for a secured cluster. The zero value is a
// plaintext, unauthenticated connection.
type Security struct {
	CAFiles    []string
	ServerName string
	User       string
	Password   string
	Mechanism  string // SCRAM-SHA-256 (default) or SCRAM-SHA-512
	ClientID   string
}

// Enabled reports whether any TLS, SASL or client id setting is present.
func (s Security) Enabled() bool {
	return len(s.CAFiles) > 0 || s.User != "" || s.ClientID != ""
}

// Transport builds the kafka-go transport for s.
func (s Security) Transport() (*kafka.Transport, error) {
	t := &kafka.Transport{ClientID: s.ClientID}
	if len(s.CAFiles) > 0 {
		cfg, err := TLSFromCAFiles(s.CAFiles, s.ServerName)
		if err != nil {
			return nil, err
		}
		t.TLS = cfg
	}
	if s.User != "" {
		mech, err := SASLSCRAM(s.User, s.Password, s.Mechanism)
		if err != nil {
			return nil, err
		}
		t.SASL = mech
	}
	return t, nil
}

// TLSFromCAFiles loads a TLS 1.2+ config trusting the first existing file among candidates.
// A non-empty serverName is used for SNI and hostname verification.
func TLSFromCAFiles(candidates []string, serverName string) (*tls.Config, error) {
	var picked string
	for _, p := range candidates {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			picked = p
			break
		}
	}
	if picked == "" {
		return nil, fmt.Errorf("publish: no CA file found in %v", candidates)
	}
	pem, err := os.ReadFile(filepath.Clean(picked))
	if err != nil {
		return nil, fmt.Errorf("publish: read CA: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("publish: invalid CA PEM at %s", picked)
	}
	cfg := &tls.Config{MinVersion: tls.VersionTLS12, RootCAs: pool}
	if serverName != "" {
		cfg.ServerName = serverName
	}
	return cfg, nil
}

// SASLSCRAM returns a SCRAM mechanism by name. Underscores are accepted for dashes.
func SASLSCRAM(user, pass, mech string) (sasl.Mechanism, error) {
	switch strings.ToUpper(strings.ReplaceAll(mech, "_", "-")) {
	case "", "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, user, pass)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, user, pass)
	default:
		return nil, fmt.Errorf("publish: unsupported SASL mechanism %q", mech)
	}
}
