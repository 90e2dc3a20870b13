package wa

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestEncodeChallenge(t *testing.T) {
	artifact, err := EncodeChallenge("2@AbCdEf1234,XyZ==,xxxxxx")
	if err != nil {
		t.Fatalf("EncodeChallenge() error = %v", err)
	}

	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(artifact, prefix) {
		t.Fatalf("artifact = %q..., want data URI prefix", artifact[:30])
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(artifact, prefix))
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	// PNG magic bytes.
	if len(raw) < 8 || raw[1] != 'P' || raw[2] != 'N' || raw[3] != 'G' {
		t.Error("payload is not a PNG image")
	}
}

func TestEncodeChallengeEmpty(t *testing.T) {
	if _, err := EncodeChallenge(""); err == nil {
		t.Error("EncodeChallenge(\"\") expected error")
	}
}
