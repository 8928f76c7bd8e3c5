package encryption

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"icut-go/internal/snapshot"
)

// testHeader starts every snapshot written by TestEncryptor.
var testHeader = []byte("ICUT-TEST-1\n")

// testMask is XORed into every byte after the header so a scrambled
// snapshot is no longer a readable sqlite file.
const testMask = 0xa5

var errNoPassphrase = errors.New("passphrase must not be empty")

// TestEncryptor is a keyless, deterministic stand-in for age, selected with
// encryption type "test". It exercises the encrypt and restore paths
// without key files or passphrase prompts that cost seconds.
type TestEncryptor struct {
	setupCalled bool
}

var _ snapshot.Encryptor = (*TestEncryptor)(nil)

func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (e *TestEncryptor) Setup(passphrase string) error {
	if passphrase == "" {
		return errNoPassphrase
	}
	e.setupCalled = true
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if err := mask(r, w); err != nil {
		return fmt.Errorf("scrambling snapshot: %w", err)
	}
	return nil
}

// Unlock accepts any non-empty passphrase.
func (e *TestEncryptor) Unlock(passphrase string) (snapshot.DecryptionContext, error) {
	if passphrase == "" {
		return nil, errNoPassphrase
	}
	return &TestDecryptionContext{}, nil
}

func (e *TestEncryptor) IsConfigured() bool {
	return true
}

// TestDecryptionContext reverses TestEncryptor.
type TestDecryptionContext struct{}

var _ snapshot.DecryptionContext = (*TestDecryptionContext)(nil)

func (c *TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testHeader) {
		return fmt.Errorf("not a test-encrypted snapshot")
	}
	if err := mask(r, w); err != nil {
		return fmt.Errorf("unscrambling snapshot: %w", err)
	}
	return nil
}

func mask(r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := bw.WriteByte(b ^ testMask); err != nil {
			return err
		}
	}
	return bw.Flush()
}
