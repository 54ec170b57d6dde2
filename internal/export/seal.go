package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"
	"filippo.io/age/armor"
)

// Seal wraps dst so everything written is age-encrypted to the given X25519
// recipients (age1... public keys) in ASCII armor. Close must be called to
// flush the final chunk; it does not close dst.
func Seal(dst io.Writer, recipientKeys []string) (io.WriteCloser, error) {
	if len(recipientKeys) == 0 {
		return nil, errors.New("at least one recipient is required")
	}

	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		r, err := age.ParseX25519Recipient(key)
		if err != nil {
			return nil, fmt.Errorf("parsing recipient key %q: %w", key, err)
		}
		recipients = append(recipients, r)
	}

	armored := armor.NewWriter(dst)
	enc, err := age.Encrypt(armored, recipients...)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	return &sealedWriter{enc: enc, armored: armored}, nil
}

type sealedWriter struct {
	enc     io.WriteCloser
	armored io.WriteCloser
}

func (s *sealedWriter) Write(p []byte) (int, error) {
	return s.enc.Write(p)
}

func (s *sealedWriter) Close() error {
	if err := s.enc.Close(); err != nil {
		return fmt.Errorf("finalizing age encryption: %w", err)
	}
	if err := s.armored.Close(); err != nil {
		return fmt.Errorf("finalizing armor: %w", err)
	}
	return nil
}

// ToFile creates path and runs write against it, sealing the output when
// recipients are given.
func ToFile(path string, recipients []string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if len(recipients) == 0 {
		return write(f)
	}

	sealed, err := Seal(f, recipients)
	if err != nil {
		return err
	}
	if err := write(sealed); err != nil {
		sealed.Close()
		return err
	}
	return sealed.Close()
}
