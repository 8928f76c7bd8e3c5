package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Publisher uploads library snapshots to every configured store.
type Publisher struct {
	libraryID string
	stores    []Store
	encryptor Encryptor
	tempDir   string
	logger    Logger
}

// NewPublisher creates a Publisher. A nil encryptor uploads plaintext
// snapshots. An empty tempDir means os.TempDir().
func NewPublisher(libraryID string, stores []Store, encryptor Encryptor, tempDir string, logger Logger) *Publisher {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Publisher{
		libraryID: libraryID,
		stores:    stores,
		encryptor: encryptor,
		tempDir:   tempDir,
		logger:    logger,
	}
}

// RemoteVersion returns the newest snapshot version held by any store.
func (p *Publisher) RemoteVersion(ctx context.Context) (int64, error) {
	var newest int64
	for _, s := range p.stores {
		v, err := s.Version(ctx, p.libraryID)
		if err != nil {
			return 0, fmt.Errorf("reading snapshot version from %s: %w", s.Name(), err)
		}
		if v > newest {
			newest = v
		}
	}
	return newest, nil
}

// CheckLocal fails with ErrBehind when a store holds a snapshot taken after
// the local library's last edit operation.
func (p *Publisher) CheckLocal(ctx context.Context, localVersion int64) error {
	remote, err := p.RemoteVersion(ctx)
	if err != nil {
		return err
	}
	if remote > localVersion {
		return fmt.Errorf("%w (local=%d, remote=%d): run 'icut snapshot restore' or re-initialize", ErrBehind, localVersion, remote)
	}
	return nil
}

// Publish takes a snapshot of src and uploads it to every store with the
// given version. A failing store does not stop the others; all failures are
// returned together.
func (p *Publisher) Publish(ctx context.Context, src Source, version int64) error {
	if len(p.stores) == 0 {
		return nil
	}

	dbPath := filepath.Join(p.tempDir, "icut-snapshot-"+uuid.NewString()+".db")
	defer os.Remove(dbPath)
	if err := src.BackupTo(ctx, dbPath); err != nil {
		return fmt.Errorf("taking snapshot: %w", err)
	}

	uploadPath := dbPath
	if p.encryptor != nil {
		encPath := dbPath + ".age"
		defer os.Remove(encPath)
		if err := encryptFile(p.encryptor, dbPath, encPath); err != nil {
			return err
		}
		uploadPath = encPath
	}

	var errs []error
	for _, s := range p.stores {
		size, err := putFile(ctx, s, p.libraryID, uploadPath, version)
		if err != nil {
			p.logger.Warn("snapshot upload failed", "store", s.Name(), "version", version, "error", err)
			errs = append(errs, fmt.Errorf("uploading snapshot to %s: %w", s.Name(), err))
			continue
		}
		p.logger.Info("snapshot uploaded", "store", s.Name(), "version", version, "bytes", size)
	}
	return errors.Join(errs...)
}

func encryptFile(enc Encryptor, srcPath, destPath string) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating encrypted snapshot: %w", err)
	}
	if err := enc.Encrypt(in, out); err != nil {
		out.Close()
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing encrypted snapshot: %w", err)
	}
	return nil
}

func putFile(ctx context.Context, s Store, libraryID, path string, version int64) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening snapshot for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat snapshot: %w", err)
	}
	if err := s.Put(ctx, libraryID, f, info.Size(), version); err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Restore downloads the snapshot of libraryID from store and writes it to
// destPath, decrypting it first when dec is non-nil. destPath is replaced
// atomically. It returns the restored snapshot's version.
func Restore(ctx context.Context, store Store, libraryID string, dec DecryptionContext, destPath string) (int64, error) {
	version, err := store.Version(ctx, libraryID)
	if err != nil {
		return 0, fmt.Errorf("reading snapshot version: %w", err)
	}
	if version == 0 {
		return 0, fmt.Errorf("%w for library %s in %s", ErrNotFound, libraryID, store.Name())
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return 0, fmt.Errorf("creating library directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".restore-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if dec == nil {
		err = store.Get(ctx, libraryID, tmp)
	} else {
		err = getDecrypted(ctx, store, libraryID, dec, tmp)
	}
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing restored library: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return 0, fmt.Errorf("replacing library: %w", err)
	}
	success = true
	return version, nil
}

func getDecrypted(ctx context.Context, store Store, libraryID string, dec DecryptionContext, w *os.File) error {
	enc, err := os.CreateTemp(filepath.Dir(w.Name()), ".restore-enc-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(enc.Name())
	defer enc.Close()

	if err := store.Get(ctx, libraryID, enc); err != nil {
		return fmt.Errorf("downloading snapshot: %w", err)
	}
	if _, err := enc.Seek(0, 0); err != nil {
		return fmt.Errorf("rewinding snapshot: %w", err)
	}
	if err := dec.Decrypt(enc, w); err != nil {
		return fmt.Errorf("decrypting snapshot: %w", err)
	}
	return nil
}
