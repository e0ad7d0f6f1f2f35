package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Configuration for Argon2id hashing.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // Length of the generated hash
	saltLength  = 16        // Length of the salt
)

var (
	pepperMu   sync.Mutex
	pepper     string
	pepperFile string
)

// SetPepperPath configures the file the pepper is loaded from (and written
// to on first run). It must be called before the first hash operation;
// once the pepper is loaded the path no longer matters.
func SetPepperPath(file string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepperFile = file
}

// LoadPepper eagerly loads or generates the pepper so a bad path fails at
// startup rather than during the first login.
func LoadPepper() error {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	if pepper != "" {
		return nil
	}
	return loadPepper()
}

// GetPepper returns the process-wide pepper, loading it on first use. With
// no path configured, or when the configured file cannot be used, the
// pepper is generated in memory; hashes made with an ephemeral pepper do
// not survive a restart, so servers load theirs from a file via LoadPepper.
func GetPepper() string {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	if pepper == "" {
		if err := loadPepper(); err != nil {
			slog.Error("load pepper, continuing with an ephemeral one", slog.Any("err", err))
			pepper = randomPepper()
		}
	}
	return pepper
}

func loadPepper() error {
	if pepperFile == "" {
		pepper = randomPepper()
		return nil
	}

	loaded, err := loadOrGeneratePepper()
	if err != nil {
		return fmt.Errorf("pepper file %s: %w", pepperFile, err)
	}
	pepper = loaded
	return nil
}

// loadOrGeneratePepper loads the pepper from a file or generates one if not found.
func loadOrGeneratePepper() (string, error) {
	pepperFile = filepath.Clean(pepperFile)
	pepperDir := filepath.Dir(pepperFile)
	if err := os.MkdirAll(pepperDir, 0750); err != nil {
		return "", err
	}

	if _, err := os.Stat(pepperFile); os.IsNotExist(err) {
		generated := randomPepper()
		if err := os.WriteFile(pepperFile, []byte(generated), 0600); err != nil {
			return "", err
		}
		return generated, nil
	}

	pepperBytes, err := os.ReadFile(pepperFile)
	if err != nil {
		return "", err
	}

	return string(pepperBytes), nil
}

func randomPepper() string {
	pepperBytes := make([]byte, keyLength)
	if _, err := rand.Read(pepperBytes); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(pepperBytes)
}
