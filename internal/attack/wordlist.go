package attack

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoWordlist means no usable wordlist could be resolved.
var ErrNoWordlist = errors.New("wordlist file not found")

// samplePasswords seeds the demonstration wordlist used by automated runs
// that were not given one.
var samplePasswords = []string{
	"password",
	"12345678",
	"password123",
	"admin",
	"123456789",
	"qwerty123",
	"welcome",
	"letmein",
	"password1",
	"123123123",
	"admin123",
	"root",
	"toor",
	"pass",
	"test",
}

// WriteSampleWordlist writes the sample list into dir and returns its path
// and entry count.
func WriteSampleWordlist(dir string) (string, int, error) {
	path := filepath.Join(dir, "sample_wordlist.txt")
	data := strings.Join(samplePasswords, "\n") + "\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		return "", 0, fmt.Errorf("write sample wordlist: %w", err)
	}
	return path, len(samplePasswords), nil
}

// checkWordlist verifies the path names a readable regular file.
func checkWordlist(path string) error {
	if path == "" {
		return ErrNoWordlist
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNoWordlist, path)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNoWordlist, path)
	}
	return nil
}
