package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// The session record is a plaintext three-line file (server address, session
// token, user id) written after a successful login and read at startup to
// skip re-authentication. Nothing beyond the three parsed values is defined
// or validated here.

// ReadSessionFile parses the record at path.
func ReadSessionFile(path string) (addr string, sess Session, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", Session{}, err
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != 3 {
		return "", Session{}, fmt.Errorf("session record %s: want 3 lines, got %d", path, len(lines))
	}
	userID, err := strconv.ParseUint(strings.TrimSpace(lines[2]), 10, 64)
	if err != nil {
		return "", Session{}, fmt.Errorf("session record %s: bad user id: %w", path, err)
	}
	return strings.TrimSpace(lines[0]), Session{Token: strings.TrimSpace(lines[1]), UserID: userID}, nil
}

// WriteSessionFile writes the record to path, readable by the owner only.
func WriteSessionFile(path, addr string, sess Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	record := fmt.Sprintf("%s\n%s\n%d\n", addr, sess.Token, sess.UserID)
	return os.WriteFile(path, []byte(record), 0600)
}
