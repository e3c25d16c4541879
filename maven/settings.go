// Package maven stores CodeArtifact tokens as server passwords in a Maven
// settings.xml file.
//
// Edits are byte splices: only the password element of the target server is
// rewritten and every other byte of the file is kept. Writes are serialized
// with an advisory lock next to the file and land through an atomic rename.
package maven

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/gofrs/flock"
)

var (
	// ErrServerNotFound means no server entry carries the requested id.
	ErrServerNotFound = errors.New("server not found in settings")
	// ErrDuplicateServer means several server entries carry the requested id.
	ErrDuplicateServer = errors.New("server id defined more than once in settings")
	// ErrDuplicateID means the server entry has several id elements.
	ErrDuplicateID = errors.New("server has more than one id element")
	// ErrDuplicatePassword means the server entry has several password elements.
	ErrDuplicatePassword = errors.New("server has more than one password element")
	// ErrServerExists is returned by AddServer for an id that is already defined.
	ErrServerExists = errors.New("server already defined in settings")
)

const settingsSkeleton = `<?xml version="1.0" encoding="UTF-8"?>
<settings xmlns="http://maven.apache.org/SETTINGS/1.0.0"
          xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
          xsi:schemaLocation="http://maven.apache.org/SETTINGS/1.0.0 http://maven.apache.org/xsd/settings-1.0.0.xsd">
</settings>
`

const indentUnit = "    "

// Settings is one settings.xml file on disk.
type Settings struct {
	path string
}

// Open returns the settings stored at path. The file is read lazily.
func Open(path string) *Settings {
	return &Settings{path: path}
}

// Path returns the location of the settings file.
func (s *Settings) Path() string {
	return s.path
}

// Handle designates the server entry that receives the secret.
type Handle struct {
	ServerID    string
	HasPassword bool // False when SetSecret will create the password element
}

// Locate verifies that serverID designates exactly one server entry.
// Run it before obtaining the secret, so a bad id fails before any prompt.
func (s *Settings) Locate(serverID string) (*Handle, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q (no settings file at %s)", ErrServerNotFound, serverID, s.path)
	}

	if err != nil {
		return nil, fmt.Errorf("cannot read maven settings: %w", err)
	}

	doc, err := scan(data)
	if err != nil {
		return nil, err
	}

	srv, err := locate(doc, serverID)
	if err != nil {
		return nil, err
	}

	return &Handle{ServerID: serverID, HasPassword: len(srv.passwords) == 1}, nil
}

func locate(doc *document, serverID string) (*server, error) {
	found := doc.lookup(serverID)

	switch {
	case len(found) == 0:
		return nil, fmt.Errorf("%w: %q", ErrServerNotFound, serverID)
	case len(found) > 1:
		return nil, fmt.Errorf("%w: %q", ErrDuplicateServer, serverID)
	case len(found[0].ids) > 1:
		return nil, fmt.Errorf("%w: %q", ErrDuplicateID, serverID)
	case len(found[0].passwords) > 1:
		return nil, fmt.Errorf("%w: %q", ErrDuplicatePassword, serverID)
	}

	return found[0], nil
}

// SetSecret writes value as the password of the located server.
// The file is re-read under the lock, so concurrent edits of other entries survive.
func (s *Settings) SetSecret(h *Handle, value string) error {
	if h == nil {
		return errors.New("nil server handle")
	}

	return s.update(func(doc *document) ([]byte, error) {
		srv, err := locate(doc, h.ServerID)
		if err != nil {
			return nil, err
		}

		element := "<password>" + escape(value) + "</password>"

		if len(srv.passwords) == 1 {
			return doc.splice(srv.passwords[0], element), nil
		}

		return insertChild(doc, srv.closeTag, "server", element), nil
	})
}

// ServerIDs returns the sorted ids of the servers whose username is username.
// A missing settings file has no servers.
func (s *Settings) ServerIDs(username string) ([]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("cannot read maven settings: %w", err)
	}

	doc, err := scan(data)
	if err != nil {
		return nil, err
	}

	var ids []string

	for _, srv := range doc.servers {
		if srv.Username() == username && srv.ID() != "" {
			ids = append(ids, srv.ID())
		}
	}

	slices.Sort(ids)

	return slices.Compact(ids), nil
}

// AddServer appends a new server entry, creating the servers section and the
// file itself when they are missing.
func (s *Settings) AddServer(serverID, username, secret string) error {
	if serverID == "" {
		return errors.New("server id cannot be empty")
	}

	return s.update(func(doc *document) ([]byte, error) {
		if len(doc.lookup(serverID)) > 0 {
			return nil, fmt.Errorf("%w: %q", ErrServerExists, serverID)
		}

		entry := "<server>" +
			"<id>" + escape(serverID) + "</id>" +
			"<username>" + escape(username) + "</username>" +
			"<password>" + escape(secret) + "</password>" +
			"</server>"

		if doc.hasServers {
			return insertChild(doc, doc.serversClose, "servers", entry), nil
		}

		return insertChild(doc, doc.settingsClose, "settings", "<servers>"+entry+"</servers>"), nil
	})
}

// insertChild places element as the last child of the element closed by closeTag,
// indented one level deeper than the closing tag when it sits on its own line.
func insertChild(doc *document, closeTag span, name, element string) []byte {
	if closeTag.empty() {
		// "<x/>" ends right at the synthesized close tag: reopen it around the child.
		return doc.splice(span{closeTag.start - len("/>"), closeTag.start}, ">"+element+"</"+name+">")
	}

	indent, ok := doc.indentOf(closeTag.start)
	if !ok {
		return doc.splice(span{closeTag.start, closeTag.start}, element)
	}

	at := closeTag.start - len(indent)

	return doc.splice(span{at, at}, indent+indentUnit+element+"\n")
}

// update applies edit to the current file content under the settings lock.
func (s *Settings) update(edit func(*document) ([]byte, error)) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire settings lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, mode, err := readOrSkeleton(s.path)
	if err != nil {
		return err
	}

	doc, err := scan(data)
	if err != nil {
		return err
	}

	out, err := edit(doc)
	if err != nil {
		return err
	}

	return writeAtomic(s.path, out, mode)
}

func readOrSkeleton(path string) ([]byte, fs.FileMode, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []byte(settingsSkeleton), 0o600, nil
	}

	if err != nil {
		return nil, 0, fmt.Errorf("cannot read maven settings: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("cannot read maven settings: %w", err)
	}

	return data, info.Mode().Perm(), nil
}

// writeAtomic replaces path with data through a temporary file in the same directory.
func writeAtomic(path string, data []byte, mode fs.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "settings-tmp-*.xml")
	if err != nil {
		return fmt.Errorf("create temporary settings: %w", err)
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("write temporary settings: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("sync temporary settings: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temporary settings: %w", err)
	}

	if err = os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("chmod temporary settings: %w", err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}

	return nil
}
