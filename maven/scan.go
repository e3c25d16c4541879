package maven

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	pathSettings = "settings"
	pathServers  = "settings/servers"
	pathServer   = "settings/servers/server"
	pathID       = "settings/servers/server/id"
	pathUsername = "settings/servers/server/username"
	pathPassword = "settings/servers/server/password"
)

// span is a byte range [start, end) of the original document.
type span struct {
	start int
	end   int
}

// empty reports whether the closing tag of an element was synthesized
// from "<x/>", so it occupies no bytes.
func (s span) empty() bool {
	return s.start == s.end
}

type server struct {
	ids       []*strings.Builder
	username  strings.Builder
	passwords []span
	closeTag  span
}

// ID returns the text of the first id element.
func (s *server) ID() string {
	if len(s.ids) == 0 {
		return ""
	}

	return strings.TrimSpace(s.ids[0].String())
}

func (s *server) hasID(id string) bool {
	for _, b := range s.ids {
		if strings.TrimSpace(b.String()) == id {
			return true
		}
	}

	return false
}

func (s *server) Username() string {
	return strings.TrimSpace(s.username.String())
}

// document is the byte-level map of a settings.xml file.
// Offsets are taken from the decoder so edits can be spliced into the original
// bytes and everything else, comments and formatting included, stays intact.
type document struct {
	data          []byte
	servers       []*server
	hasServers    bool
	serversClose  span
	hasSettings   bool
	settingsClose span
}

func scan(data []byte) (*document, error) {
	doc := &document{data: data}
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		stack []string
		cur   *server
		texts = map[string]*strings.Builder{}
	)

	for {
		start := int(dec.InputOffset())

		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("invalid settings file: %w", err)
		}

		end := int(dec.InputOffset())

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)

			switch strings.Join(stack, "/") {
			case pathSettings:
				doc.hasSettings = true
			case pathServers:
				doc.hasServers = true
			case pathServer:
				cur = &server{}
				texts[pathUsername] = &cur.username
			case pathID:
				cur.ids = append(cur.ids, &strings.Builder{})
				texts[pathID] = cur.ids[len(cur.ids)-1]
			case pathPassword:
				cur.passwords = append(cur.passwords, span{start: start})
			}
		case xml.EndElement:
			switch strings.Join(stack, "/") {
			case pathSettings:
				doc.settingsClose = span{start, end}
			case pathServers:
				// Only the first servers section receives new entries.
				if doc.serversClose == (span{}) {
					doc.serversClose = span{start, end}
				}
			case pathServer:
				cur.closeTag = span{start, end}
				doc.servers = append(doc.servers, cur)
				cur = nil
			case pathPassword:
				cur.passwords[len(cur.passwords)-1].end = end
			}

			stack = stack[:len(stack)-1]
		case xml.CharData:
			if b, ok := texts[strings.Join(stack, "/")]; ok && cur != nil {
				b.Write(t)
			}
		}
	}

	if !doc.hasSettings {
		return nil, errors.New("invalid settings file: missing <settings> root element")
	}

	return doc, nil
}

// lookup returns every server with an id element equal to serverID.
func (d *document) lookup(serverID string) []*server {
	var found []*server

	for _, s := range d.servers {
		if s.hasID(serverID) {
			found = append(found, s)
		}
	}

	return found
}

// indentOf returns the whitespace that precedes offset on its line, if the line
// holds nothing else before it.
func (d *document) indentOf(offset int) (string, bool) {
	lineStart := bytes.LastIndexByte(d.data[:offset], '\n') + 1
	prefix := d.data[lineStart:offset]

	if len(bytes.TrimSpace(prefix)) != 0 {
		return "", false
	}

	return string(prefix), true
}

// splice returns a copy of the document with r replaced by text.
func (d *document) splice(r span, text string) []byte {
	out := make([]byte, 0, len(d.data)+len(text))
	out = append(out, d.data[:r.start]...)
	out = append(out, text...)
	out = append(out, d.data[r.end:]...)

	return out
}

func escape(value string) string {
	var b strings.Builder

	_ = xml.EscapeText(&b, []byte(value))

	return b.String()
}
