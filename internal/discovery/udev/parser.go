// internal/discovery/udev/parser.go
package udev

import (
	"regexp"
	"strings"

	"serial-discovery/internal/model"
)

// Line tags emitted by `udevadm info -e`
const (
	tagEntry    = 'P'
	tagName     = 'N'
	tagProperty = 'E'
)

// payloadOffset skips the "X: " prefix of every line
const payloadOffset = 3

var ttyNamePattern = regexp.MustCompile(`tty(S|WCH|ACM|USB|AMA|MFD|O|XRUSB)|rfcomm`)

type parserState int

const (
	// stateAwaitingEntry: no P line seen yet; lines apply to the initial record
	stateAwaitingEntry parserState = iota
	stateBuildingEntry
	// stateEntryAccepted: record already emitted, E lines still mutate it
	stateEntryAccepted
	// stateEntrySkipped: N line rejected, ignore everything until next P
	stateEntrySkipped
)

func (s parserState) String() string {
	switch s {
	case stateAwaitingEntry:
		return "awaiting_entry"
	case stateBuildingEntry:
		return "building_entry"
	case stateEntryAccepted:
		return "entry_accepted"
	case stateEntrySkipped:
		return "entry_skipped"
	default:
		return "unknown"
	}
}

// IsSerialDeviceName reports whether a udev device name looks like a TTY
// serial port
func IsSerialDeviceName(name string) bool {
	return ttyNamePattern.MatchString(name)
}

// Parser turns the flat `udevadm info -e` listing into PortInfo records.
// Lines must be fed in the order udevadm printed them.
type Parser struct {
	state   parserState
	current *model.PortInfo
	ports   []*model.PortInfo
}

// NewParser creates a parser positioned before the first entry
func NewParser() *Parser {
	return &Parser{
		state:   stateAwaitingEntry,
		current: &model.PortInfo{},
	}
}

// Feed consumes a single line of udevadm output
func (p *Parser) Feed(line string) {
	if line == "" {
		return
	}

	var payload string
	if len(line) > payloadOffset {
		payload = line[payloadOffset:]
	}

	switch line[0] {
	case tagEntry:
		p.current = &model.PortInfo{}
		p.state = stateBuildingEntry
	case tagName:
		p.handleName(payload)
	case tagProperty:
		p.handleProperty(payload)
	}
}

func (p *Parser) handleName(name string) {
	// An entry carries one N line; a repeat never re-emits or un-accepts it.
	if p.state == stateEntrySkipped || p.state == stateEntryAccepted {
		return
	}

	if !IsSerialDeviceName(name) {
		p.state = stateEntrySkipped
		return
	}

	p.current.Path = name
	p.ports = append(p.ports, p.current)
	p.state = stateEntryAccepted
}

func (p *Parser) handleProperty(payload string) {
	if p.state == stateEntrySkipped {
		return
	}

	key, value, ok := strings.Cut(payload, "=")
	if !ok {
		return
	}

	field, ok := CanonicalName(key)
	if !ok {
		return
	}

	setField(p.current, field, CanonicalValue(field, value))
}

// Ports returns the records accepted so far, in stream order
func (p *Parser) Ports() []model.PortInfo {
	ports := make([]model.PortInfo, len(p.ports))
	for i, port := range p.ports {
		ports[i] = *port
	}
	return ports
}
