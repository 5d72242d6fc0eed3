package fake

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

// EventKind is the kind of a bus event.
type EventKind int

// Bus events, in the order a master can produce them.
const (
	EventStart EventKind = iota
	EventRestart
	EventStop
	EventWrite
	EventRead
	EventAck
	EventNotAck
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "Start"
	case EventRestart:
		return "Restart"
	case EventStop:
		return "Stop"
	case EventWrite:
		return "Write"
	case EventRead:
		return "Read"
	case EventAck:
		return "Ack"
	case EventNotAck:
		return "NotAck"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one condition or byte seen on the simulated bus.
type Event struct {
	Kind EventKind
	// Byte is set for EventWrite and EventRead.
	Byte byte
	// Acked is set for EventWrite when a slave acknowledged the byte.
	Acked bool
}

func (e Event) String() string {
	switch e.Kind {
	case EventWrite:
		ack := "NACK"
		if e.Acked {
			ack = "ACK"
		}
		return fmt.Sprintf("Write(0x%02X)->%s", e.Byte, ack)
	case EventRead:
		return fmt.Sprintf("Read(0x%02X)", e.Byte)
	default:
		return e.Kind.String()
	}
}

// Trace is the ordered list of events seen on the bus.
type Trace []Event

// Strings renders each event, e.g. "Start", "Write(0xB0)->ACK", "Read(0x12)", "NotAck".
func (t Trace) Strings() []string {
	out := make([]string, 0, len(t))
	for _, e := range t {
		out = append(out, e.String())
	}
	return out
}

// Count returns how many events of kind k the trace holds.
func (t Trace) Count(k EventKind) int {
	n := 0
	for _, e := range t {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Kinds returns the kind of every event, dropping bytes and acknowledge results.
func (t Trace) Kinds() []EventKind {
	out := make([]EventKind, 0, len(t))
	for _, e := range t {
		out = append(out, e.Kind)
	}
	return out
}

// String prints out a table of the trace, one row per event.
func (t Trace) String() string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"#", "Condition", "Byte", "Slave"})
	for i, e := range t {
		var b, ack string
		switch e.Kind {
		case EventWrite:
			b = fmt.Sprintf("0x%02X", e.Byte)
			ack = "NACK"
			if e.Acked {
				ack = "ACK"
			}
		case EventRead:
			b = fmt.Sprintf("0x%02X", e.Byte)
		default:
		}
		tw.AppendRow(table.Row{i, e.Kind, b, ack})
	}
	return tw.Render()
}
