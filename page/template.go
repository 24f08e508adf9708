package page

import (
	"fmt"
	"strings"
)

// Slot names a location in a template that can be filled with generated markup.
type Slot uint8

const (
	SlotHeader Slot = iota
	SlotNav
	SlotMain
	SlotForm
	SlotImage
	SlotFooter
)

// Slots lists every slot in the order they appear in the default template.
var Slots = []Slot{SlotHeader, SlotNav, SlotMain, SlotForm, SlotImage, SlotFooter}

func (s Slot) String() string {
	switch s {
	case SlotHeader:
		return "header"
	case SlotNav:
		return "nav"
	case SlotMain:
		return "main"
	case SlotForm:
		return "form"
	case SlotImage:
		return "image"
	case SlotFooter:
		return "footer"
	default:
		return fmt.Sprintf("slot(%d)", uint8(s))
	}
}

// Marker returns the literal placeholder that marks this slot in a template.
func (s Slot) Marker() string {
	return "<!--" + strings.ToUpper(s.String()) + "_PLACEHOLDER-->"
}

type segment struct {
	text   string
	slot   Slot
	isSlot bool
}

// Template is a parsed HTML skeleton: an ordered list of literal text and named slots.
// A slot only exists if its marker occurs exactly once in the source; duplicated markers are kept as literal text.
// Templates are immutable and safe for concurrent use.
type Template struct {
	segments []segment
	slots    map[Slot]bool
}

// ParseTemplate splits the source on the markers of all known slots.
func ParseTemplate(source string) *Template {
	t := &Template{slots: make(map[Slot]bool, len(Slots))}
	for _, slot := range Slots {
		if strings.Count(source, slot.Marker()) == 1 {
			t.slots[slot] = true
		}
	}

	rest := source
	for len(rest) > 0 {
		index, slot := t.nextMarker(rest)
		if index < 0 {
			t.segments = append(t.segments, segment{text: rest})
			break
		}
		if index > 0 {
			t.segments = append(t.segments, segment{text: rest[:index]})
		}
		t.segments = append(t.segments, segment{slot: slot, isSlot: true})
		rest = rest[index+len(slot.Marker()):]
	}
	return t
}

// nextMarker returns the position of the earliest fillable marker in s, or -1 if there is none.
func (t *Template) nextMarker(s string) (int, Slot) {
	first, found := -1, Slot(0)
	for slot := range t.slots {
		i := strings.Index(s, slot.Marker())
		if i >= 0 && (first < 0 || i < first) {
			first, found = i, slot
		}
	}
	return first, found
}

// Has reports whether the slot can be filled in this template.
func (t *Template) Has(slot Slot) bool {
	return t.slots[slot]
}

// Render writes the template, replacing every slot that has content and keeping the marker of every other slot.
func (t *Template) Render(content map[Slot]string) string {
	var sb strings.Builder
	for _, seg := range t.segments {
		if !seg.isSlot {
			sb.WriteString(seg.text)
			continue
		}
		if value, ok := content[seg.slot]; ok {
			sb.WriteString(value)
		} else {
			sb.WriteString(seg.slot.Marker())
		}
	}
	return sb.String()
}

// String returns the original template source.
func (t *Template) String() string {
	return t.Render(nil)
}
