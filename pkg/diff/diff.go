package diff

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"veoprompt/pkg/render"
	"veoprompt/pkg/scene"

	"github.com/aryann/difflib"
)

type ChangeType int

const (
	Unchanged ChangeType = iota
	Added
	Removed
	Modified
)

func (c ChangeType) String() string {
	switch c {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	default:
		return "unchanged"
	}
}

func (c ChangeType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

func (o Op) MarshalText() ([]byte, error) {
	switch o {
	case Insert:
		return []byte("insert"), nil
	case Delete:
		return []byte("delete"), nil
	default:
		return []byte("equal"), nil
	}
}

type WordDelta struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

type StringDiff struct {
	Old    string      `json:"-"`
	New    string      `json:"-"`
	Deltas []WordDelta `json:"deltas"`
}

type FieldDiff struct {
	Path string     `json:"path"`
	Str  StringDiff `json:"diff"`
}

type CharacterDiff struct {
	ID         string      `json:"id"`
	State      ChangeType  `json:"state"`
	FieldDiffs []FieldDiff `json:"fields,omitempty"`
}

type DialogueDiff struct {
	ID         string      `json:"id"`
	State      ChangeType  `json:"state"`
	FieldDiffs []FieldDiff `json:"fields,omitempty"`
}

// Diff is the change between two consecutive renders of a scene.
type Diff struct {
	Characters []CharacterDiff `json:"characters,omitempty"`
	Dialogues  []DialogueDiff  `json:"dialogues,omitempty"`
	Outputs    []FieldDiff     `json:"outputs,omitempty"`
}

func (d Diff) Empty() bool {
	return len(d.Characters) == 0 && len(d.Dialogues) == 0 && len(d.Outputs) == 0
}

// Scenes compares two models and the renders they produced.
func Scenes(oldM, newM scene.Model, oldR, newR render.Output) Diff {
	return Diff{
		Characters: Characters(oldM.Characters, newM.Characters),
		Dialogues:  Dialogues(oldM.Dialogues, newM.Dialogues),
		Outputs:    Outputs(oldR, newR),
	}
}

// Outputs lists the artifacts that changed between two renders.
func Outputs(o, n render.Output) []FieldDiff {
	var fd []FieldDiff
	add := func(path, a, b string) {
		if a == b {
			return
		}
		fd = append(fd, FieldDiff{Path: path, Str: strDiff(a, b)})
	}
	add("native", o.Native, n.Native)
	add("secondary", o.Secondary, n.Secondary)
	add("system", o.System, n.System)
	add("payload", o.PayloadJSON(), n.PayloadJSON())
	return fd
}

// Characters reports added, removed and modified characters keyed by id.
// Unchanged characters are omitted.
func Characters(oldC, newC []scene.Character) []CharacterDiff {
	omap := make(map[string]scene.Character, len(oldC))
	for _, c := range oldC {
		omap[c.ID] = c
	}
	nmap := make(map[string]scene.Character, len(newC))
	for _, c := range newC {
		nmap[c.ID] = c
	}

	var out []CharacterDiff
	for id, o := range omap {
		if _, ok := nmap[id]; !ok {
			out = append(out, CharacterDiff{ID: id, State: Removed, FieldDiffs: characterFields(o, scene.Character{})})
		}
	}
	for id, n := range nmap {
		o, ok := omap[id]
		if !ok {
			fd := characterFields(scene.Character{}, n)
			for i := range fd {
				fd[i].Str = strEq("", fd[i].Str.New)
			}
			out = append(out, CharacterDiff{ID: id, State: Added, FieldDiffs: fd})
			continue
		}
		if fd := characterFields(o, n); len(fd) > 0 {
			out = append(out, CharacterDiff{ID: id, State: Modified, FieldDiffs: fd})
		}
	}
	slices.SortFunc(out, func(a, b CharacterDiff) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func characterFields(o, n scene.Character) []FieldDiff {
	fd := make([]FieldDiff, 0, 10)
	addFieldDiff := func(path, a, b string) {
		if a == b {
			return
		}
		fd = append(fd, FieldDiff{Path: path, Str: strDiff(a, b)})
	}

	addFieldDiff("Ethnicity", o.EthnicityLabel(), n.EthnicityLabel())
	addFieldDiff("Gender", o.Gender, n.Gender)
	addFieldDiff("Age", o.Age, n.Age)
	addFieldDiff("Outfit", o.Outfit, n.Outfit)
	addFieldDiff("Hairstyle", o.Hairstyle, n.Hairstyle)
	addFieldDiff("Voice", o.Voice, n.Voice)
	addFieldDiff("Description", o.Description, n.Description)
	if o.LookAtCamera != n.LookAtCamera {
		addFieldDiff("LookAtCamera", strconv.FormatBool(o.LookAtCamera), strconv.FormatBool(n.LookAtCamera))
	}
	return fd
}

// Dialogues reports added, removed and modified lines keyed by id.
func Dialogues(oldD, newD []scene.Dialogue) []DialogueDiff {
	omap := make(map[string]scene.Dialogue, len(oldD))
	for _, d := range oldD {
		omap[d.ID] = d
	}

	seen := make(map[string]struct{}, len(newD))
	var out []DialogueDiff
	for _, n := range newD {
		seen[n.ID] = struct{}{}
		o, ok := omap[n.ID]
		if !ok {
			out = append(out, DialogueDiff{
				ID:    n.ID,
				State: Added,
				FieldDiffs: []FieldDiff{
					{Path: "CharacterID", Str: strEq("", n.CharacterID)},
					{Path: "Text", Str: strEq("", n.Text)},
				},
			})
			continue
		}
		var fd []FieldDiff
		if o.CharacterID != n.CharacterID {
			fd = append(fd, FieldDiff{Path: "CharacterID", Str: strDiff(o.CharacterID, n.CharacterID)})
		}
		if o.Text != n.Text {
			fd = append(fd, FieldDiff{Path: "Text", Str: strDiff(o.Text, n.Text)})
		}
		if len(fd) > 0 {
			out = append(out, DialogueDiff{ID: n.ID, State: Modified, FieldDiffs: fd})
		}
	}
	for _, o := range oldD {
		if _, ok := seen[o.ID]; !ok {
			out = append(out, DialogueDiff{ID: o.ID, State: Removed})
		}
	}
	return out
}

// TokenizeWords splits s into runs of spaces, words and punctuation so that
// joining the result yields s again.
func TokenizeWords(s string) []string {
	var out []string
	var cur []rune
	kind := -1 // 0=space,1=word,2=punct
	flush := func() {
		if len(cur) == 0 {
			return
		}
		out = append(out, string(cur))
		cur = cur[:0]
	}
	for _, r := range s {
		k := 2
		switch {
		case unicode.IsSpace(r):
			k = 0
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || r == '-' || r == '\'':
			k = 1
		}
		if kind == -1 {
			kind = k
		}
		if k != kind || k == 2 {
			flush()
			kind = k
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

func strEq(a, b string) StringDiff {
	return StringDiff{Old: a, New: b, Deltas: []WordDelta{{Op: Insert, Text: b}}}
}

// Strings diffs a and b word by word.
func Strings(a, b string) StringDiff {
	return strDiff(a, b)
}

func strDiff(a, b string) StringDiff {
	if a == b {
		return StringDiff{Old: a, New: b, Deltas: []WordDelta{{Op: Equal, Text: a}}}
	}
	at := TokenizeWords(a)
	bt := TokenizeWords(b)
	recs := difflib.Diff(at, bt)
	deltas := make([]WordDelta, 0, len(recs))
	for _, r := range recs {
		switch r.Delta {
		case difflib.Common:
			deltas = append(deltas, WordDelta{Op: Equal, Text: r.Payload})
		case difflib.LeftOnly:
			deltas = append(deltas, WordDelta{Op: Delete, Text: r.Payload})
		case difflib.RightOnly:
			deltas = append(deltas, WordDelta{Op: Insert, Text: r.Payload})
		}
	}
	return StringDiff{Old: a, New: b, Deltas: coalesce(deltas)}
}

// coalesce merges neighbouring deltas of the same op. Whitespace shared by
// both sides is folded into whatever run it sits in.
func coalesce(in []WordDelta) []WordDelta {
	out := make([]WordDelta, 0, len(in))
	flush := func(op Op, buf *strings.Builder) {
		if buf.Len() == 0 {
			return
		}
		out = append(out, WordDelta{Op: op, Text: buf.String()})
		buf.Reset()
	}
	var curOp Op = -1
	var buf strings.Builder
	for _, d := range in {
		if strings.TrimSpace(d.Text) == "" && d.Op == Equal && curOp != -1 {
			buf.WriteString(d.Text)
			continue
		}
		if curOp != d.Op && curOp != -1 {
			flush(curOp, &buf)
		}
		curOp = d.Op
		buf.WriteString(d.Text)
	}
	flush(curOp, &buf)
	return out
}

const (
	ansiReset = "\x1b[0m"
	fgGreen   = "\x1b[32m"
	fgRed     = "\x1b[31m"
	fgYellow  = "\x1b[33m"
	fgCyan    = "\x1b[36m"
	faint     = "\x1b[2m"
	uline     = "\x1b[4m"
	strike    = "\x1b[9m"
)

func renderStringDiff(sd StringDiff) string {
	var b strings.Builder
	for _, d := range sd.Deltas {
		switch d.Op {
		case Equal:
			b.WriteString(d.Text)
		case Insert:
			fmt.Fprintf(&b, "%s%s%s%s", fgGreen, uline, d.Text, ansiReset)
		case Delete:
			fmt.Fprintf(&b, "%s%s%s%s", fgRed, strike, d.Text, ansiReset)
		}
	}
	return b.String()
}

var stateTags = map[ChangeType]string{
	Added:     fgGreen + "[+]" + ansiReset,
	Removed:   fgRed + "[-]" + ansiReset,
	Modified:  fgYellow + "[~]" + ansiReset,
	Unchanged: faint + "[=]" + ansiReset,
}

// Print writes a colored summary of d to w. Output artifacts are listed by
// name only.
func (d Diff) Print(w io.Writer) {
	if len(d.Characters) > 0 {
		fmt.Fprintln(w, fgCyan+"Characters"+ansiReset)
		for _, c := range d.Characters {
			fmt.Fprintf(w, "  %s %s\n", stateTags[c.State], c.ID)
			for _, f := range c.FieldDiffs {
				fmt.Fprintf(w, "    %s: %s\n", f.Path, renderStringDiff(f.Str))
			}
		}
	}
	if len(d.Dialogues) > 0 {
		fmt.Fprintln(w, fgCyan+"Dialogues"+ansiReset)
		for _, dl := range d.Dialogues {
			fmt.Fprintf(w, "  %s %s\n", stateTags[dl.State], dl.ID)
			for _, f := range dl.FieldDiffs {
				fmt.Fprintf(w, "    %s: %s\n", f.Path, renderStringDiff(f.Str))
			}
		}
	}
	if len(d.Outputs) > 0 {
		names := make([]string, 0, len(d.Outputs))
		for _, f := range d.Outputs {
			names = append(names, f.Path)
		}
		fmt.Fprintf(w, "%sOutputs%s %s%s%s\n", fgCyan, ansiReset, faint, strings.Join(names, ", "), ansiReset)
	}
}
