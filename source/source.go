// Package source carries file positions for diagnostics. The engine never
// reads source text itself; spans arrive from the host resolver attached to
// the annotations and expressions it is asked to check.
package source

import "fmt"

type Pos struct {
	Offset int
	Line   int
	Column int
}

// Min treats a zero Column as "no position".
func (p Pos) Min(other Pos) Pos {
	if p.Column == 0 {
		return other
	}
	if other.Column == 0 {
		return p
	}
	if p.Offset < other.Offset {
		return p
	}
	return other
}

func (p Pos) Max(other Pos) Pos {
	if p.Column == 0 {
		return other
	}
	if other.Column == 0 {
		return p
	}
	if p.Offset > other.Offset {
		return p
	}
	return other
}

type Span struct {
	File  string
	Start Pos
	End   Pos
}

// Add joins two spans into the smallest span covering both.
func (s Span) Add(other Span) Span {
	file := s.File
	if file == "" {
		file = other.File
	}
	return Span{file, s.Start.Min(other.Start), s.End.Max(other.End)}
}

func (s Span) Known() bool {
	return s.Start.Column != 0
}

func (s Span) String() string {
	prefix := ""
	if s.File != "" {
		prefix = s.File + ":"
	}
	if s.Start == s.End {
		return fmt.Sprintf("%s%d:%d", prefix, s.Start.Line, s.Start.Column)
	}
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%s%d:%d-%d", prefix, s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%s%d:%d-%d:%d", prefix, s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}
