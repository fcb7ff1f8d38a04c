package program

import "fmt"

// Buffer accumulates a program's instruction stream. Consecutive literal and
// expression emissions are coalesced into a single Emit, and adjacent
// literal parts into a single string, without changing the rendered output.
type Buffer struct {
	instructions []Instruction
	// open is the Emit built by Literal and Expression that later parts may
	// still extend.
	open *Emit
}

// Literal appends static text.
func (b *Buffer) Literal(text string) {
	if text == "" {
		return
	}
	b.part(Part{Text: text})
}

// Expression appends a dynamic part.
func (b *Buffer) Expression(part Part) {
	b.part(part)
}

func (b *Buffer) part(part Part) {
	emit, ok := b.tail().(*Emit)
	if !ok || emit != b.open {
		b.open = &Emit{Parts: []Part{part}}
		b.instructions = append(b.instructions, b.open)
		return
	}
	last := &emit.Parts[len(emit.Parts)-1]
	if part.IsLiteral() && last.IsLiteral() {
		last.Text += part.Text
		return
	}
	emit.Parts = append(emit.Parts, part)
}

// Push appends a raw instruction. An Emit passed here is kept as given:
// later Literal and Expression calls start a new Emit after it.
func (b *Buffer) Push(in Instruction) {
	b.instructions = append(b.instructions, in)
}

// Discard removes the last n instructions, which must all be debug
// bookkeeping.
func (b *Buffer) Discard(n int) error {
	if n > len(b.instructions) {
		return fmt.Errorf("program: cannot discard %d of %d instructions", n, len(b.instructions))
	}
	tail := b.instructions[len(b.instructions)-n:]
	for _, in := range tail {
		if !isDebug(in) {
			return fmt.Errorf("program: refusing to discard %q", in.String())
		}
	}
	b.instructions = b.instructions[:len(b.instructions)-n]
	return nil
}

// Len returns the number of instructions.
func (b *Buffer) Len() int { return len(b.instructions) }

// Instructions returns the accumulated stream.
func (b *Buffer) Instructions() []Instruction { return b.instructions }

func (b *Buffer) tail() Instruction {
	if len(b.instructions) == 0 {
		return nil
	}
	return b.instructions[len(b.instructions)-1]
}
