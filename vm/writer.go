// Package vm is the stateless sink over VM text: one method per verb of
// spec.md §4.4, each producing one "verb p1 p2\n" line with exactly the
// segment words and call-form spec.md §4.3/§6 specify. It carries no
// compilation policy — that is the engine's job.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/jacklang/jackc/logger"
)

// arithOp is the verb/params an operator token expands to. * and /
// have no dedicated VM instruction and lower to a Math call instead.
type arithOp struct {
	verb, p1, p2 string
}

var arithmeticOpsTable = map[string]arithOp{
	"+": {"add", "", ""},
	"-": {"sub", "", ""},
	"=": {"eq", "", ""},
	">": {"gt", "", ""},
	"<": {"lt", "", ""},
	"&": {"and", "", ""},
	"|": {"or", "", ""},
	"*": {"call", "Math.multiply", "2"},
	"/": {"call", "Math.divide", "2"},
}

// Writer buffers VM text over an io.Writer. Close flushes the buffer;
// the underlying io.Writer is left open (spec.md §5).
type Writer struct {
	out *bufio.Writer
	err error
}

func New(out io.Writer) *Writer {
	return &Writer{out: bufio.NewWriter(out)}
}

func (w *Writer) writeLine(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, err := fmt.Fprintf(w.out, format+"\n", args...)
	if err != nil {
		w.err = err
	}
}

// writeCommand emits one "verb p1 p2\n" line, per spec.md §4.4: absent
// parameters are empty strings, but the single spaces between all three
// fields are always preserved (matching VMWriter.writeCommand in
// original_source/VMWriter.java).
func (w *Writer) writeCommand(verb, p1, p2 string) {
	w.writeLine("%s %s %s", verb, p1, p2)
}

// Err returns the first write error encountered, if any.
func (w *Writer) Err() error { return w.err }

// Close flushes the buffered writer. It does not close the underlying
// io.Writer — that is the caller's (the CLI's) responsibility, matching
// spec.md §5's "release bound to scope exit" on the owner, not the sink.
func (w *Writer) Close() error {
	if err := w.out.Flush(); err != nil {
		if w.err == nil {
			w.err = err
		}
		return err
	}
	return w.err
}

func (w *Writer) WritePush(segment string, index int) {
	w.writeCommand("push", segment, strconv.Itoa(index))
}

func (w *Writer) WritePop(segment string, index int) {
	w.writeCommand("pop", segment, strconv.Itoa(index))
}

// WriteArithmetic emits the VM form of a binary operator token as listed
// in spec.md §4.3's Expression rule. Unary operators are not handled
// here; they go through WriteNeg and WriteNot.
func (w *Writer) WriteArithmetic(op string) {
	cmd, ok := arithmeticOpsTable[op]
	if !ok {
		logger.Printf("WARNING: ignoring arithmetic symbol %q\n", op)
		return
	}
	w.writeCommand(cmd.verb, cmd.p1, cmd.p2)
}

func (w *Writer) WriteNeg() { w.writeCommand("neg", "", "") }
func (w *Writer) WriteNot() { w.writeCommand("not", "", "") }

func (w *Writer) WriteLabel(label string)  { w.writeCommand("label", label, "") }
func (w *Writer) WriteGoto(label string)   { w.writeCommand("goto", label, "") }
func (w *Writer) WriteIfGoto(label string) { w.writeCommand("if-goto", label, "") }

func (w *Writer) WriteCall(name string, nArgs int) {
	w.writeCommand("call", name, strconv.Itoa(nArgs))
}

func (w *Writer) WriteFunction(name string, nLocals int) {
	w.writeCommand("function", name, strconv.Itoa(nLocals))
}

func (w *Writer) WriteReturn() { w.writeCommand("return", "", "") }
