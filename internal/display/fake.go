package display

import "sync"

// Op records one primitive call on the FakeSink.
type Op struct {
	Kind   string // "text", "icon", "frame", "dial", "clear", "commit", "commit-full"
	Text   string
	Font   Font
	Region Region
	Icon   string
	X, Y   int
	Used   int
}

// FakeSink records draw primitives for test assertions.
type FakeSink struct {
	mu  sync.Mutex
	ops []Op

	// FullRequested mirrors the one-shot full refresh latch.
	FullRequested bool
}

// NewFakeSink creates a FakeSink for testing.
func NewFakeSink() *FakeSink {
	return &FakeSink{}
}

func (f *FakeSink) record(op Op) {
	f.mu.Lock()
	f.ops = append(f.ops, op)
	f.mu.Unlock()
}

func (f *FakeSink) Text(s string, font Font, r Region) {
	f.record(Op{Kind: "text", Text: s, Font: font, Region: r})
}

func (f *FakeSink) Icon(name string, x, y int) {
	f.record(Op{Kind: "icon", Icon: name, X: x, Y: y})
}

func (f *FakeSink) Frame(r Region) {
	f.record(Op{Kind: "frame", Region: r})
}

func (f *FakeSink) Dial(label string, used int, r Region) {
	f.record(Op{Kind: "dial", Text: label, Used: used, Region: r})
}

func (f *FakeSink) Clear() {
	f.record(Op{Kind: "clear"})
}

func (f *FakeSink) Commit() {
	f.mu.Lock()
	f.ops = append(f.ops, Op{Kind: "commit"})
	f.FullRequested = false
	f.mu.Unlock()
}

func (f *FakeSink) CommitFull() {
	f.record(Op{Kind: "commit-full"})
}

func (f *FakeSink) RequestFullRefresh() {
	f.mu.Lock()
	f.FullRequested = true
	f.mu.Unlock()
}

// Ops returns a copy of all recorded operations.
func (f *FakeSink) Ops() []Op {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Op, len(f.ops))
	copy(out, f.ops)
	return out
}

// Commits counts commit and commit-full operations.
func (f *FakeSink) Commits() int {
	n := 0
	for _, op := range f.Ops() {
		if op.Kind == "commit" || op.Kind == "commit-full" {
			n++
		}
	}
	return n
}

// Texts returns every string drawn via Text, in order.
func (f *FakeSink) Texts() []string {
	var out []string
	for _, op := range f.Ops() {
		if op.Kind == "text" {
			out = append(out, op.Text)
		}
	}
	return out
}

// Icons returns every icon name drawn via Icon, in order.
func (f *FakeSink) Icons() []string {
	var out []string
	for _, op := range f.Ops() {
		if op.Kind == "icon" {
			out = append(out, op.Icon)
		}
	}
	return out
}

// Reset clears recorded operations.
func (f *FakeSink) Reset() {
	f.mu.Lock()
	f.ops = nil
	f.FullRequested = false
	f.mu.Unlock()
}
