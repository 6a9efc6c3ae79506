package app

import (
	"fmt"
	"io"
	"sync"
)

// ConsoleUI is a search dialog that reports its state as text lines.
type ConsoleUI struct {
	mu  sync.Mutex
	out io.Writer

	open        bool
	replace     bool
	query       string
	replacement string
	count       int
	current     int
	selInfo     bool
}

// NewConsoleUI creates a closed dialog writing to out.
func NewConsoleUI(out io.Writer) *ConsoleUI {
	return &ConsoleUI{out: out}
}

func (u *ConsoleUI) printf(format string, args ...any) {
	fmt.Fprintf(u.out, format+"\n", args...)
}

// IsOpen reports whether the dialog is showing.
func (u *ConsoleUI) IsOpen() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.open
}

// Open shows the dialog. The editor selection is saved on first open.
func (u *ConsoleUI) Open(replace bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.open {
		u.selInfo = true
	}
	u.open = true
	u.replace = replace
	if replace {
		u.printf("dialog: replace")
	} else {
		u.printf("dialog: find")
	}
}

// Close hides the dialog.
func (u *ConsoleUI) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.open {
		return
	}
	u.open = false
	u.printf("dialog: closed")
}

// Query returns the search field.
func (u *ConsoleUI) Query() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.query
}

// SetQuery fills the search field.
func (u *ConsoleUI) SetQuery(q string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.query = q
}

// Replacement returns the replace field.
func (u *ConsoleUI) Replacement() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.replacement
}

// SetReplacement fills the replace field.
func (u *ConsoleUI) SetReplacement(r string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.replacement = r
}

// SetCount shows the number of matches.
func (u *ConsoleUI) SetCount(n int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.count = n
	u.printf("count: %d", n)
}

// SetCurrentIndex shows the 1-based selected match.
func (u *ConsoleUI) SetCurrentIndex(i int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.current = i
	u.printf("match: %d", i)
}

// HasSelectionInfo reports whether a saved selection is pending.
func (u *ConsoleUI) HasSelectionInfo() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.selInfo
}

// ClearSelectionInfo forgets the saved selection.
func (u *ConsoleUI) ClearSelectionInfo() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.selInfo = false
}

// Destroy tears the dialog down.
func (u *ConsoleUI) Destroy() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.open = false
	u.printf("dialog: destroyed")
}

// Counters returns the last count and 1-based index shown.
func (u *ConsoleUI) Counters() (count, current int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.count, u.current
}
