/*
Copyright The reg-publish-bitrise Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package progress reports how many transfer units have completed.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Reporter receives progress for a fixed number of units.
type Reporter interface {
	Start(total int)
	Increment(n int)
	Stop()
}

// Nop is a Reporter that does nothing.
var Nop Reporter = nop{}

type nop struct{}

func (nop) Start(int)     {}
func (nop) Increment(int) {}
func (nop) Stop()         {}

const barWidth = 30

// Bar renders a single line bar on a terminal, or one line per increment
// otherwise.
type Bar struct {
	mu    sync.Mutex
	out   io.Writer
	tty   bool
	label string
	total int
	done  int
}

// NewBar returns a Bar writing to w. Rendering is redrawn in place only when
// w is a terminal.
func NewBar(w io.Writer, label string) *Bar {
	b := &Bar{out: w, label: label}
	if f, ok := w.(*os.File); ok {
		b.tty = term.IsTerminal(int(f.Fd()))
	}
	return b
}

// Start resets the bar to zero of total units.
func (b *Bar) Start(total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.total = total
	b.done = 0
	if b.tty {
		b.draw()
	}
}

// Increment marks n more units as done.
func (b *Bar) Increment(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.done += n
	if b.done > b.total {
		b.done = b.total
	}
	if b.tty {
		b.draw()
		return
	}
	fmt.Fprintf(b.out, "%s %d/%d\n", b.label, b.done, b.total)
}

// Stop ends the bar line.
func (b *Bar) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tty {
		fmt.Fprintln(b.out)
	}
}

func (b *Bar) draw() {
	filled := 0
	if b.total > 0 {
		filled = barWidth * b.done / b.total
	}
	fmt.Fprintf(b.out, "\r%s [%s%s] %d/%d", b.label,
		strings.Repeat("=", filled), strings.Repeat(" ", barWidth-filled), b.done, b.total)
}
