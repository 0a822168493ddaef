package client

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/filecoord/osnfs/models"
)

// StreamPace is the delay between words during a paced Stream display.
// Exported so a caller (e.g. the CLI) can make it configurable.
var StreamPace = 120 * time.Millisecond

// Stream fetches filename's words in reading order from the home SN
// (spec §4.7: "Stream").
func (c *Client) Stream(filename string) ([]string, error) {
	sn, err := c.resolve(filename)
	if err != nil {
		return nil, err
	}
	defer sn.Close()

	var reply models.StreamReply
	args := &models.FileUserArgs{Identity: c.Identity, Filename: filename}
	if err := sn.Call("Service.Stream", args, &reply); err != nil {
		return nil, err
	}
	return reply.Words, statusErr(reply.Code)
}

// StreamPaced fetches filename's words and writes them to w one at a
// time with StreamPace between them, wrapping at the current terminal
// width when w is a terminal (falling back to 80 columns otherwise).
// This is the client-side presentation spec §4.1 describes for Stream:
// the protocol itself transfers the whole word list in one reply, the
// pacing is purely a display affordance.
func (c *Client) StreamPaced(w io.Writer, filename string) error {
	words, err := c.Stream(filename)
	if err != nil {
		return err
	}

	width := 80
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			width = cols
		}
	}

	col := 0
	for _, word := range words {
		if col > 0 && col+1+len(word) > width {
			fmt.Fprintln(w)
			col = 0
		} else if col > 0 {
			fmt.Fprint(w, " ")
			col++
		}
		fmt.Fprint(w, word)
		col += len(word)
		time.Sleep(StreamPace)
	}
	fmt.Fprintln(w)
	return nil
}
