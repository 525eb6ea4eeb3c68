package cli

import (
	"fmt"
	"io"
	"os"

	"terraform-provider-cloudram/internal/progress"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// renderer prints the progress narrative of a run. It is subscribed once
// per command and never touches the orchestration state.
type renderer struct {
	out     io.Writer
	info    *color.Color
	success *color.Color
	warning *color.Color
	failure *color.Color
	faint   *color.Color
}

func newRenderer(out io.Writer) *renderer {
	r := &renderer{
		out:     out,
		info:    color.New(color.FgWhite),
		success: color.New(color.FgGreen, color.Bold),
		warning: color.New(color.FgYellow),
		failure: color.New(color.FgRed, color.Bold),
		faint:   color.New(color.Faint),
	}

	if !isTerminal(out) {
		for _, c := range []*color.Color{r.info, r.success, r.warning, r.failure, r.faint} {
			c.DisableColor()
		}
	}

	return r
}

func (r *renderer) colorFor(tone progress.Tone) *color.Color {
	switch tone {
	case progress.ToneSuccess:
		return r.success
	case progress.ToneWarning:
		return r.warning
	case progress.ToneError:
		return r.failure
	default:
		return r.info
	}
}

func (r *renderer) Report(e progress.Event) {
	switch e.Kind {
	case progress.EventStep:
		r.colorFor(e.Tone).Fprintln(r.out, e.Message)
	case progress.EventProgress:
		r.colorFor(e.Tone).Fprintln(r.out, "  "+e.Message)
	case progress.EventRedirect:
		r.colorFor(e.Tone).Fprintln(r.out, e.Message)
		if e.Target != "" {
			fmt.Fprintf(r.out, "  %s\n", e.Target)
		}
	case progress.EventChoices:
		r.warning.Fprintln(r.out, e.Message)
	}
}

func (r *renderer) gate(online bool, message string) {
	if online {
		r.success.Fprintln(r.out, message)
		return
	}
	r.failure.Fprintln(r.out, message)
}

func (r *renderer) note(message string) {
	r.faint.Fprintln(r.out, message)
}

func isTerminal(stream interface{}) bool {
	file, ok := stream.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
