package dispatch

import (
	"fmt"
	"strings"

	"github.com/CerealNotFound/function-calling-server/core/protocol"
)

// Summarize renders the closing assistant turn of an action cycle from
// its outcomes. preface is any text the model sent alongside its requests.
func Summarize(preface string, outcomes []protocol.Outcome) string {
	var b strings.Builder

	if p := strings.TrimSpace(preface); p != "" {
		b.WriteString(p)
		b.WriteString("\n\n")
	}

	succeeded := 0
	for _, out := range outcomes {
		if out.Succeeded() {
			succeeded++
		}
	}
	fmt.Fprintf(&b, "Completed %d of %d action(s).", succeeded, len(outcomes))

	for _, out := range outcomes {
		b.WriteString("\n- ")
		b.WriteString(line(out))
	}
	return b.String()
}

func line(out protocol.Outcome) string {
	if out.Succeeded() {
		return out.Action + ": succeeded"
	}
	if out.Error == nil {
		return out.Action + ": failed"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: failed (%s", out.Action, out.Error.Kind)
	if out.Error.Field != "" {
		fmt.Fprintf(&b, " on %s", out.Error.Field)
	}
	if out.Error.Cause != "" {
		fmt.Fprintf(&b, ", %s", out.Error.Cause)
	}
	b.WriteString(")")
	if out.Error.Detail != "" {
		b.WriteString(": ")
		b.WriteString(out.Error.Detail)
	}
	return b.String()
}
