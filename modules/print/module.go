// Package print provides a Printer that writes messages to standard output.
package print

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/specialistvlad/wiregrid/internal/container"
	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	"github.com/specialistvlad/wiregrid/internal/registry"
)

// ClassName is the class name of Printer.
const ClassName = "Printer"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Printer writes its lines when the container starts, and the parameters of
// every `print` message it receives.
type Printer struct {
	Prefix string
	Lines  []string
	// Values are printed sorted by key.
	Values map[string]string

	Out io.Writer `ioc:"-"`
}

func (p *Printer) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

// Start prints the configured lines and values.
func (p *Printer) Start(ctx context.Context) error {
	ctxlog.FromContext(ctx).Info("Printing configured values", slog.Int("lines", len(p.Lines)))
	for _, line := range p.Lines {
		fmt.Fprintf(p.out(), "%s%s\n", p.Prefix, line)
	}
	p.printValues(toAny(p.Values))
	return nil
}

// ReceiveMessage handles `print` messages.
func (p *Printer) ReceiveMessage(_ context.Context, msg *container.Message) (bool, error) {
	if msg.Name != "print" {
		return false, nil
	}
	if len(msg.Params) == 0 {
		fmt.Fprintf(p.out(), "%s(null)\n", p.Prefix)
		return true, nil
	}
	p.printValues(msg.Params)
	return true, nil
}

func (p *Printer) printValues(values map[string]any) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(p.out(), "%s%s = %q\n", p.Prefix, k, fmt.Sprint(values[k]))
	}
}

func toAny(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Register registers the Printer class.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClass(ClassName, func() any { return new(Printer) })
}
