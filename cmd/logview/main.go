package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/tracekit/logfmt"
	"github.com/tracekit/logfmt/activity"
	"github.com/tracekit/logfmt/encoder"
	"github.com/tracekit/logfmt/pack"
	"github.com/tracekit/logfmt/sink"
)

func main() {
	var (
		format      = flag.String("format", "", "Format string of the statement")
		args        = flag.String("args", "", "Typed arguments (comma-separated, e.g. int:42,str:eth0,float:3.14/2)")
		kind        = flag.String("kind", "default", "Event kind (default|info|debug|error|fault)")
		subsystem   = flag.String("subsystem", "dev.tracekit.logview", "Destination subsystem")
		category    = flag.String("category", "cli", "Destination category")
		signpost    = flag.String("signpost", "", "Send as a signpost event with this name")
		spKind      = flag.String("spkind", "event", "Signpost kind (begin|end|event)")
		legacy      = flag.Bool("legacy", false, "Force the unstructured legacy path")
		reveal      = flag.Bool("reveal", false, "Render private arguments in clear")
		dump        = flag.Bool("hex", false, "Hex-dump the assembled pack")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *format == "" {
		fmt.Fprintln(os.Stderr, "Usage: logview -format <fmt> [-args t:v,...] [-kind k] [-hex]")
		fmt.Fprintln(os.Stderr, "       logview -format <fmt> -signpost <name> [-spkind begin|end|event]")
		fmt.Fprintln(os.Stderr, "       logview -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(*format, *args, *kind, *subsystem, *category, *signpost, *spKind, *legacy, *reveal, *dump); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(format, args, kindName, subsystem, category, signpost, spKind string, legacy, reveal, dump bool) error {
	var enc encoder.Buffer
	if err := parseArgs(args, &enc); err != nil {
		return err
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	opts := []sink.Option{}
	if reveal {
		opts = append(opts, sink.RevealPrivate())
	}
	if legacy {
		opts = append(opts, sink.WithCapabilities(logfmt.Capabilities{PackedSends: false}))
	}
	be := &teeBackend{Sink: sink.New(logger, opts...)}
	sender := pack.NewSender(be)

	log := &logfmt.Log{Subsystem: subsystem, Category: category}
	site := logfmt.CallerSite(0)

	if signpost != "" {
		kind, err := parseSignpostKind(spKind)
		if err != nil {
			return err
		}
		sender.SendSignpost(log, kind, signpost, activity.GenerateSignpostID(), &enc, format, site)
	} else {
		kind, err := parseEventKind(kindName)
		if err != nil {
			return err
		}
		sender.Send(log, kind, &enc, format, 0, site)
	}

	if dump {
		if be.lastPack == nil {
			fmt.Println("(no pack assembled: legacy path)")
		} else {
			fmt.Printf("pack: %d bytes (%d command bytes)\n", len(be.lastPack), enc.Len())
			fmt.Print(hex.Dump(be.lastPack))
		}
	}
	return nil
}

// teeBackend keeps the last assembled pack so -hex can show what was
// actually handed off.
type teeBackend struct {
	*sink.Sink
	lastPack []byte
}

func (t *teeBackend) SendPack(log *logfmt.Log, kind logfmt.EventKind, pk []byte) {
	t.lastPack = pk
	t.Sink.SendPack(log, kind, pk)
}

func (t *teeBackend) SendSignpostPack(log *logfmt.Log, kind logfmt.SignpostKind, pk []byte) {
	t.lastPack = pk
	t.Sink.SendSignpostPack(log, kind, pk)
}

func parseEventKind(s string) (logfmt.EventKind, error) {
	switch s {
	case "default":
		return logfmt.EventDefault, nil
	case "info":
		return logfmt.EventInfo, nil
	case "debug":
		return logfmt.EventDebug, nil
	case "error":
		return logfmt.EventError, nil
	case "fault":
		return logfmt.EventFault, nil
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

func parseSignpostKind(s string) (logfmt.SignpostKind, error) {
	switch s {
	case "begin":
		return logfmt.SignpostIntervalBegin, nil
	case "end":
		return logfmt.SignpostIntervalEnd, nil
	case "event":
		return logfmt.SignpostEvent, nil
	}
	return 0, fmt.Errorf("unknown signpost kind %q", s)
}

// parseArgs encodes comma-separated typed tokens into enc. Token forms:
//
//	int:N i32:N uint:N float:V[/precision] str:S pstr:S (private)
//	data:HEX obj:HEX count:N errno
//
// A bare token is tried as an integer, then falls back to a string.
func parseArgs(s string, enc *encoder.Buffer) error {
	if s == "" {
		return nil
	}
	for _, tok := range strings.Split(s, ",") {
		typ, val, ok := strings.Cut(tok, ":")
		if !ok {
			if tok == "errno" {
				enc.AppendErrno()
				continue
			}
			if n, err := strconv.ParseInt(tok, 0, 64); err == nil {
				enc.AppendInt64(n, 0)
			} else {
				enc.AppendString(tok, 0)
			}
			continue
		}
		switch typ {
		case "int":
			n, err := strconv.ParseInt(val, 0, 64)
			if err != nil {
				return fmt.Errorf("arg %q: %w", tok, err)
			}
			enc.AppendInt64(n, 0)
		case "i32":
			n, err := strconv.ParseInt(val, 0, 32)
			if err != nil {
				return fmt.Errorf("arg %q: %w", tok, err)
			}
			enc.AppendInt32(int32(n), 0)
		case "uint":
			n, err := strconv.ParseUint(val, 0, 64)
			if err != nil {
				return fmt.Errorf("arg %q: %w", tok, err)
			}
			enc.AppendUint(n, 0)
		case "float":
			v, prec := val, 6
			if raw, p, ok := strings.Cut(val, "/"); ok {
				v = raw
				n, err := strconv.Atoi(p)
				if err != nil {
					return fmt.Errorf("arg %q: %w", tok, err)
				}
				prec = n
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("arg %q: %w", tok, err)
			}
			enc.AppendFloat(f, prec, 0)
		case "str":
			enc.AppendString(val, 0)
		case "pstr":
			enc.AppendString(val, encoder.FlagPrivate)
		case "data":
			p, err := hex.DecodeString(val)
			if err != nil {
				return fmt.Errorf("arg %q: %w", tok, err)
			}
			enc.AppendData(p, 0)
		case "obj":
			n, err := strconv.ParseUint(val, 16, 64)
			if err != nil {
				return fmt.Errorf("arg %q: %w", tok, err)
			}
			enc.AppendObject(uintptr(n), 0)
		case "count":
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("arg %q: %w", tok, err)
			}
			enc.AppendCount(n, 0)
		default:
			return fmt.Errorf("unknown argument type %q", typ)
		}
	}
	return nil
}
