package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"finanzas/internal/cli"
	"finanzas/internal/config"
	"finanzas/internal/core"
	"finanzas/internal/ledger"
	applog "finanzas/internal/log"
	"finanzas/internal/services"
	"finanzas/internal/sinks"
	"finanzas/internal/sinks/memory"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usage = `Uso: finanzas <comando> [opciones]

Comandos:
  add-day -date YYYY-MM-DD            agrega un día (no futuro, no repetido)
  today                               agrega el día de hoy
  remove-day -date YYYY-MM-DD         elimina un día
  add-entry -date D -kind K           agrega una entrada vacía (K: income|expense)
  set -date D -kind K -index N -field F -value V
                                      cambia name, amount o paymentMethod
                                      (pago: efectivo, tarjeta Debito, tarjeta Credito, transferencia)
  remove-entry -date D -kind K -index N
  show [-date D]                      muestra un día o todos
  export [-summary] [-dry-run]        exporta el informe a los destinos configurados
  clear -yes                          borra todos los datos
`

// app carries what every command needs.
type app struct {
	cfg    *config.Config
	store  *ledger.Store
	styles cli.Styles
	stdout io.Writer
	stderr io.Writer
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"add-day":      addDay,
	"today":        addToday,
	"remove-day":   removeDay,
	"add-entry":    addEntry,
	"set":          setField,
	"remove-entry": removeEntry,
	"show":         show,
	"export":       export,
	"clear":        clearAll,
}

// errUsage marks bad invocations; the message is printed with the usage text.
var errUsage = errors.New("uso incorrecto")

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(stdout, usage)
		return exitOK
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "comando desconocido %q\n\n%s", args[0], usage)
		return exitUsage
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), stderr)
	styles := cli.DefaultStyles()

	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		fmt.Fprintln(stderr, styles.RenderError(err.Error()))
		return exitError
	}

	ctx, stop := cli.InterruptContext(ctx)
	defer stop()
	ctx = applog.WithContext(ctx, logger)

	store, cleanup, err := cli.InitStore(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(stderr, styles.RenderError(err.Error()))
		return exitError
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Warn("Failed to release storage", applog.FieldError, err.Error())
		}
	}()

	a := &app{cfg: cfg, store: store, styles: styles, stdout: stdout, stderr: stderr}
	if err := cmd(ctx, a, args[1:]); err != nil {
		logger.DebugContext(ctx, "Command failed",
			"command", args[0],
			applog.FieldErrorType, errorType(err),
			applog.FieldError, err.Error())
		fmt.Fprintln(stderr, styles.RenderError(userMessage(err)))
		if errors.Is(err, errUsage) {
			fmt.Fprint(stderr, "\n"+usage)
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

// userMessage turns store errors into what the user is told.
func userMessage(err error) string {
	switch {
	case errors.Is(err, ledger.ErrStorageWrite):
		return ledger.ErrStorageWrite.Error()
	case errors.Is(err, ledger.ErrDuplicateDate):
		return "ya existe un día con esa fecha"
	case errors.Is(err, ledger.ErrFutureDate):
		return "no se pueden agregar fechas futuras"
	default:
		return err.Error()
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ledger.ErrStorageWrite), errors.Is(err, ledger.ErrStorageRead):
		return applog.ErrorTypeStorage
	case errors.Is(err, ledger.ErrDuplicateDate):
		return applog.ErrorTypeConflict
	case errors.Is(err, ledger.ErrNotFound):
		return applog.ErrorTypeNotFound
	case errors.Is(err, ledger.ErrFutureDate), errors.Is(err, errUsage),
		errors.Is(err, core.ErrInvalidKind), errors.Is(err, core.ErrInvalidField):
		return applog.ErrorTypeValidation
	default:
		return applog.ErrorTypeInternal
	}
}

// entryFlags are the flags shared by commands that address days and entries.
type entryFlags struct {
	fs    *flag.FlagSet
	date  *string
	kind  *string
	index *int
}

func newFlags(name string, a *app, withKind, withIndex bool) *entryFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	f := &entryFlags{fs: fs, date: fs.String("date", "", "fecha YYYY-MM-DD")}
	if withKind {
		f.kind = fs.String("kind", "", "income o expense")
	}
	if withIndex {
		f.index = fs.Int("index", -1, "posición de la entrada")
	}
	return f
}

func (f *entryFlags) parse(args []string) error {
	if err := f.fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if f.fs.NArg() > 0 {
		return fmt.Errorf("%w: argumentos de más: %s", errUsage, strings.Join(f.fs.Args(), " "))
	}
	return nil
}

func (f *entryFlags) dateIn(a *app) (core.Date, error) {
	if *f.date == "" {
		return core.Date{}, fmt.Errorf("%w: falta -date", errUsage)
	}
	d, err := core.ParseDate(*f.date, a.store.Location())
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: fecha inválida %q", errUsage, *f.date)
	}
	return d, nil
}

func (f *entryFlags) kindValue() (core.Kind, error) {
	k, err := core.ParseKind(*f.kind)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errUsage, err)
	}
	return k, nil
}

func addDay(ctx context.Context, a *app, args []string) error {
	f := newFlags("add-day", a, false, false)
	if err := f.parse(args); err != nil {
		return err
	}
	date, err := f.dateIn(a)
	if err != nil {
		return err
	}

	flow := ledger.NewAddDayFlow(a.store)
	if err := flow.Begin(); err != nil {
		return err
	}
	if err := flow.Select(date); err != nil {
		return abandon(ctx, flow, err)
	}
	return commitDay(ctx, a, flow)
}

func addToday(ctx context.Context, a *app, args []string) error {
	f := newFlags("today", a, false, false)
	if err := f.parse(args); err != nil {
		return err
	}

	flow := ledger.NewAddDayFlow(a.store)
	if err := flow.Today(); err != nil {
		return abandon(ctx, flow, err)
	}
	return commitDay(ctx, a, flow)
}

// abandon logs why the flow refused its date and cancels it; a one-shot
// command has no second attempt.
func abandon(ctx context.Context, flow *ledger.AddDayFlow, err error) error {
	applog.FromContext(ctx).DebugContext(ctx, "Day not added",
		"state", flow.State().String(),
		"rejection", string(flow.Rejection()),
		applog.FieldDate, flow.Date().String())
	flow.Cancel()
	return err
}

func commitDay(ctx context.Context, a *app, flow *ledger.AddDayFlow) error {
	day, err := flow.Commit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Día agregado: %s\n", day.Date.Display())
	return nil
}

func removeDay(ctx context.Context, a *app, args []string) error {
	f := newFlags("remove-day", a, false, false)
	if err := f.parse(args); err != nil {
		return err
	}
	date, err := f.dateIn(a)
	if err != nil {
		return err
	}
	if err := a.store.RemoveDay(ctx, date); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Día eliminado: %s\n", date.Display())
	return nil
}

func addEntry(ctx context.Context, a *app, args []string) error {
	f := newFlags("add-entry", a, true, false)
	if err := f.parse(args); err != nil {
		return err
	}
	date, err := f.dateIn(a)
	if err != nil {
		return err
	}
	kind, err := f.kindValue()
	if err != nil {
		return err
	}
	index, err := a.store.AddEntry(ctx, date, kind)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Entrada agregada en la posición %d\n", index)
	return nil
}

func setField(ctx context.Context, a *app, args []string) error {
	f := newFlags("set", a, true, true)
	field := f.fs.String("field", "", "name, amount o paymentMethod")
	value := f.fs.String("value", "", "nuevo valor")
	if err := f.parse(args); err != nil {
		return err
	}
	date, err := f.dateIn(a)
	if err != nil {
		return err
	}
	kind, err := f.kindValue()
	if err != nil {
		return err
	}
	fld, err := core.ParseField(*field)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if err := a.store.UpdateEntry(ctx, date, kind, *f.index, fld, *value); err != nil {
		return err
	}
	if fld == core.FieldPaymentMethod && !core.ParsePaymentMethod(*value).Known() {
		fmt.Fprintf(a.stderr, "aviso: forma de pago desconocida %q (opciones: %s)\n", *value, paymentOptions())
	}
	day, err := a.store.Day(date)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, a.styles.RenderDay(day))
	return nil
}

func paymentOptions() string {
	methods := core.PaymentMethods()
	labels := make([]string, len(methods))
	for i, pm := range methods {
		labels[i] = string(pm)
	}
	return strings.Join(labels, ", ")
}

func removeEntry(ctx context.Context, a *app, args []string) error {
	f := newFlags("remove-entry", a, true, true)
	if err := f.parse(args); err != nil {
		return err
	}
	date, err := f.dateIn(a)
	if err != nil {
		return err
	}
	kind, err := f.kindValue()
	if err != nil {
		return err
	}
	if err := a.store.RemoveEntry(ctx, date, kind, *f.index); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Entrada %d eliminada\n", *f.index)
	return nil
}

func show(_ context.Context, a *app, args []string) error {
	f := newFlags("show", a, false, false)
	if err := f.parse(args); err != nil {
		return err
	}
	if *f.date == "" {
		fmt.Fprintln(a.stdout, a.styles.RenderDays(a.store.Days()))
		return nil
	}
	date, err := f.dateIn(a)
	if err != nil {
		return err
	}
	day, err := a.store.Day(date)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, a.styles.RenderDay(day))
	return nil
}

func export(ctx context.Context, a *app, args []string) error {
	f := newFlags("export", a, false, false)
	summary := f.fs.Bool("summary", false, "agrega el resumen de todos los días")
	dryRun := f.fs.Bool("dry-run", false, "genera el informe sin enviarlo a ningún destino")
	if err := f.parse(args); err != nil {
		return err
	}

	logger := applog.FromContext(ctx)
	var (
		out     []sinks.Sink
		preview *memory.Sink
	)
	if *dryRun {
		preview = memory.New("dry-run")
		out = []sinks.Sink{preview}
	} else {
		out = cli.InitSinks(ctx, a.cfg, a.stdout, logger)
	}
	svc := services.NewExportService(a.store, out, a.cfg.ExportTimeout, logger)
	defer svc.Close()
	svc.IncludeSummary(*summary)

	res, err := svc.Export(ctx)
	if preview != nil && err == nil {
		for _, r := range preview.Reports() {
			fmt.Fprintf(a.stdout, "%s (%d días, %d bytes, sin enviar)\n", r.Filename("txt"), len(r.Days), len(r.Text))
		}
		return nil
	}
	names := make([]string, 0, len(res.Refs))
	for name := range res.Refs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if name == "stdout" {
			continue
		}
		fmt.Fprintf(a.stdout, "%s: %s\n", name, res.Refs[name])
	}
	return err
}

func clearAll(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	yes := fs.Bool("yes", false, "confirma el borrado de todos los datos")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if !*yes {
		return errors.New("se borrarán todos los datos; repite con -yes para confirmar")
	}
	removed := a.store.Len()
	if err := a.store.ClearAll(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Todos los datos fueron borrados (%d días)\n", removed)
	return nil
}
