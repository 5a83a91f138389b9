package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/reoring/schemagen"
	"github.com/reoring/schemagen/i18n"
	"github.com/reoring/schemagen/internal/engine"
	"github.com/reoring/schemagen/internal/store"
	"github.com/reoring/schemagen/jsonschema"
	"github.com/reoring/schemagen/source/gojson"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sub := os.Args[1]
	switch sub {
	case "generate":
		generateCmd(ctx, os.Args[2:])
	case "validate":
		validateCmd(os.Args[2:])
	case "export":
		exportCmd(os.Args[2:])
	case "runs":
		runsCmd(os.Args[2:])
	case "show":
		showCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `schemagen CLI

Usage:
  schemagen generate -schema s.json [-n 10] [-seed 42] [-format json|yaml] [-o out] [-store fixtures.db]
  schemagen validate -schema s.json -data values.json [-batch] [-lang en|ja]
  schemagen export   -schema s.yaml
  schemagen runs     -store fixtures.db
  schemagen show     -store fixtures.db -id RUN_ID [-format json|yaml]`)
}

func generateCmd(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		schemaPath     string
		count          int
		seed           uint64
		format         string
		out            string
		dbPath         string
		maxAttempts    int
		optionalChance float64
		verbose        bool
	)
	fs.StringVar(&schemaPath, "schema", "", "schema file (.json, .yaml or .yml)")
	fs.IntVar(&count, "n", 1, "number of values to generate")
	fs.Uint64Var(&seed, "seed", 0, "seed for reproducible output (random when unset)")
	fs.StringVar(&format, "format", "json", "output format: json or yaml")
	fs.StringVar(&out, "o", "", "output file (stdout when empty)")
	fs.StringVar(&dbPath, "store", "", "also persist the batch into this fixture database")
	fs.IntVar(&maxAttempts, "max-unique-attempts", schemagen.DefaultMaxUniqueAttempts, "consecutive duplicate draws tolerated for uniqueItems arrays")
	fs.Float64Var(&optionalChance, "optional-probability", schemagen.DefaultOptionalProbability, "chance of generating a non-required property")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	_ = fs.Parse(args)
	if schemaPath == "" || count < 1 {
		fs.Usage()
		os.Exit(2)
	}
	seeded := flagSet(fs, "seed")

	s := loadSchema(schemaPath, verbose)
	opts := []schemagen.Option{
		schemagen.WithMaxUniqueAttempts(maxAttempts),
		schemagen.WithOptionalProbability(optionalChance),
	}
	if seeded {
		opts = append(opts, schemagen.WithSeed(seed))
	}
	values, err := schemagen.New(opts...).GenerateN(ctx, s, count)
	if err != nil {
		fatalf("generate: %v", err)
	}
	if verbose {
		log.Printf("[GENERATE] %d value(s) from %s", len(values), schemaPath)
	}

	var payload any = values
	if count == 1 {
		payload = values[0]
	}
	writeOutput(out, format, payload)

	if dbPath != "" {
		run := store.Run{Schema: filepath.Base(schemaPath)}
		if seeded {
			run.Seed = &seed
		}
		err := withStore(dbPath, func(st *store.Store) error {
			var err error
			if run, err = st.SaveRun(run, values); err != nil {
				return fmt.Errorf("save run: %w", err)
			}
			return nil
		})
		if err != nil {
			fatalf("%v", err)
		}
		log.Printf("[STORE] Saved run %s (%d values) to %s", run.ID, run.Count, dbPath)
	}
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var (
		schemaPath string
		dataPath   string
		batch      bool
		lang       string
	)
	fs.StringVar(&schemaPath, "schema", "", "schema file (.json, .yaml or .yml)")
	fs.StringVar(&dataPath, "data", "", "JSON file holding the value to check")
	fs.BoolVar(&batch, "batch", false, "treat the data file as an array of values")
	fs.StringVar(&lang, "lang", "en", "message language: en or ja")
	_ = fs.Parse(args)
	if schemaPath == "" || dataPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	i18n.SetLanguage(lang)

	s := loadSchema(schemaPath, false)
	raw, err := os.ReadFile(dataPath)
	if err != nil {
		fatalf("read data: %v", err)
	}
	v, err := engine.DecodeAny(gojson.NewBytes(raw))
	if err != nil {
		fatalf("decode data: %v", err)
	}
	values := []any{v}
	if batch {
		arr, ok := v.([]any)
		if !ok {
			fatalf("-batch expects a JSON array")
		}
		values = arr
	}
	results := make([]schemagen.Issues, len(values))
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, val := range values {
		eg.Go(func() error {
			err := schemagen.Validate(s, val)
			if err == nil {
				return nil
			}
			iss, ok := schemagen.AsIssues(err)
			if !ok {
				return fmt.Errorf("value %d: %w", i, err)
			}
			results[i] = iss
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		fatalf("validate: %v", err)
	}
	failed := 0
	for i, iss := range results {
		if len(iss) == 0 {
			continue
		}
		failed++
		for _, it := range iss {
			fmt.Printf("value %d: %s at %s: %s\n", i, it.Code, it.Path, it.Message)
		}
	}
	if failed > 0 {
		fmt.Printf("%d of %d value(s) invalid\n", failed, len(values))
		os.Exit(1)
	}
	fmt.Printf("%d value(s) valid\n", len(values))
}

func exportCmd(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var schemaPath string
	fs.StringVar(&schemaPath, "schema", "", "schema file (.json, .yaml or .yml)")
	_ = fs.Parse(args)
	if schemaPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	writeOutput("", "json", jsonschema.Export(loadSchema(schemaPath, true)))
}

func runsCmd(args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	var dbPath string
	fs.StringVar(&dbPath, "store", "", "fixture database")
	_ = fs.Parse(args)
	if dbPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	var runs []store.Run
	err := withStore(dbPath, func(st *store.Store) error {
		var err error
		if runs, err = st.ListRuns(); err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		return nil
	})
	if err != nil {
		fatalf("%v", err)
	}
	for _, r := range runs {
		seed := "-"
		if r.Seed != nil {
			seed = fmt.Sprint(*r.Seed)
		}
		fmt.Printf("%s\t%s\t%d\tseed=%s\t%s\n", r.ID, r.Schema, r.Count, seed, r.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
}

func showCmd(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	var dbPath, id, format string
	fs.StringVar(&dbPath, "store", "", "fixture database")
	fs.StringVar(&id, "id", "", "run ID")
	fs.StringVar(&format, "format", "json", "output format: json or yaml")
	_ = fs.Parse(args)
	if dbPath == "" || id == "" {
		fs.Usage()
		os.Exit(2)
	}
	var values []any
	err := withStore(dbPath, func(st *store.Store) error {
		var err error
		if _, values, err = st.LoadRun(id); err != nil {
			return fmt.Errorf("load run: %w", err)
		}
		return nil
	})
	if err != nil {
		fatalf("%v", err)
	}
	writeOutput("", format, values)
}

// withStore runs fn against the fixture database and closes it before
// returning.
func withStore(dbPath string, fn func(*store.Store) error) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	err = fn(st)
	if cerr := st.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close store: %w", cerr)
	}
	return err
}

// loadSchema reads and compiles a schema file, choosing the decoder by
// extension.
func loadSchema(p string, verbose bool) schemagen.Schema {
	data, err := os.ReadFile(p)
	if err != nil {
		fatalf("read schema: %v", err)
	}
	parse := jsonschema.Parse
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml":
		parse = jsonschema.ParseYAML
	}
	s, diag, err := parse(data, jsonschema.Options{})
	if err != nil {
		fatalf("load schema %s: %v", p, err)
	}
	if verbose && diag.HasWarnings() {
		for _, w := range diag.Warnings() {
			log.Printf("[SCHEMA] Warning: %s", w)
		}
	}
	return s
}

func writeOutput(out, format string, v any) {
	var buf bytes.Buffer
	switch format {
	case "json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			fatalf("encode json: %v", err)
		}
		buf.Write(b)
		buf.WriteByte('\n')
	case "yaml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			fatalf("encode yaml: %v", err)
		}
		_ = enc.Close()
	default:
		fatalf("unknown format %q", format)
	}
	if out == "" {
		if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
			fatalf("writing output: %v", err)
		}
		return
	}
	if err := writeFile(out, buf.Bytes()); err != nil {
		fatalf("%v", err)
	}
}

// writeFile creates out and its parent directories. Close errors are
// reported since they may carry the final write failure.
func writeFile(out string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing output: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	return nil
}

func flagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
