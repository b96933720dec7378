// Command simkit-demo wires the State Reservoir, BINARC Archive Reader,
// Flyweight String Factory, and Message Zone/Dispatcher together into a
// small end-to-end run: seed a reservoir from a BINARC archive (read
// through the on-disk assetcache), register an IfThen rule against it,
// intern a couple of display strings, and deliver one message. Modeled
// on the teacher's cmd/rubin-node/main.go: a testable run(args, stdout,
// stderr) int wrapped by a one-line main.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/psychi/fragments-sub003/archive"
	"github.com/psychi/fragments-sub003/assetcache"
	"github.com/psychi/fragments-sub003/flyweight"
	"github.com/psychi/fragments-sub003/ifthen"
	"github.com/psychi/fragments-sub003/message"
	"github.com/psychi/fragments-sub003/reservoir"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("simkit-demo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dataDir := fs.String("datadir", "simkit-data", "directory holding the asset cache database")
	logLevel := fs.String("log-level", "info", "log level: debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log, err := newLogger(*logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "bad log level: %v\n", err)
		return 2
	}
	defer log.Sync() //nolint:errcheck

	if err := os.MkdirAll(*dataDir, 0o750); err != nil {
		fmt.Fprintf(stderr, "datadir create failed: %v\n", err)
		return 1
	}

	if err := runDemo(*dataDir, log, stdout); err != nil {
		fmt.Fprintf(stderr, "demo failed: %v\n", err)
		return 1
	}
	return 0
}

func newLogger(level string) (*zap.Logger, error) {
	var zl zap.AtomicLevel
	if err := zl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zl
	return cfg.Build()
}

func runDemo(dataDir string, log *zap.Logger, stdout io.Writer) error {
	const (
		hpKey     = 1
		levelKey  = 2
		zoneKey   = uint64(100)
		healFunc  = uint64(7)
		everyone  = uint64(0xFFFFFFFF)
		zoneMask  = everyone
	)

	// --- Reservoir + assetcache-loaded archive --------------------------
	res := reservoir.New[string, uint64](reservoir.Config{Logger: log})
	res.ReserveChunk("player", 8, 8)
	res.RegisterUnsigned("player", hpKey, 0, 32)
	res.RegisterUnsigned("player", levelKey, 0, 32)

	cache, err := assetcache.Open(filepath.Join(dataDir, "assets.db"))
	if err != nil {
		return fmt.Errorf("open asset cache: %w", err)
	}
	defer cache.Close()

	loader := assetcache.NewLoader(cache, embeddedArchiveSource, archive.Config{Logger: log})
	seed, err := loader.Load("player_seed.binarc")
	if err != nil {
		return fmt.Errorf("load seed archive: %w", err)
	}
	seedHP, exact, ok := seed.Uint(seed.Root())
	if !ok {
		return fmt.Errorf("seed archive root is not a numeric value")
	}
	if !exact {
		log.Warn("seed archive root cast to unsigned is lossy", zap.Uint64("value", seedHP))
	}
	res.SetValue(hpKey, reservoir.Unsigned(seedHP))
	res.SetValue(levelKey, reservoir.Unsigned(1))

	// --- IfThen rule: heal to full once level crosses a threshold -------
	rule := ifthen.Condition[uint64]{
		Key:        levelKey,
		Comparison: ifthen.GreaterEqual,
		Right:      ifthen.Operand[uint64]{Literal: reservoir.Unsigned(5)},
	}
	heal := ifthen.Action[uint64]{
		Key:      hpKey,
		Mutation: ifthen.Copy,
		Right:    ifthen.Operand[uint64]{Literal: reservoir.Unsigned(100)},
	}
	res.SetValue(levelKey, reservoir.Unsigned(5))
	if matched, ok := rule.Evaluate(res); ok && matched {
		heal.Apply(res)
	}

	// --- Flyweight-interned display strings ------------------------------
	strings := flyweight.New(flyweight.Config{Logger: log})
	name := strings.Intern("Avatar", 0)
	defer name.Release()
	title := strings.Intern("Avatar", 0) // same text, same placeholder
	defer title.Release()

	// --- Message zone/dispatcher delivering one "healed" notification ---
	zone := message.NewZone(message.ZoneConfig{Logger: log})
	dispatcher := message.NewDispatcher(zoneKey, message.Config{Logger: log})
	zone.Register(dispatcher)

	handle := message.NewFunction(func(p message.Packet) {
		fmt.Fprintf(stdout, "%s healed to %d (level %d)\n", name.Data(), seedHP, 5)
	})
	defer handle.Release()
	if ok, err := dispatcher.AddFunction(zoneKey, 0, healFunc, 0, handle); !ok {
		return fmt.Errorf("register heal hook: %w", err)
	}

	invoice := message.NewInvoice(0, 0, zoneMask, healFunc)
	packet := message.NewZonalPacket(message.NewSuite(message.Tag{}, message.Call{}, invoice))
	dispatcher.PostMessage(packet)
	zone.Exchange()
	dispatcher.Flush(zoneKey)

	fmt.Fprintf(stdout, "strings interned: same placeholder = %v\n", name.Compare(title) == 0)
	fmt.Fprintf(stdout, "final hp=%d level=%d\n", mustUnsigned(res.GetValue(hpKey)), mustUnsigned(res.GetValue(levelKey)))
	return nil
}

func mustUnsigned(v reservoir.Value) uint64 {
	u, _ := v.AsUnsigned()
	return u
}

// embeddedArchiveSource stands in for a real asset pipeline: it builds a
// minimal BINARC span in memory rather than reading one off disk, so the
// demo has no external asset dependency.
func embeddedArchiveSource(name string) ([]byte, error) {
	return minimalUnsignedArchive(50), nil
}

func minimalUnsignedArchive(value uint32) []byte {
	const kindUnsigned = 6
	rootTag := kindUnsigned<<28 | (value & (1<<28 - 1))
	buf := make([]byte, 8)
	copy(buf[0:4], []byte("pbon"))
	buf[4] = byte(rootTag)
	buf[5] = byte(rootTag >> 8)
	buf[6] = byte(rootTag >> 16)
	buf[7] = byte(rootTag >> 24)
	return buf
}
