// ABOUTME: Entry point for the cobranza-gateway collection bot
// ABOUTME: Runs the conversational server, bulk dispatch jobs and history queries

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/lmv-credia/cobranza-gateway/internal/config"
	"github.com/lmv-credia/cobranza-gateway/internal/service"
	"github.com/lmv-credia/cobranza-gateway/internal/store"
	"github.com/lmv-credia/cobranza-gateway/internal/transport"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
            _
  ___ ___ | |__  _ __ __ _ _ __  ______ _
 / __/ _ \| '_ \| '__/ _' | '_ \|_  / _' |
| (_| (_) | |_) | | | (_| | | | |/ / (_| |
 \___\___/|_.__/|_|  \__,_|_| |_/___\__,_|
`

// getConfigPath returns the path to the gateway config file.
// Priority: COBRANZA_CONFIG env var > ./cobranza.yaml
func getConfigPath() string {
	if envPath := os.Getenv("COBRANZA_CONFIG"); envPath != "" {
		return envPath
	}
	return "cobranza.yaml"
}

func main() {
	// Local .env files carry the legacy throttling knobs.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println("Usage: cobranza-gateway <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                        Start the bot with a local console transport")
		fmt.Println("  enviar <contactos.json>      Run a bulk dispatch job from a contact file")
		fmt.Println("  historial [telefono]         Show archived interactions")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "enviar":
		err = runEnviar(ctx, os.Args[2:])
	case "historial":
		err = runHistorial(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Empresa:  %s\n", cfg.Company.Name)
	green.Print("    ▶ ")
	fmt.Printf("Archivo:  %s\n", cfg.Database.Path)
	green.Print("    ▶ ")
	fmt.Printf("Padrón:   %s\n", cfg.Roster.SnapshotPath)
	fmt.Println()

	archive, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening interaction archive: %w", err)
	}
	defer archive.Close()

	port := transport.NewMemory()
	port.OnSend(func(s transport.Sent) {
		color.New(color.FgYellow).Printf("[bot → %s]\n", s.To)
		fmt.Println(s.Text)
		fmt.Println()
	})

	svc := service.New(cfg, port, archive, logger)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("starting service: %w", err)
	}

	logger.Info("starting cobranza-gateway",
		"config", configPath,
		"company", cfg.Company.Name,
		"agents", len(cfg.Agents),
	)

	// Console transport: each stdin line is an inbound message from the
	// simulated debtor. COBRANZA_TEL overrides the test phone.
	phone := os.Getenv("COBRANZA_TEL")
	if phone == "" {
		phone = "5512345678"
	}
	gray.Printf("escribiendo como %s, ctrl-d para salir\n\n", phone)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			port.Deliver(transport.Message{
				From: transport.AddressForPhone(phone),
				Text: text,
				Kind: transport.KindText,
			})
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	return port.Close()
}

func runEnviar(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: cobranza-gateway enviar <contactos.json> [plantilla]")
	}

	template := "Hola {nombre}, le recordamos que tiene un saldo pendiente de ${saldo}. Responda este mensaje para conocer sus opciones de pago."
	if len(args) > 1 {
		template = args[1]
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading contact file: %w", err)
	}
	var contacts []map[string]any
	if err := json.Unmarshal(raw, &contacts); err != nil {
		return fmt.Errorf("parsing contact file: %w", err)
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := setupLogger(cfg.Logging)

	archive, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening interaction archive: %w", err)
	}
	defer archive.Close()

	port := transport.NewMemory()
	port.OnSend(func(s transport.Sent) {
		fmt.Printf("→ %s\n", s.To)
	})

	svc := service.New(cfg, port, archive, logger)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("starting service: %w", err)
	}

	if err := svc.StartBulkSend(ctx, contacts, template, "telefono"); err != nil {
		return fmt.Errorf("starting bulk job: %w", err)
	}

	// Poll until the job drains or the user interrupts.
	for {
		st := svc.DispatchStats()
		if !st.InProgress {
			fmt.Printf("envío terminado: %d ok, %d fallidos de %d\n", st.Succeeded, st.Failed, st.Total)
			return nil
		}
		select {
		case <-ctx.Done():
			fmt.Println("envío interrumpido")
			return nil
		case <-time.After(time.Second):
		}
	}
}

func runHistorial(args []string) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	archive, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening interaction archive: %w", err)
	}
	defer archive.Close()

	var f store.Filter
	if len(args) > 0 {
		f.Phone = args[0]
	}
	records, err := archive.List(f)
	if err != nil {
		return fmt.Errorf("listing interactions: %w", err)
	}

	for _, rec := range records {
		fmt.Printf("%s  %-13s %-15s %s\n",
			rec.Timestamp.Format("2006-01-02 15:04:05"), rec.Kind, rec.Phone, rec.Detail)
	}
	if len(records) == 0 {
		fmt.Println("sin interacciones registradas")
	}
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu    sync.Mutex
	level slog.Level
	attrs []slog.Attr
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level: h.level,
		attrs: newAttrs,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	// Groups are not used by this binary's loggers.
	return h
}
