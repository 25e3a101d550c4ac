// Package files persists budgeter state as flat JSON documents and the
// ledger as newline-delimited JSON. Writes are whole-file overwrites with no
// locking across processes: a single writer is assumed.
package files

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"budgeter/internal/core"
	"budgeter/internal/store"
)

const (
	BalancesFile     = "budgeter_state.json"
	GoalFile         = "budgeter_goal.json"
	SettingsFile     = "budgeter_settings.json"
	TransactionsFile = "budgeter_transactions.jsonl"
	ThemeFile        = "budgeter_theme.json"
	UnknownFile      = "budgeter_unknown_commands.txt"
)

type Store struct {
	mu  sync.Mutex
	dir string
}

var _ store.Store = (*Store)(nil)

// New returns a store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) LoadBalances(ctx context.Context) store.Loaded[core.Balances] {
	l := loadDocument(ctx, s.path(BalancesFile), core.Balances{})
	l.Value = l.Value.Normalize()
	return l
}

func (s *Store) SaveBalances(_ context.Context, b core.Balances) error {
	return s.writeDocument(BalancesFile, b)
}

func (s *Store) LoadGoal(ctx context.Context) store.Loaded[core.Goal] {
	l := loadDocument(ctx, s.path(GoalFile), core.DefaultGoal())
	l.Value = l.Value.Normalize()
	return l
}

func (s *Store) SaveGoal(_ context.Context, g core.Goal) error {
	return s.writeDocument(GoalFile, g)
}

func (s *Store) DeleteGoal(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeIfExists(s.path(GoalFile))
}

func (s *Store) LoadSettings(ctx context.Context) store.Loaded[core.Settings] {
	l := loadDocument(ctx, s.path(SettingsFile), core.Settings{})
	l.Value = l.Value.Normalize()
	return l
}

func (s *Store) SaveSettings(_ context.Context, st core.Settings) error {
	return s.writeDocument(SettingsFile, st)
}

func (s *Store) LoadTheme(ctx context.Context) store.Loaded[core.Theme] {
	l := loadDocument(ctx, s.path(ThemeFile), core.DefaultTheme())
	if !l.Defaulted() && !l.Value.Valid() {
		slog.WarnContext(ctx, "Invalid theme colors, using default", "path", s.path(ThemeFile), "bg", l.Value.Background, "text", l.Value.Text)
		return store.Defaulted(core.DefaultTheme(), fmt.Errorf("invalid theme colors %q/%q", l.Value.Background, l.Value.Text))
	}
	return l
}

func (s *Store) SaveTheme(_ context.Context, t core.Theme) error {
	return s.writeDocument(ThemeFile, t)
}

// AppendTransaction adds one JSON line to the ledger.
func (s *Store) AppendTransaction(_ context.Context, t core.Transaction) error {
	line, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLine(TransactionsFile, line)
}

// LoadTransactions reads the ledger, skipping lines that are not valid JSON
// records. Skipped lines are reported through Err.
func (s *Store) LoadTransactions(ctx context.Context) store.Loaded[[]core.Transaction] {
	path := s.path(TransactionsFile)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return store.Defaulted([]core.Transaction{}, nil)
		}
		slog.WarnContext(ctx, "Cannot open ledger, using empty ledger", "path", path, "error", err)
		return store.Defaulted([]core.Transaction{}, fmt.Errorf("open %s: %w", path, err))
	}
	defer f.Close()

	var (
		txns    = []core.Transaction{}
		skipped []error
		lineNo  int
	)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lineNo++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var t core.Transaction
		if err := json.Unmarshal(raw, &t); err != nil {
			skipped = append(skipped, fmt.Errorf("line %d: %w", lineNo, err))
			continue
		}
		txns = append(txns, t)
	}
	if err := sc.Err(); err != nil {
		skipped = append(skipped, fmt.Errorf("scan: %w", err))
	}

	l := store.Found(txns)
	if len(skipped) > 0 {
		l.Err = errors.Join(skipped...)
		slog.WarnContext(ctx, "Skipped unreadable ledger lines", "path", path, "skipped", len(skipped))
	}
	return l
}

// RewriteTransactions replaces the ledger with txns.
func (s *Store) RewriteTransactions(_ context.Context, txns []core.Transaction) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, t := range txns {
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("marshal transaction: %w", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeFile(TransactionsFile, buf.Bytes())
}

// RecordUnknownCommand appends "<ts>\t<line>" to the unknown commands file.
func (s *Store) RecordUnknownCommand(_ context.Context, at time.Time, line string) error {
	entry := at.Format("2006-01-02T15:04:05") + "\t" + line
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLine(UnknownFile, []byte(entry))
}

// Reset removes the documents selected by scope. The unknown commands
// journal is never removed.
func (s *Store) Reset(ctx context.Context, scope store.Scope) error {
	names := []string{BalancesFile, GoalFile, SettingsFile, TransactionsFile}
	if scope == store.ScopeAll {
		names = append(names, ThemeFile)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, n := range names {
		if err := removeIfExists(s.path(n)); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	slog.InfoContext(ctx, "Store reset", "dir", s.dir, "files", len(names))
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) writeDocument(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeFile(name, data)
}

func (s *Store) writeFile(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *Store) appendLine(name string, line []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	f, err := os.OpenFile(s.path(name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append %s: %w", name, err)
	}
	return nil
}

// loadDocument decodes path over def, so fields missing from the file keep
// their default. Any read or decode failure yields def.
func loadDocument[T any](ctx context.Context, path string, def T) store.Loaded[T] {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return store.Defaulted(def, nil)
		}
		slog.WarnContext(ctx, "Cannot read state file, using default", "path", path, "error", err)
		return store.Defaulted(def, fmt.Errorf("read %s: %w", path, err))
	}
	v := def
	if err := json.Unmarshal(data, &v); err != nil {
		slog.WarnContext(ctx, "Corrupt state file, using default", "path", path, "error", err)
		return store.Defaulted(def, fmt.Errorf("decode %s: %w", path, err))
	}
	return store.Found(v)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
