// Package failures keeps a JSON ledger of documents that failed to process.
// A failed document writes no final output, so the next run retries it; the
// ledger records how often that has happened.
package failures

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"paper-translator/internal/storage"
	"paper-translator/internal/types"
)

// Stage 错误阶段枚举
type Stage string

const (
	StageExtract   Stage = "extract"   // structure service request
	StageParse     Stage = "parse"     // TEI text extraction
	StageTranslate Stage = "translate" // chunk translation
	StageRender    Stage = "render"    // optional PDF output
	StageWrite     Stage = "write"     // persisting artifacts
)

// Record 错误记录
type Record struct {
	Name         string    `json:"name"`
	Stage        Stage     `json:"stage"`
	ErrorCode    string    `json:"error_code,omitempty"`
	ErrorMsg     string    `json:"error_msg"`
	FirstFailure time.Time `json:"first_failure"`
	LastFailure  time.Time `json:"last_failure"`
	RetryCount   int       `json:"retry_count"`
}

// Ledger 错误管理器
type Ledger struct {
	path    string
	mu      sync.RWMutex
	records map[string]*Record
	now     func() time.Time
}

// NewLedger loads the ledger at path. A missing file is an empty ledger.
func NewLedger(path string) (*Ledger, error) {
	l := &Ledger{
		path:    path,
		records: make(map[string]*Record),
		now:     time.Now,
	}
	if err := l.load(); err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrFilesystem, "failed to load failure ledger", path, err)
	}
	return l, nil
}

// Record stores a failure of name at stage. A repeat failure keeps the first
// failure time and increments the retry count.
func (l *Ledger) Record(name string, stage Stage, err error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	record := &Record{
		Name:         name,
		Stage:        stage,
		ErrorMsg:     err.Error(),
		FirstFailure: now,
		LastFailure:  now,
	}
	if code := types.CodeOf(err); code != types.ErrInternal {
		record.ErrorCode = string(code)
	}

	if existing, ok := l.records[name]; ok {
		record.FirstFailure = existing.FirstFailure
		record.RetryCount = existing.RetryCount + 1
	}

	l.records[name] = record
	return l.save()
}

// Resolve removes name after it has been processed successfully.
func (l *Ledger) Resolve(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.records[name]; !ok {
		return nil
	}
	delete(l.records, name)
	return l.save()
}

// Get returns a copy of the record for name.
func (l *Ledger) Get(name string) (*Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	record, ok := l.records[name]
	if !ok {
		return nil, false
	}
	recordCopy := *record
	return &recordCopy, true
}

// List returns copies of all records sorted by name.
func (l *Ledger) List() []*Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sorted()
}

// Len returns the number of open failures.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

func (l *Ledger) sorted() []*Record {
	records := make([]*Record, 0, len(l.records))
	for _, record := range l.records {
		recordCopy := *record
		records = append(records, &recordCopy)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records
}

// load 从文件加载错误记录
func (l *Ledger) load() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read ledger: %w", err)
	}

	var records []*Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to unmarshal ledger: %w", err)
	}
	for _, record := range records {
		l.records[record.Name] = record
	}
	return nil
}

// save 保存错误记录到文件
func (l *Ledger) save() error {
	if len(l.records) == 0 && !storage.Exists(l.path) {
		return nil
	}
	data, err := json.MarshalIndent(l.sorted(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}
	if err := storage.WriteFileAtomic(l.path, data); err != nil {
		return types.NewAppError(types.ErrFilesystem, "failed to write failure ledger", err)
	}
	return nil
}
