package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"intentguard/internal/classify"
	"intentguard/internal/logging"
	"intentguard/internal/vcs"
)

// FileName is the Trace Ledger's canonical location relative to a
// workspace root (spec §6).
const FileName = ".orchestration/agent_trace.jsonl"

// Ledger is the append-only JSONL audit log (spec §4.3). Every append is
// synchronous, flushes its line before returning, and is serialized
// through a single mutex so concurrent appenders never interleave a
// partial line — grounded in internal/logging/audit.go's AuditLogger.
type Ledger struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	oracle vcs.Oracle
}

// Open creates (or appends to) the trace ledger at
// <workspace>/.orchestration/agent_trace.jsonl, creating the parent
// directory on first use if it doesn't exist yet.
func Open(workspace string, oracle vcs.Oracle) (*Ledger, error) {
	path := filepath.Join(workspace, FileName)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("trace: create ledger dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("trace: open ledger: %w", err)
	}

	return &Ledger{path: path, file: f, oracle: oracle}, nil
}

// Close releases the underlying file handle.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// AppendRaw serializes an arbitrary structured record to a single JSON
// line and appends it. If the caller omitted "vcs"/"revision_id" it is
// filled from the Revision Oracle; if "timestamp" is missing it is filled
// with the current instant. Used by the hook pipeline to record a
// diagnostic for an attempted call even when post-trace itself is
// short-circuited (spec §7).
func (l *Ledger) AppendRaw(record map[string]interface{}) error {
	if record == nil {
		record = make(map[string]interface{})
	}
	if _, ok := record["timestamp"]; !ok {
		record["timestamp"] = time.Now().Format(time.RFC3339)
	}
	if _, ok := record["vcs"]; !ok {
		record["vcs"] = VCSInfo{RevisionID: l.oracle.CurrentRevision()}
	}

	return l.appendLine(record)
}

// AppendTraceInput describes the structured appendTrace call.
type AppendTraceInput struct {
	Files      []FileRecord
	IntentID   string
	PromptText string
}

// AppendTrace always stamps a fresh id, the current time, and the current
// revision id, then appends the resulting Entry.
func (l *Ledger) AppendTrace(input AppendTraceInput) (*Entry, error) {
	entry := &Entry{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().Format(time.RFC3339),
		VCS:        VCSInfo{RevisionID: l.oracle.CurrentRevision()},
		Files:      input.Files,
		IntentID:   input.IntentID,
		PromptText: input.PromptText,
	}
	if entry.Files == nil {
		entry.Files = []FileRecord{}
	}

	if err := l.appendLine(entry); err != nil {
		return nil, err
	}
	logging.TraceDebug("appended trace entry %s (intent=%s, files=%d)", entry.ID, entry.IntentID, len(entry.Files))
	return entry, nil
}

// AppendPromptInput describes an appendPrompt call.
type AppendPromptInput struct {
	IntentID   string
	Context    string
	PromptText string
}

// AppendPrompt records a prompt/session seed with an empty files list.
func (l *Ledger) AppendPrompt(input AppendPromptInput) (*Entry, error) {
	entry := &Entry{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().Format(time.RFC3339),
		VCS:        VCSInfo{RevisionID: l.oracle.CurrentRevision()},
		Files:      []FileRecord{},
		IntentID:   input.IntentID,
		PromptText: input.PromptText,
		Context:    input.Context,
	}

	if err := l.appendLine(entry); err != nil {
		return nil, err
	}
	logging.TraceDebug("appended prompt entry %s (intent=%s)", entry.ID, entry.IntentID)
	return entry, nil
}

// AppendFileChangeInput describes an appendFileChange call.
type AppendFileChangeInput struct {
	IntentID       string
	FilePath       string
	Notes          string
	Before         *string
	After          *string
	SpecRefs       []string
	RequirementIDs []string
}

// AppendFileChange builds a File Record for one file touched by a tool
// call and appends it as a Trace Entry. If both Before and After are
// supplied, the Mutation Classifier runs and its output becomes the
// record's mutationClasses.
func (l *Ledger) AppendFileChange(input AppendFileChangeInput) (*Entry, error) {
	var before, after string
	shouldClassify := false
	if input.Before != nil && input.After != nil {
		before, after = *input.Before, *input.After
		shouldClassify = true
	} else if input.After != nil {
		after = *input.After
	}

	related := make([]Related, 0, len(input.SpecRefs)+len(input.RequirementIDs)+1)
	if input.Notes != "" {
		related = append(related, Related{Type: RelatedNote, Value: input.Notes})
	}
	for _, ref := range input.SpecRefs {
		related = append(related, Related{Type: RelatedSpecRef, Value: ref})
	}
	for _, req := range input.RequirementIDs {
		related = append(related, Related{Type: RelatedRequirement, Value: req})
	}

	record, err := CreateFileTrace(input.FilePath, before, after, shouldClassify, related)
	if err != nil {
		return nil, fmt.Errorf("trace: build file record: %w", err)
	}

	return l.AppendTrace(AppendTraceInput{
		Files:    []FileRecord{record},
		IntentID: input.IntentID,
	})
}

// CreateFileTrace is a pure constructor producing a FileRecord for the
// whole of after's content, with mutationClasses filled in when runClassifier
// is true and a contentHash computed as the hex SHA-256 of after's full
// text. Range defaults to the whole file (line 1 through the last line).
func CreateFileTrace(relativePath, before, after string, runClassifier bool, related []Related) (FileRecord, error) {
	record := FileRecord{
		RelativePath: relativePath,
		Related:      related,
	}
	if record.Related == nil {
		record.Related = []Related{}
	}

	if runClassifier {
		record.MutationClasses = classify.Classify(before, after).Slice()
	} else {
		record.MutationClasses = []string{}
	}

	if after == "" {
		record.Ranges = []Range{}
		return record, nil
	}

	lines := strings.Split(after, "\n")
	endLine := len(lines)
	if endLine == 0 {
		endLine = 1
	}
	if lines[len(lines)-1] == "" {
		// Trailing newline shouldn't count as an extra line for range purposes.
		endLine--
		if endLine < 1 {
			endLine = 1
		}
	}

	hash := sha256.Sum256([]byte(after))
	record.Ranges = []Range{{
		StartLine:   1,
		EndLine:     endLine,
		ContentHash: hex.EncodeToString(hash[:]),
	}}
	return record, nil
}

func (l *Ledger) appendLine(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("trace: marshal entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("trace: write entry: %w", err)
	}
	return l.file.Sync()
}
