package schema

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

const testABI = `[
	{"type":"event","name":"JobCompleted","inputs":[
		{"name":"jobId","type":"bytes32","indexed":true},
		{"name":"node","type":"address","indexed":false},
		{"name":"reward","type":"uint256","indexed":false}
	]},
	{"type":"event","name":"PayoutProcessed","inputs":[
		{"name":"recipient","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}
	]}
]`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeABI(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "abi.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write abi: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	s := Load(writeABI(t, testABI), testLogger())
	if s == nil {
		t.Fatal("expected schema, got nil")
	}
	if len(s.ABI.Events) != 2 {
		t.Errorf("expected 2 events, got %d", len(s.ABI.Events))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if s := Load(filepath.Join(t.TempDir(), "missing.json"), testLogger()); s != nil {
		t.Error("expected nil schema for missing file")
	}
}

func TestLoadMalformed(t *testing.T) {
	if s := Load(writeABI(t, "{not json"), testLogger()); s != nil {
		t.Error("expected nil schema for malformed abi")
	}
}

func TestLoadNoPathNoDefault(t *testing.T) {
	// Running from a temp dir where the conventional default doesn't exist.
	wd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	if s := Load("", testLogger()); s != nil {
		t.Error("expected nil schema when nothing is configured")
	}
}

func TestEventByTopic(t *testing.T) {
	s := Load(writeABI(t, testABI), testLogger())

	want := s.ABI.Events["JobCompleted"]
	ev, ok := s.EventByTopic(want.ID)
	if !ok {
		t.Fatal("expected event for known topic")
	}
	if ev.Name != "JobCompleted" {
		t.Errorf("expected JobCompleted, got %s", ev.Name)
	}

	if _, ok := s.EventByTopic(common.HexToHash("0xdead")); ok {
		t.Error("expected no event for unknown topic")
	}
}

func TestTopicsForNames(t *testing.T) {
	s := Load(writeABI(t, testABI), testLogger())

	topics := s.TopicsForNames([]string{"JobCompleted", "Unknown", " PayoutProcessed "}, testLogger())
	if len(topics) != 2 {
		t.Fatalf("expected 2 topics, got %d: %v", len(topics), topics)
	}
	if topics[0] != s.ABI.Events["JobCompleted"].ID.Hex() {
		t.Errorf("unexpected topic for JobCompleted: %s", topics[0])
	}
	if topics[1] != s.ABI.Events["PayoutProcessed"].ID.Hex() {
		t.Errorf("unexpected topic for PayoutProcessed: %s", topics[1])
	}
}
