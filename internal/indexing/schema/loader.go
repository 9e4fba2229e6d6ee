// Package schema loads the contract event schema (ABI) used to decode raw
// logs. A missing or broken schema is never fatal: the pipeline degrades to
// "unknown event" mode and keeps running.
package schema

import (
	"bytes"
	"log/slog"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// DefaultPath is probed when no schema path is configured.
const DefaultPath = "config/gensyn.abi.json"

// EventSchema is a compiled event decoder built from a contract ABI.
type EventSchema struct {
	ABI abi.ABI
}

// Load reads and compiles an ABI file. It never returns an error: an empty
// path falls back to DefaultPath if that file exists, and any read or parse
// failure logs a warning and yields nil (decoding disabled).
func Load(path string, log *slog.Logger) *EventSchema {
	if path == "" {
		if _, err := os.Stat(DefaultPath); err != nil {
			return nil
		}
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Failed to read event schema, decoding disabled", "path", path, "error", err)
		return nil
	}

	parsed, err := abi.JSON(bytes.NewReader(data))
	if err != nil {
		log.Warn("Failed to parse event schema, decoding disabled", "path", path, "error", err)
		return nil
	}

	log.Info("Loaded event schema", "path", path, "events", len(parsed.Events))
	return &EventSchema{ABI: parsed}
}

// EventByTopic resolves an event by its signature hash (topic0).
func (s *EventSchema) EventByTopic(topic0 common.Hash) (*abi.Event, bool) {
	ev, err := s.ABI.EventByID(topic0)
	if err != nil {
		return nil, false
	}
	return ev, true
}

// TopicsForNames derives topic0 hashes for the given event names. Unknown
// names are logged and dropped.
func (s *EventSchema) TopicsForNames(names []string, log *slog.Logger) []string {
	topics := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		ev, ok := s.ABI.Events[name]
		if !ok {
			log.Warn("Event not present in schema, skipping topic filter entry", "event", name)
			continue
		}
		topics = append(topics, ev.ID.Hex())
	}
	return topics
}
