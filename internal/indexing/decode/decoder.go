// Package decode turns raw logs into named events using a loaded schema.
// Logs on a shared address are frequently emitted by other contracts or
// event kinds, so every mismatch is swallowed rather than surfaced.
package decode

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Ojukwu12/Nodepulse/internal/core/domain"
	"github.com/Ojukwu12/Nodepulse/internal/indexing/schema"
)

// Decode attempts to decode a raw log against the schema. It returns nil
// when no schema is loaded or when the log does not match any known event;
// it never returns an error.
func Decode(lg domain.RawLog, s *schema.EventSchema) *domain.DecodedEvent {
	if s == nil || len(lg.Topics) == 0 {
		return nil
	}

	ev, ok := s.EventByTopic(common.HexToHash(lg.Topics[0]))
	if !ok {
		return nil
	}

	indexed := make(abi.Arguments, 0, len(ev.Inputs))
	for _, input := range ev.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if len(lg.Topics)-1 != len(indexed) {
		return nil
	}

	args := make(map[string]any)

	if len(ev.Inputs) > len(indexed) {
		data, err := hexutil.Decode(lg.Data)
		if err != nil {
			return nil
		}
		if err := s.ABI.UnpackIntoMap(args, ev.Name, data); err != nil {
			return nil
		}
	}

	if len(indexed) > 0 {
		topics := make([]common.Hash, 0, len(indexed))
		for _, t := range lg.Topics[1:] {
			topics = append(topics, common.HexToHash(t))
		}
		if err := abi.ParseTopicsIntoMap(args, indexed, topics); err != nil {
			return nil
		}
	}

	return &domain.DecodedEvent{
		Name:      ev.Name,
		Signature: ev.Sig,
		Args:      args,
	}
}
