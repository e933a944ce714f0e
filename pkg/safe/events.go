package safe

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Kind identifies a Gnosis Safe event. The set is closed: every event the
// v1.3.0 contract emits has a Kind, and anything else decodes to KindUnknown.
type Kind string

const (
	KindAddedOwner                 Kind = "AddedOwner"
	KindRemovedOwner               Kind = "RemovedOwner"
	KindChangedThreshold           Kind = "ChangedThreshold"
	KindApproveHash                Kind = "ApproveHash"
	KindSignMsg                    Kind = "SignMsg"
	KindExecutionSuccess           Kind = "ExecutionSuccess"
	KindExecutionFailure           Kind = "ExecutionFailure"
	KindEnabledModule              Kind = "EnabledModule"
	KindDisabledModule             Kind = "DisabledModule"
	KindExecutionFromModuleSuccess Kind = "ExecutionFromModuleSuccess"
	KindExecutionFromModuleFailure Kind = "ExecutionFromModuleFailure"
	KindSafeSetup                  Kind = "SafeSetup"
	KindChangedFallbackHandler     Kind = "ChangedFallbackHandler"
	KindChangedGuard               Kind = "ChangedGuard"
	KindSafeReceived               Kind = "SafeReceived"
	KindUnknown                    Kind = "Unknown"
)

// Kinds lists every known event kind, in the order the report prints them.
var Kinds = []Kind{
	KindSafeSetup,
	KindAddedOwner,
	KindRemovedOwner,
	KindChangedThreshold,
	KindApproveHash,
	KindSignMsg,
	KindExecutionSuccess,
	KindExecutionFailure,
	KindEnabledModule,
	KindDisabledModule,
	KindExecutionFromModuleSuccess,
	KindExecutionFromModuleFailure,
	KindChangedFallbackHandler,
	KindChangedGuard,
	KindSafeReceived,
}

// ParseKind returns the Kind with the given name.
func ParseKind(name string) (Kind, error) {
	for _, kind := range Kinds {
		if string(kind) == name {
			return kind, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown event kind %q", name)
}

// Record is a single decoded Safe event. Only the parameter fields relevant
// to the Kind are populated.
type Record struct {
	Kind        Kind
	BlockNumber uint64
	TxHash      common.Hash
	LogIndex    uint

	Owner      common.Address   // AddedOwner, RemovedOwner, ApproveHash
	Module     common.Address   // module events
	Sender     common.Address   // SafeReceived
	Initiator  common.Address   // SafeSetup
	Handler    common.Address   // ChangedFallbackHandler
	Guard      common.Address   // ChangedGuard
	Owners     []common.Address // SafeSetup
	Threshold  *big.Int         // ChangedThreshold, SafeSetup
	Payment    *big.Int         // ExecutionSuccess, ExecutionFailure
	Value      *big.Int         // SafeReceived
	SafeTxHash common.Hash      // ExecutionSuccess/Failure, ApproveHash, SignMsg
}

// Signer returns the signer address the event attributes activity to, if any.
func (r *Record) Signer() (common.Address, bool) {
	switch r.Kind {
	case KindAddedOwner, KindRemovedOwner, KindApproveHash:
		return r.Owner, true
	case KindSafeSetup:
		return r.Initiator, true
	}
	return common.Address{}, false
}

// DecodeLog decodes a raw log entry into a Record. A log whose first topic
// does not match any known Safe event signature decodes to KindUnknown with
// a nil error; a log that matches a known signature but carries malformed
// topics or data returns an error so the caller can skip and count it.
func DecodeLog(log types.Log) (Record, error) {
	rec := Record{
		Kind:        KindUnknown,
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash,
		LogIndex:    log.Index,
	}
	if len(log.Topics) == 0 {
		return rec, nil
	}
	event, err := contractABI.EventByID(log.Topics[0])
	if err != nil {
		// Not a Safe event signature.
		return rec, nil
	}
	rec.Kind = Kind(event.Name)

	values, err := contractABI.Unpack(event.Name, log.Data)
	if err != nil {
		return rec, fmt.Errorf("failed to unpack %s data: %w", event.Name, err)
	}

	switch rec.Kind {
	case KindAddedOwner, KindRemovedOwner:
		rec.Owner, err = addressValue(values, 0)
	case KindChangedThreshold:
		rec.Threshold, err = bigValue(values, 0)
	case KindApproveHash:
		if len(log.Topics) < 3 {
			return rec, fmt.Errorf("ApproveHash: expected 3 topics, got %d", len(log.Topics))
		}
		rec.SafeTxHash = log.Topics[1]
		rec.Owner = common.BytesToAddress(log.Topics[2].Bytes())
	case KindSignMsg:
		if len(log.Topics) < 2 {
			return rec, fmt.Errorf("SignMsg: expected 2 topics, got %d", len(log.Topics))
		}
		rec.SafeTxHash = log.Topics[1]
	case KindExecutionSuccess, KindExecutionFailure:
		rec.SafeTxHash, err = hashValue(values, 0)
		if err == nil {
			rec.Payment, err = bigValue(values, 1)
		}
	case KindEnabledModule, KindDisabledModule:
		rec.Module, err = addressValue(values, 0)
	case KindExecutionFromModuleSuccess, KindExecutionFromModuleFailure:
		if len(log.Topics) < 2 {
			return rec, fmt.Errorf("%s: expected 2 topics, got %d", rec.Kind, len(log.Topics))
		}
		rec.Module = common.BytesToAddress(log.Topics[1].Bytes())
	case KindSafeSetup:
		if len(log.Topics) < 2 {
			return rec, fmt.Errorf("SafeSetup: expected 2 topics, got %d", len(log.Topics))
		}
		rec.Initiator = common.BytesToAddress(log.Topics[1].Bytes())
		rec.Owners, err = addressSliceValue(values, 0)
		if err == nil {
			rec.Threshold, err = bigValue(values, 1)
		}
	case KindChangedFallbackHandler:
		rec.Handler, err = addressValue(values, 0)
	case KindChangedGuard:
		rec.Guard, err = addressValue(values, 0)
	case KindSafeReceived:
		if len(log.Topics) < 2 {
			return rec, fmt.Errorf("SafeReceived: expected 2 topics, got %d", len(log.Topics))
		}
		rec.Sender = common.BytesToAddress(log.Topics[1].Bytes())
		rec.Value, err = bigValue(values, 0)
	}
	if err != nil {
		return rec, fmt.Errorf("failed to decode %s: %w", event.Name, err)
	}
	return rec, nil
}

func addressValue(values []interface{}, i int) (common.Address, error) {
	if i >= len(values) {
		return common.Address{}, fmt.Errorf("missing argument %d", i)
	}
	addr, ok := values[i].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("argument %d is not an address", i)
	}
	return addr, nil
}

func addressSliceValue(values []interface{}, i int) ([]common.Address, error) {
	if i >= len(values) {
		return nil, fmt.Errorf("missing argument %d", i)
	}
	addrs, ok := values[i].([]common.Address)
	if !ok {
		return nil, fmt.Errorf("argument %d is not an address slice", i)
	}
	return addrs, nil
}

func bigValue(values []interface{}, i int) (*big.Int, error) {
	if i >= len(values) {
		return nil, fmt.Errorf("missing argument %d", i)
	}
	v, ok := values[i].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("argument %d is not a uint256", i)
	}
	return v, nil
}

func hashValue(values []interface{}, i int) (common.Hash, error) {
	if i >= len(values) {
		return common.Hash{}, fmt.Errorf("missing argument %d", i)
	}
	v, ok := values[i].([32]byte)
	if !ok {
		return common.Hash{}, fmt.Errorf("argument %d is not a bytes32", i)
	}
	return common.Hash(v), nil
}
