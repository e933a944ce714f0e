package safe

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// contractABI covers the Gnosis Safe v1.3.0 surface this tool consumes:
// every event the contract emits, plus the read-only getters used for the
// overview section of the report.
const contractABIJSON = `[
	{"type":"event","name":"AddedOwner","anonymous":false,"inputs":[{"name":"owner","type":"address","indexed":false}]},
	{"type":"event","name":"RemovedOwner","anonymous":false,"inputs":[{"name":"owner","type":"address","indexed":false}]},
	{"type":"event","name":"ChangedThreshold","anonymous":false,"inputs":[{"name":"threshold","type":"uint256","indexed":false}]},
	{"type":"event","name":"ApproveHash","anonymous":false,"inputs":[{"name":"approvedHash","type":"bytes32","indexed":true},{"name":"owner","type":"address","indexed":true}]},
	{"type":"event","name":"SignMsg","anonymous":false,"inputs":[{"name":"msgHash","type":"bytes32","indexed":true}]},
	{"type":"event","name":"ExecutionSuccess","anonymous":false,"inputs":[{"name":"txHash","type":"bytes32","indexed":false},{"name":"payment","type":"uint256","indexed":false}]},
	{"type":"event","name":"ExecutionFailure","anonymous":false,"inputs":[{"name":"txHash","type":"bytes32","indexed":false},{"name":"payment","type":"uint256","indexed":false}]},
	{"type":"event","name":"EnabledModule","anonymous":false,"inputs":[{"name":"module","type":"address","indexed":false}]},
	{"type":"event","name":"DisabledModule","anonymous":false,"inputs":[{"name":"module","type":"address","indexed":false}]},
	{"type":"event","name":"ExecutionFromModuleSuccess","anonymous":false,"inputs":[{"name":"module","type":"address","indexed":true}]},
	{"type":"event","name":"ExecutionFromModuleFailure","anonymous":false,"inputs":[{"name":"module","type":"address","indexed":true}]},
	{"type":"event","name":"SafeSetup","anonymous":false,"inputs":[{"name":"initiator","type":"address","indexed":true},{"name":"owners","type":"address[]","indexed":false},{"name":"threshold","type":"uint256","indexed":false},{"name":"initializer","type":"address","indexed":false},{"name":"fallbackHandler","type":"address","indexed":false}]},
	{"type":"event","name":"ChangedFallbackHandler","anonymous":false,"inputs":[{"name":"handler","type":"address","indexed":false}]},
	{"type":"event","name":"ChangedGuard","anonymous":false,"inputs":[{"name":"guard","type":"address","indexed":false}]},
	{"type":"event","name":"SafeReceived","anonymous":false,"inputs":[{"name":"sender","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]},
	{"type":"function","name":"getOwners","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]},
	{"type":"function","name":"getThreshold","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"nonce","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"VERSION","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]}
]`

var contractABI = mustParseABI(contractABIJSON)

func mustParseABI(doc string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(doc))
	if err != nil {
		panic(err)
	}
	return parsed
}

// ABI returns the parsed Gnosis Safe contract ABI.
func ABI() abi.ABI {
	return contractABI
}
