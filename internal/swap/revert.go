package swap

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// dataError is the subset of go-ethereum's rpc.DataError that carries the
// raw revert payload of a failed eth_call.
type dataError interface {
	Error() string
	ErrorData() interface{}
}

// Error(string) selector.
const revertSelector = "0x08c379a0"

var revertArguments = abi.Arguments{{Type: mustType("string")}}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// revertReason reports whether err describes an EVM execution revert, and
// decodes the Error(string) reason when the node attached one. A transport
// failure returns ok=false.
func revertReason(err error) (reason string, ok bool) {
	var de dataError
	if errors.As(err, &de) {
		if data, isString := de.ErrorData().(string); isString {
			if decoded, decodedOK := decodeRevertData(data); decodedOK {
				return decoded, true
			}
		}
		return "", true
	}

	msg := err.Error()
	if i := strings.Index(msg, "execution reverted"); i >= 0 {
		reason = strings.TrimSpace(strings.TrimPrefix(msg[i+len("execution reverted"):], ":"))
		return reason, true
	}
	return "", false
}

func decodeRevertData(data string) (string, bool) {
	if !strings.HasPrefix(data, revertSelector) {
		return "", false
	}
	raw, err := hexutil.Decode(data)
	if err != nil || len(raw) < 4 {
		return "", false
	}
	out, err := revertArguments.Unpack(raw[4:])
	if err != nil || len(out) == 0 {
		return "", false
	}
	reason, ok := out[0].(string)
	return reason, ok
}
